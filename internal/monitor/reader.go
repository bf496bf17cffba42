//go:build !ios && !android && (amd64 || arm64)

package monitor

import (
	"context"

	"github.com/obinnaokechukwu/adlgo"
)

// ContextReader reads PMLog sensors through an ADL context.
type ContextReader struct {
	ctx *adlgo.Context
	// VendorID restricts monitoring to one vendor. Zero monitors every vendor.
	VendorID int
	// Refresh re-enumerates adapters before every read.
	Refresh bool

	adapters []adlgo.Adapter
}

// NewContextReader monitors the active adapters of vendorID.
func NewContextReader(ctx *adlgo.Context, vendorID int) *ContextReader {
	return &ContextReader{ctx: ctx, VendorID: vendorID}
}

// Read implements Reader. Adapters are enumerated on the first read and
// again whenever Refresh is set. An adapter whose sensors cannot be read
// gets a Reading with Err set and the remaining adapters are still read.
func (r *ContextReader) Read(ctx context.Context) ([]Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Refresh || r.adapters == nil {
		if r.Refresh {
			if _, err := r.ctx.Refresh(); err != nil {
				return nil, err
			}
		}
		adapters, err := r.ctx.ActiveAdapters(r.VendorID)
		if err != nil {
			return nil, err
		}
		if adapters == nil {
			adapters = []adlgo.Adapter{}
		}
		r.adapters = adapters
	}

	readings := make([]Reading, 0, len(r.adapters))
	for _, a := range r.adapters {
		temps, err := r.ctx.Temps(a.Index)
		if err != nil {
			readings = append(readings, Reading{Adapter: a.Index, Name: a.Name, Err: err})
			continue
		}
		readings = append(readings, Reading{Adapter: a.Index, Name: a.Name, Temps: temps})
	}
	return readings, nil
}
