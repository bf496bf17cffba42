//go:build !ios && !android && (amd64 || arm64)

package adlgo

import "github.com/obinnaokechukwu/adlgo/driver"

// OverdriveCaps describes an adapter's Overdrive support.
type OverdriveCaps struct {
	Supported bool
	Enabled   bool
	// Version is the Overdrive generation, e.g. 5, 6 or 8.
	Version int
}

// OverdriveCaps returns the adapter's Overdrive capabilities.
func (c *Context) OverdriveCaps(index int) (OverdriveCaps, error) {
	const op = "OverdriveCaps"
	if err := checkIndex(op, index); err != nil {
		return OverdriveCaps{}, err
	}
	unlock, err := c.enter(op)
	if err != nil {
		return OverdriveCaps{}, err
	}
	defer unlock()
	if _, err := c.require(op, CapOverdriveCaps); err != nil {
		return OverdriveCaps{}, err
	}
	var supported, enabled, version int32
	st := c.drv.OverdriveCaps(c.handle, int32(index), &supported, &enabled, &version)
	if err := c.check(driver.EntryOverdriveCaps, st); err != nil {
		return OverdriveCaps{}, err
	}
	return OverdriveCaps{Supported: supported != 0, Enabled: enabled != 0, Version: int(version)}, nil
}
