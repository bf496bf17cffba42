//go:build !ios && !android && (amd64 || arm64)

package adlgo

import "github.com/obinnaokechukwu/adlgo/driver"

// MemoryInfo describes an adapter's video memory.
type MemoryInfo struct {
	// Size in bytes.
	Size int64
	Type string
	// Bandwidth in MB/s.
	Bandwidth int64
}

// MemoryInfo returns the adapter's memory size, type and bandwidth.
func (c *Context) MemoryInfo(index int) (MemoryInfo, error) {
	const op = "MemoryInfo"
	if err := checkIndex(op, index); err != nil {
		return MemoryInfo{}, err
	}
	unlock, err := c.enter(op)
	if err != nil {
		return MemoryInfo{}, err
	}
	defer unlock()
	if _, err := c.require(op, CapMemoryInfo); err != nil {
		return MemoryInfo{}, err
	}
	var info driver.MemoryInfo
	if err := c.check(driver.EntryAdapterMemoryInfoGet, c.drv.AdapterMemoryInfoGet(c.handle, int32(index), &info)); err != nil {
		return MemoryInfo{}, err
	}
	return MemoryInfo{
		Size:      info.MemorySize,
		Type:      driver.CString(info.MemoryType[:]),
		Bandwidth: info.MemoryBandwidth,
	}, nil
}
