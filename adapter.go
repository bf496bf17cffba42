//go:build !ios && !android && (amd64 || arm64)

package adlgo

import (
	"fmt"
	"unsafe"

	"github.com/obinnaokechukwu/adlgo/driver"
)

// VendorATI is the PCI vendor ID ADL reports for AMD/ATI adapters.
const VendorATI = 1002

// Adapter is one enumerated adapter.
type Adapter struct {
	Index          int
	UDID           string
	BusNumber      int
	DeviceNumber   int
	FunctionNumber int
	VendorID       int
	Name           string
	DisplayName    string
	Present        bool

	// Windows only.
	Exists         bool
	DriverPath     string
	DriverPathExt  string
	PNPString      string
	OSDisplayIndex int

	// Linux only.
	XScreenNum        int
	DriverIndex       int
	XScreenConfigName string
}

func (a Adapter) String() string {
	return fmt.Sprintf("%d: %s (%s)", a.Index, a.Name, a.UDID)
}

func adapterFromInfo(info *driver.AdapterInfo) Adapter {
	a := Adapter{
		Index:          int(info.AdapterIndex),
		UDID:           driver.CString(info.UDID[:]),
		BusNumber:      int(info.BusNumber),
		DeviceNumber:   int(info.DeviceNumber),
		FunctionNumber: int(info.FunctionNumber),
		VendorID:       int(info.VendorID),
		Name:           driver.CString(info.AdapterName[:]),
		DisplayName:    driver.CString(info.DisplayName[:]),
		Present:        info.Present != 0,
	}
	fillPlatformFields(&a, info)
	return a
}

func adaptersFromInfos(infos []driver.AdapterInfo) []Adapter {
	out := make([]Adapter, 0, len(infos))
	for i := range infos {
		out = append(out, adapterFromInfo(&infos[i]))
	}
	return out
}

func checkIndex(op string, index int) error {
	if index < 0 {
		return misuse(op, ErrInvalidArgument, fmt.Sprintf("negative adapter index %d", index))
	}
	return nil
}

// NumberOfAdapters returns the number of adapters in the context's scope.
func (c *Context) NumberOfAdapters() (int, error) {
	const op = "NumberOfAdapters"
	unlock, err := c.enter(op)
	if err != nil {
		return 0, err
	}
	defer unlock()
	return c.numberOfAdapters(op)
}

func (c *Context) numberOfAdapters(op string) (int, error) {
	if _, err := c.require(op, CapAdapterCount); err != nil {
		return 0, err
	}
	var n int32
	if err := c.check(driver.EntryAdapterNumberOfAdaptersGet, c.drv.AdapterNumberOfAdaptersGet(c.handle, &n)); err != nil {
		return 0, err
	}
	return int(n), nil
}

// Adapters returns every adapter in the context's scope, using the newest
// AdapterInfo entry point the driver provides.
func (c *Context) Adapters() ([]Adapter, error) {
	const op = "Adapters"
	unlock, err := c.enter(op)
	if err != nil {
		return nil, err
	}
	defer unlock()

	res, err := c.require(op, CapAdapterInfo)
	if err != nil {
		return nil, err
	}
	switch res.Entry {
	case driver.EntryAdapterAdapterInfoX3Get:
		var n int32
		var p unsafe.Pointer
		st := c.drv.AdapterAdapterInfoX3Get(c.handle, driver.AllAdapters, &n, &p)
		return c.takeAdapterInfos(res.Entry, st, p, int(n))

	case driver.EntryAdapterAdapterInfoX2Get:
		n, err := c.numberOfAdapters(op)
		if err != nil {
			return nil, err
		}
		var p unsafe.Pointer
		st := c.drv.AdapterAdapterInfoX2Get(c.handle, &p)
		return c.takeAdapterInfos(res.Entry, st, p, n)

	default:
		n, err := c.numberOfAdapters(op)
		if err != nil || n == 0 {
			return nil, err
		}
		infos := make([]driver.AdapterInfo, n)
		for i := range infos {
			infos[i].Size = driver.SizeofAdapterInfo
		}
		st := c.drv.AdapterAdapterInfoGet(c.handle, &infos[0], int32(n)*driver.SizeofAdapterInfo)
		if err := c.check(res.Entry, st); err != nil {
			return nil, err
		}
		return adaptersFromInfos(infos), nil
	}
}

// takeAdapterInfos copies n records out of driver-allocated memory and
// releases it.
func (c *Context) takeAdapterInfos(entry string, st Status, p unsafe.Pointer, n int) ([]Adapter, error) {
	defer c.bridge.release(p)
	if err := c.check(entry, st); err != nil {
		return nil, err
	}
	if n > 0 && p == nil {
		return nil, &DriverError{Op: entry, Status: StatusErrNullPointer}
	}
	return adaptersFromInfos(driver.AdapterInfoSlice(p, n)), nil
}

// Adapter returns the adapter with the given index.
func (c *Context) Adapter(index int) (Adapter, error) {
	if err := checkIndex("Adapter", index); err != nil {
		return Adapter{}, err
	}
	adapters, err := c.Adapters()
	if err != nil {
		return Adapter{}, err
	}
	for _, a := range adapters {
		if a.Index == index {
			return a, nil
		}
	}
	return Adapter{}, &DriverError{Op: "Adapter", Status: StatusErrInvalidADLIdx}
}

// AdapterActive reports whether the adapter is active.
func (c *Context) AdapterActive(index int) (bool, error) {
	const op = "AdapterActive"
	if err := checkIndex(op, index); err != nil {
		return false, err
	}
	unlock, err := c.enter(op)
	if err != nil {
		return false, err
	}
	defer unlock()
	return c.adapterActive(op, index)
}

func (c *Context) adapterActive(op string, index int) (bool, error) {
	if _, err := c.require(op, CapAdapterActive); err != nil {
		return false, err
	}
	var status int32
	if err := c.check(driver.EntryAdapterActiveGet, c.drv.AdapterActiveGet(c.handle, int32(index), &status)); err != nil {
		return false, err
	}
	return status != 0, nil
}

// AdapterID returns the adapter's unique ID. Adapters sharing a physical GPU
// share an ID.
func (c *Context) AdapterID(index int) (int, error) {
	const op = "AdapterID"
	if err := checkIndex(op, index); err != nil {
		return 0, err
	}
	unlock, err := c.enter(op)
	if err != nil {
		return 0, err
	}
	defer unlock()
	if _, err := c.require(op, CapAdapterID); err != nil {
		return 0, err
	}
	var id int32
	if err := c.check(driver.EntryAdapterIDGet, c.drv.AdapterIDGet(c.handle, int32(index), &id)); err != nil {
		return 0, err
	}
	return int(id), nil
}

// PrimaryAdapter returns the index of the primary adapter.
func (c *Context) PrimaryAdapter() (int, error) {
	const op = "PrimaryAdapter"
	unlock, err := c.enter(op)
	if err != nil {
		return 0, err
	}
	defer unlock()
	if _, err := c.require(op, CapPrimaryAdapter); err != nil {
		return 0, err
	}
	var idx int32
	if err := c.check(driver.EntryAdapterPrimaryGet, c.drv.AdapterPrimaryGet(c.handle, &idx)); err != nil {
		return 0, err
	}
	return int(idx), nil
}

// ActiveAdapters returns the active adapters with the given vendor ID.
// A vendorID of 0 matches every vendor.
func (c *Context) ActiveAdapters(vendorID int) ([]Adapter, error) {
	adapters, err := c.Adapters()
	if err != nil {
		return nil, err
	}
	unlock, err := c.enter("ActiveAdapters")
	if err != nil {
		return nil, err
	}
	defer unlock()

	var out []Adapter
	for _, a := range adapters {
		if vendorID != 0 && a.VendorID != vendorID {
			continue
		}
		active, err := c.adapterActive("ActiveAdapters", a.Index)
		if err != nil {
			return nil, err
		}
		if active {
			out = append(out, a)
		}
	}
	return out, nil
}
