//go:build !ios && !android && (amd64 || arm64)

// Package fakedriver is an in-memory driver.Driver for tests.
//
// It models a small set of adapters, tracks live contexts, counts every call
// by entry point name and allocates X2/X3 outputs through the context's
// allocation function the way the real driver does.
package fakedriver

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/obinnaokechukwu/adlgo/driver"
	"github.com/obinnaokechukwu/adlgo/internal/callback"
)

// Adapter describes one fake adapter.
type Adapter struct {
	UDID     string
	Name     string
	Display  string
	VendorID int32
	Bus      int32
	Device   int32
	Function int32
	Present  bool
	Active   bool
	ID       int32
	Primary  bool

	MemorySize      int64
	MemoryType      string
	MemoryBandwidth int64

	OverdriveSupported bool
	OverdriveEnabled   bool
	OverdriveVersion   int32

	// Sensors maps PMLog sensor indices to values.
	Sensors map[int]int32
}

type session struct {
	alloc     driver.AllocFunc
	enum      int32
	threading driver.ThreadingModel
	options   int32
	entry     string
	// adapters is the enumeration snapshot taken at create and Refresh.
	adapters []Adapter
	slot     *callback.Slot
}

// Driver is a fake driver.Driver.
type Driver struct {
	mu sync.Mutex

	adapters    []Adapter
	indexByUDID map[string]int32
	nextIndex   int32

	exposed  map[string]bool
	statuses map[string]driver.Status
	calls    map[string]int
	total    int

	sessions   map[driver.Handle]*session
	nextHandle driver.Handle
	created    int
	destroyed  int
	legacy     *session
	closed     int

	// BindCallbacks makes every create bind its allocation function to a
	// callback slot the way driver.System does, so slot limits apply.
	BindCallbacks bool

	// Driver versions reported by the Graphics_Versions calls.
	DriverVersion   string
	CatalystVersion string
	CrimsonVersion  string
	WebLink         string
}

// New creates a fake driver exposing every entry point in driver.EntryPoints.
func New(adapters ...Adapter) *Driver {
	d := &Driver{
		indexByUDID:     make(map[string]int32),
		exposed:         make(map[string]bool),
		statuses:        make(map[string]driver.Status),
		calls:           make(map[string]int),
		sessions:        make(map[driver.Handle]*session),
		nextHandle:      0x1000,
		DriverVersion:   "23.40.02.01",
		CatalystVersion: "23.12.1",
		CrimsonVersion:  "23.12.1",
		WebLink:         "https://www.amd.com/en/support",
	}
	for _, name := range driver.EntryPoints {
		d.exposed[name] = true
	}
	d.setAdapters(adapters)
	return d
}

// SetAdapters replaces the adapter list. It takes effect for a context at
// its next Refresh, mirroring a hot-plug.
func (d *Driver) SetAdapters(adapters ...Adapter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setAdapters(adapters)
}

func (d *Driver) setAdapters(adapters []Adapter) {
	d.adapters = append([]Adapter(nil), adapters...)
	for _, a := range d.adapters {
		if _, ok := d.indexByUDID[a.UDID]; !ok {
			d.indexByUDID[a.UDID] = d.nextIndex
			d.nextIndex++
		}
	}
}

// Hide removes entry points from the exported set.
func (d *Driver) Hide(names ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, n := range names {
		delete(d.exposed, n)
	}
}

// Expose adds entry points to the exported set.
func (d *Driver) Expose(names ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, n := range names {
		d.exposed[n] = true
	}
}

// SetStatus forces name to return st instead of doing its work.
// StatusOk clears the override.
func (d *Driver) SetStatus(name string, st driver.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if st == driver.StatusOk {
		delete(d.statuses, name)
		return
	}
	d.statuses[name] = st
}

// Calls returns how many times name was called, including ProcAddress lookups
// which are counted under driver.EntryMainControlGetProcAddress.
func (d *Driver) Calls(name string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[name]
}

// TotalCalls returns the number of calls across all entry points.
func (d *Driver) TotalCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.total
}

// LiveContexts returns the number of created and not yet destroyed contexts.
func (d *Driver) LiveContexts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}

// Created returns the number of successful create calls.
func (d *Driver) Created() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.created
}

// Destroyed returns the number of successful destroy calls.
func (d *Driver) Destroyed() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.destroyed
}

// Closed returns how many times Close was called.
func (d *Driver) Closed() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// CreateEntry returns the entry point that created ctx.
func (d *Driver) CreateEntry(ctx driver.Handle) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.sessions[ctx]; ok {
		return s.entry
	}
	return ""
}

// Threading returns the threading model ctx was created with.
func (d *Driver) Threading(ctx driver.Handle) driver.ThreadingModel {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.sessions[ctx]; ok {
		return s.threading
	}
	return driver.ThreadingUnlocked
}

// LegacyOpen reports whether a legacy session is active.
func (d *Driver) LegacyOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.legacy != nil
}

// enter records a call and returns the forced status and the session for ctx.
// The caller must hold d.mu.
func (d *Driver) enter(name string, ctx driver.Handle) (*session, driver.Status) {
	d.calls[name]++
	d.total++
	if !d.exposed[name] {
		return nil, driver.StatusErrNotSupported
	}
	if st, ok := d.statuses[name]; ok {
		return nil, st
	}
	s, ok := d.sessions[ctx]
	if !ok {
		return nil, driver.StatusErrNotInit
	}
	return s, driver.StatusOk
}

func (d *Driver) enterLegacy(name string) (*session, driver.Status) {
	d.calls[name]++
	d.total++
	if !d.exposed[name] {
		return nil, driver.StatusErrNotSupported
	}
	if st, ok := d.statuses[name]; ok {
		return nil, st
	}
	if d.legacy == nil {
		return nil, driver.StatusErrNotInit
	}
	return d.legacy, driver.StatusOk
}

// visible returns the adapters enumerated for s with their stable indices.
func (d *Driver) visible(s *session) []driver.AdapterInfo {
	var out []driver.AdapterInfo
	for _, a := range s.adapters {
		if s.enum == driver.EnumConnectedOnly && !a.Present {
			continue
		}
		out = append(out, d.info(a))
	}
	return out
}

func (d *Driver) snapshot() []Adapter {
	return append([]Adapter(nil), d.adapters...)
}

func (d *Driver) info(a Adapter) driver.AdapterInfo {
	var info driver.AdapterInfo
	info.Size = driver.SizeofAdapterInfo
	info.AdapterIndex = d.indexByUDID[a.UDID]
	driver.SetCString(info.UDID[:], a.UDID)
	driver.SetCString(info.AdapterName[:], a.Name)
	driver.SetCString(info.DisplayName[:], a.Display)
	info.BusNumber = a.Bus
	info.DeviceNumber = a.Device
	info.FunctionNumber = a.Function
	info.VendorID = a.VendorID
	if a.Present {
		info.Present = 1
	}
	return info
}

func (d *Driver) adapter(index int32) (*Adapter, bool) {
	for i := range d.adapters {
		if d.indexByUDID[d.adapters[i].UDID] == index {
			return &d.adapters[i], true
		}
	}
	return nil, false
}

func (d *Driver) HasEntryPoint(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.exposed[name]
}

// ProcAddress returns a fake non-zero address for exposed entry points.
func (d *Driver) ProcAddress(ctx driver.Handle, name string) uintptr {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls[driver.EntryMainControlGetProcAddress]++
	d.total++
	if _, ok := d.sessions[ctx]; !ok || !d.exposed[name] {
		return 0
	}
	return uintptr(0x7f000000 + len(name))
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed++
	for _, s := range d.sessions {
		s.slot.Release()
		s.slot = nil
	}
	if d.legacy != nil {
		d.legacy.slot.Release()
		d.legacy.slot = nil
	}
	return nil
}

// bind acquires a callback slot when BindCallbacks is set. The caller must
// hold d.mu.
func (d *Driver) bind(alloc driver.AllocFunc) (*callback.Slot, driver.Status) {
	if !d.BindCallbacks {
		return nil, driver.StatusOk
	}
	slot, err := callback.Acquire(callback.Func(alloc))
	if errors.Is(err, callback.ErrNoSlots) {
		return nil, driver.StatusNoCallbackSlots
	}
	if err != nil {
		return nil, driver.StatusErrInvalidCallback
	}
	return slot, driver.StatusOk
}

func (d *Driver) create(name string, alloc driver.AllocFunc, enum int32, ctx *driver.Handle, threading driver.ThreadingModel, options int32) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls[name]++
	d.total++
	if !d.exposed[name] {
		return driver.StatusErrNotSupported
	}
	if st, ok := d.statuses[name]; ok {
		return st
	}
	if alloc == nil {
		return driver.StatusErrInvalidCallback
	}
	if ctx == nil {
		return driver.StatusErrNullPointer
	}
	slot, st := d.bind(alloc)
	if st != driver.StatusOk {
		return st
	}
	h := d.nextHandle
	d.nextHandle += 0x10
	d.sessions[h] = &session{alloc: alloc, enum: enum, threading: threading, options: options, entry: name, adapters: d.snapshot(), slot: slot}
	d.created++
	*ctx = h
	return driver.StatusOk
}

func (d *Driver) MainControlCreate(alloc driver.AllocFunc, enumConnected int32, ctx *driver.Handle) driver.Status {
	return d.create(driver.EntryMainControlCreate, alloc, enumConnected, ctx, driver.ThreadingUnlocked, 0)
}

func (d *Driver) MainControlX2Create(alloc driver.AllocFunc, enumConnected int32, ctx *driver.Handle, threading driver.ThreadingModel) driver.Status {
	return d.create(driver.EntryMainControlX2Create, alloc, enumConnected, ctx, threading, 0)
}

func (d *Driver) MainControlX3Create(alloc driver.AllocFunc, enumConnected int32, ctx *driver.Handle, threading driver.ThreadingModel, options int32) driver.Status {
	return d.create(driver.EntryMainControlX3Create, alloc, enumConnected, ctx, threading, options)
}

func (d *Driver) MainControlDestroy(ctx driver.Handle) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, st := d.enter(driver.EntryMainControlDestroy, ctx)
	if st != driver.StatusOk {
		return st
	}
	d.sessions[ctx].slot.Release()
	delete(d.sessions, ctx)
	d.destroyed++
	return driver.StatusOk
}

func (d *Driver) MainControlRefresh(ctx driver.Handle) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, st := d.enter(driver.EntryMainControlRefresh, ctx)
	if st == driver.StatusOk {
		s.adapters = d.snapshot()
	}
	return st
}

func (d *Driver) AdapterNumberOfAdaptersGet(ctx driver.Handle, num *int32) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, st := d.enter(driver.EntryAdapterNumberOfAdaptersGet, ctx)
	if st != driver.StatusOk {
		return st
	}
	if num == nil {
		return driver.StatusErrNullPointer
	}
	*num = int32(len(d.visible(s)))
	return driver.StatusOk
}

func (d *Driver) AdapterAdapterInfoGet(ctx driver.Handle, info *driver.AdapterInfo, inputSize int32) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, st := d.enter(driver.EntryAdapterAdapterInfoGet, ctx)
	if st != driver.StatusOk {
		return st
	}
	return fillInfo(d.visible(s), info, inputSize)
}

func fillInfo(infos []driver.AdapterInfo, info *driver.AdapterInfo, inputSize int32) driver.Status {
	if len(infos) == 0 {
		return driver.StatusOk
	}
	if info == nil {
		return driver.StatusErrNullPointer
	}
	if inputSize < int32(len(infos))*driver.SizeofAdapterInfo {
		return driver.StatusErrInvalidParamSize
	}
	copy(driver.AdapterInfoSlice(unsafe.Pointer(info), len(infos)), infos)
	return driver.StatusOk
}

// allocInfos stores infos in memory obtained from s.alloc.
func allocInfos(s *session, infos []driver.AdapterInfo) (unsafe.Pointer, driver.Status) {
	if len(infos) == 0 {
		return nil, driver.StatusOk
	}
	p := s.alloc(int32(len(infos)) * driver.SizeofAdapterInfo)
	if p == nil {
		return nil, driver.StatusErrNullPointer
	}
	copy(driver.AdapterInfoSlice(p, len(infos)), infos)
	return p, driver.StatusOk
}

func (d *Driver) AdapterAdapterInfoX2Get(ctx driver.Handle, info *unsafe.Pointer) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, st := d.enter(driver.EntryAdapterAdapterInfoX2Get, ctx)
	if st != driver.StatusOk {
		return st
	}
	if info == nil {
		return driver.StatusErrNullPointer
	}
	p, st := allocInfos(s, d.visible(s))
	*info = p
	return st
}

func (d *Driver) AdapterAdapterInfoX3Get(ctx driver.Handle, adapterIndex int32, num *int32, info *unsafe.Pointer) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, st := d.enter(driver.EntryAdapterAdapterInfoX3Get, ctx)
	if st != driver.StatusOk {
		return st
	}
	if num == nil || info == nil {
		return driver.StatusErrNullPointer
	}
	infos := d.visible(s)
	if adapterIndex != driver.AllAdapters {
		var one []driver.AdapterInfo
		for _, in := range infos {
			if in.AdapterIndex == adapterIndex {
				one = append(one, in)
			}
		}
		if len(one) == 0 {
			return driver.StatusErrInvalidADLIdx
		}
		infos = one
	}
	p, st := allocInfos(s, infos)
	*info = p
	if st == driver.StatusOk {
		*num = int32(len(infos))
	}
	return st
}

func (d *Driver) AdapterActiveGet(ctx driver.Handle, adapterIndex int32, status *int32) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, st := d.enter(driver.EntryAdapterActiveGet, ctx); st != driver.StatusOk {
		return st
	}
	return d.activeGet(adapterIndex, status)
}

func (d *Driver) activeGet(adapterIndex int32, status *int32) driver.Status {
	a, ok := d.adapter(adapterIndex)
	if !ok {
		return driver.StatusErrInvalidADLIdx
	}
	if status == nil {
		return driver.StatusErrNullPointer
	}
	*status = 0
	if a.Active {
		*status = 1
	}
	return driver.StatusOk
}

func (d *Driver) AdapterIDGet(ctx driver.Handle, adapterIndex int32, adapterID *int32) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, st := d.enter(driver.EntryAdapterIDGet, ctx); st != driver.StatusOk {
		return st
	}
	a, ok := d.adapter(adapterIndex)
	if !ok {
		return driver.StatusErrInvalidADLIdx
	}
	if adapterID == nil {
		return driver.StatusErrNullPointer
	}
	*adapterID = a.ID
	return driver.StatusOk
}

func (d *Driver) AdapterPrimaryGet(ctx driver.Handle, primary *int32) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, st := d.enter(driver.EntryAdapterPrimaryGet, ctx); st != driver.StatusOk {
		return st
	}
	if primary == nil {
		return driver.StatusErrNullPointer
	}
	for _, a := range d.adapters {
		if a.Primary {
			*primary = d.indexByUDID[a.UDID]
			return driver.StatusOk
		}
	}
	return driver.StatusErr
}

func (d *Driver) AdapterMemoryInfoGet(ctx driver.Handle, adapterIndex int32, info *driver.MemoryInfo) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, st := d.enter(driver.EntryAdapterMemoryInfoGet, ctx); st != driver.StatusOk {
		return st
	}
	a, ok := d.adapter(adapterIndex)
	if !ok {
		return driver.StatusErrInvalidADLIdx
	}
	if info == nil {
		return driver.StatusErrNullPointer
	}
	info.MemorySize = a.MemorySize
	info.MemoryBandwidth = a.MemoryBandwidth
	driver.SetCString(info.MemoryType[:], a.MemoryType)
	return driver.StatusOk
}

func (d *Driver) GraphicsVersionsGet(ctx driver.Handle, info *driver.VersionsInfo) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, st := d.enter(driver.EntryGraphicsVersionsGet, ctx); st != driver.StatusOk {
		return st
	}
	if info == nil {
		return driver.StatusErrNullPointer
	}
	driver.SetCString(info.DriverVer[:], d.DriverVersion)
	driver.SetCString(info.CatalystVersion[:], d.CatalystVersion)
	driver.SetCString(info.CatalystWebLink[:], d.WebLink)
	return driver.StatusOk
}

func (d *Driver) GraphicsVersionsX2Get(ctx driver.Handle, info *driver.VersionsInfoX2) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, st := d.enter(driver.EntryGraphicsVersionsX2Get, ctx); st != driver.StatusOk {
		return st
	}
	if info == nil {
		return driver.StatusErrNullPointer
	}
	driver.SetCString(info.DriverVer[:], d.DriverVersion)
	driver.SetCString(info.CatalystVersion[:], d.CatalystVersion)
	driver.SetCString(info.CrimsonVersion[:], d.CrimsonVersion)
	driver.SetCString(info.CatalystWebLink[:], d.WebLink)
	return driver.StatusOk
}

func (d *Driver) OverdriveCaps(ctx driver.Handle, adapterIndex int32, supported, enabled, version *int32) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, st := d.enter(driver.EntryOverdriveCaps, ctx); st != driver.StatusOk {
		return st
	}
	a, ok := d.adapter(adapterIndex)
	if !ok {
		return driver.StatusErrInvalidADLIdx
	}
	if supported == nil || enabled == nil || version == nil {
		return driver.StatusErrNullPointer
	}
	*supported, *enabled = 0, 0
	if a.OverdriveSupported {
		*supported = 1
	}
	if a.OverdriveEnabled {
		*enabled = 1
	}
	*version = a.OverdriveVersion
	return driver.StatusOk
}

func (d *Driver) NewQueryPMLogDataGet(ctx driver.Handle, adapterIndex int32, out *driver.PMLogDataOutput) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, st := d.enter(driver.EntryNewQueryPMLogDataGet, ctx); st != driver.StatusOk {
		return st
	}
	a, ok := d.adapter(adapterIndex)
	if !ok {
		return driver.StatusErrInvalidADLIdx
	}
	if out == nil {
		return driver.StatusErrNullPointer
	}
	*out = driver.PMLogDataOutput{Size: int32(unsafe.Sizeof(*out))}
	for idx, v := range a.Sensors {
		if idx < 0 || idx >= driver.PMLogMaxSensors {
			continue
		}
		out.Sensors[idx] = driver.SingleSensorData{Supported: 1, Value: v}
	}
	return driver.StatusOk
}

func (d *Driver) legacyCreate(name string, alloc driver.AllocFunc, enum int32, threading driver.ThreadingModel) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls[name]++
	d.total++
	if !d.exposed[name] {
		return driver.StatusErrNotSupported
	}
	if st, ok := d.statuses[name]; ok {
		return st
	}
	if alloc == nil {
		return driver.StatusErrInvalidCallback
	}
	slot, st := d.bind(alloc)
	if st != driver.StatusOk {
		return st
	}
	d.legacy = &session{alloc: alloc, enum: enum, threading: threading, entry: name, adapters: d.snapshot(), slot: slot}
	d.created++
	return driver.StatusOk
}

func (d *Driver) LegacyMainControlCreate(alloc driver.AllocFunc, enumConnected int32) driver.Status {
	return d.legacyCreate(driver.EntryLegacyMainControlCreate, alloc, enumConnected, driver.ThreadingUnlocked)
}

func (d *Driver) LegacyMainControlX2Create(alloc driver.AllocFunc, enumConnected int32, threading driver.ThreadingModel) driver.Status {
	return d.legacyCreate(driver.EntryLegacyMainControlX2Create, alloc, enumConnected, threading)
}

func (d *Driver) LegacyMainControlDestroy() driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, st := d.enterLegacy(driver.EntryLegacyMainControlDestroy); st != driver.StatusOk {
		return st
	}
	d.legacy.slot.Release()
	d.legacy = nil
	d.destroyed++
	return driver.StatusOk
}

func (d *Driver) LegacyMainControlRefresh() driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, st := d.enterLegacy(driver.EntryLegacyMainControlRefresh)
	if st == driver.StatusOk {
		s.adapters = d.snapshot()
	}
	return st
}

func (d *Driver) LegacyAdapterNumberOfAdaptersGet(num *int32) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, st := d.enterLegacy(driver.EntryLegacyAdapterNumberOfAdaptersGet)
	if st != driver.StatusOk {
		return st
	}
	if num == nil {
		return driver.StatusErrNullPointer
	}
	*num = int32(len(d.visible(s)))
	return driver.StatusOk
}

func (d *Driver) LegacyAdapterAdapterInfoGet(info *driver.AdapterInfo, inputSize int32) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, st := d.enterLegacy(driver.EntryLegacyAdapterAdapterInfoGet)
	if st != driver.StatusOk {
		return st
	}
	return fillInfo(d.visible(s), info, inputSize)
}

func (d *Driver) LegacyAdapterActiveGet(adapterIndex int32, status *int32) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, st := d.enterLegacy(driver.EntryLegacyAdapterActiveGet); st != driver.StatusOk {
		return st
	}
	return d.activeGet(adapterIndex, status)
}

var _ driver.Driver = (*Driver)(nil)
