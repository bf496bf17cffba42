//go:build !ios && !android && (amd64 || arm64)

package driver

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/obinnaokechukwu/adlgo/internal/bindings"
	"github.com/obinnaokechukwu/adlgo/internal/callback"
	"github.com/obinnaokechukwu/adlgo/internal/platform"
)

// ErrUnavailable is returned by Open when no ADL library can be loaded.
var ErrUnavailable = bindings.ErrLibraryNotFound

// EnvLibraryPath names an explicit ADL library path that is tried before the
// platform search paths.
const EnvLibraryPath = "ADLGO_LIBRARY"

// module is shared by every System in the process.
var module = bindings.NewShared(platform.ADLLibraryNames(), bindings.OpenLibrary,
	bindings.WithEnvOverride(EnvLibraryPath))

// FindLibrary returns the path Open would load without a path argument.
func FindLibrary() (string, error) {
	return bindings.FindLibrary(EnvLibraryPath, platform.ADLLibraryNames())
}

// System is a Driver backed by the installed ADL library.
//
// Entry points missing from the library are left unbound and report
// StatusErrNotSupported. Each create call binds its AllocFunc to a callback
// slot, which is released again by the matching destroy.
type System struct {
	shared *bindings.Shared
	lib    bindings.Library

	mu       sync.Mutex
	closed   bool
	exported map[string]bool
	slots    map[Handle]*callback.Slot
	legacy   *callback.Slot

	mainControlCreate         func(cb uintptr, enum int32, ctx *Handle) int32
	mainControlX2Create       func(cb uintptr, enum int32, ctx *Handle, threading int32) int32
	mainControlX3Create       func(cb uintptr, enum int32, ctx *Handle, threading int32, options int32) int32
	mainControlDestroy        func(ctx Handle) int32
	mainControlRefresh        func(ctx Handle) int32
	mainControlGetProcAddress func(ctx Handle, module uintptr, name string) uintptr

	adapterNumberOfAdaptersGet func(ctx Handle, num *int32) int32
	adapterAdapterInfoGet      func(ctx Handle, info *AdapterInfo, inputSize int32) int32
	adapterAdapterInfoX2Get    func(ctx Handle, info *unsafe.Pointer) int32
	adapterAdapterInfoX3Get    func(ctx Handle, index int32, num *int32, info *unsafe.Pointer) int32
	adapterActiveGet           func(ctx Handle, index int32, status *int32) int32
	adapterIDGet               func(ctx Handle, index int32, id *int32) int32
	adapterPrimaryGet          func(ctx Handle, primary *int32) int32
	adapterMemoryInfoGet       func(ctx Handle, index int32, info *MemoryInfo) int32
	graphicsVersionsGet        func(ctx Handle, info *VersionsInfo) int32
	graphicsVersionsX2Get      func(ctx Handle, info *VersionsInfoX2) int32
	overdriveCaps              func(ctx Handle, index int32, supported, enabled, version *int32) int32
	newQueryPMLogDataGet       func(ctx Handle, index int32, out *PMLogDataOutput) int32

	legacyMainControlCreate          func(cb uintptr, enum int32) int32
	legacyMainControlX2Create        func(cb uintptr, enum int32, threading int32) int32
	legacyMainControlDestroy         func() int32
	legacyMainControlRefresh         func() int32
	legacyAdapterNumberOfAdaptersGet func(num *int32) int32
	legacyAdapterAdapterInfoGet      func(info *AdapterInfo, inputSize int32) int32
	legacyAdapterActiveGet           func(index int32, status *int32) int32
}

// Open loads the ADL library, or takes another reference to it if it is
// already loaded, and binds every entry point it exports.
// A non-empty path is tried before the platform search paths.
func Open(path string) (*System, error) {
	shared := module
	if path != "" {
		shared = bindings.NewShared([]string{path}, bindings.OpenLibrary)
	}
	lib, err := shared.Acquire()
	if err != nil {
		return nil, err
	}

	s := &System{
		shared:   shared,
		lib:      lib,
		exported: make(map[string]bool, len(EntryPoints)),
		slots:    make(map[Handle]*callback.Slot),
	}
	s.bind(EntryMainControlCreate, &s.mainControlCreate)
	s.bind(EntryMainControlX2Create, &s.mainControlX2Create)
	s.bind(EntryMainControlX3Create, &s.mainControlX3Create)
	s.bind(EntryMainControlDestroy, &s.mainControlDestroy)
	s.bind(EntryMainControlRefresh, &s.mainControlRefresh)
	s.bind(EntryMainControlGetProcAddress, &s.mainControlGetProcAddress)
	s.bind(EntryAdapterNumberOfAdaptersGet, &s.adapterNumberOfAdaptersGet)
	s.bind(EntryAdapterAdapterInfoGet, &s.adapterAdapterInfoGet)
	s.bind(EntryAdapterAdapterInfoX2Get, &s.adapterAdapterInfoX2Get)
	s.bind(EntryAdapterAdapterInfoX3Get, &s.adapterAdapterInfoX3Get)
	s.bind(EntryAdapterActiveGet, &s.adapterActiveGet)
	s.bind(EntryAdapterIDGet, &s.adapterIDGet)
	s.bind(EntryAdapterPrimaryGet, &s.adapterPrimaryGet)
	s.bind(EntryAdapterMemoryInfoGet, &s.adapterMemoryInfoGet)
	s.bind(EntryGraphicsVersionsGet, &s.graphicsVersionsGet)
	s.bind(EntryGraphicsVersionsX2Get, &s.graphicsVersionsX2Get)
	s.bind(EntryOverdriveCaps, &s.overdriveCaps)
	s.bind(EntryNewQueryPMLogDataGet, &s.newQueryPMLogDataGet)
	s.bind(EntryLegacyMainControlCreate, &s.legacyMainControlCreate)
	s.bind(EntryLegacyMainControlX2Create, &s.legacyMainControlX2Create)
	s.bind(EntryLegacyMainControlDestroy, &s.legacyMainControlDestroy)
	s.bind(EntryLegacyMainControlRefresh, &s.legacyMainControlRefresh)
	s.bind(EntryLegacyAdapterNumberOfAdaptersGet, &s.legacyAdapterNumberOfAdaptersGet)
	s.bind(EntryLegacyAdapterAdapterInfoGet, &s.legacyAdapterAdapterInfoGet)
	s.bind(EntryLegacyAdapterActiveGet, &s.legacyAdapterActiveGet)

	if !s.exported[EntryMainControlCreate] && !s.exported[EntryMainControlX2Create] &&
		!s.exported[EntryMainControlX3Create] && !s.exported[EntryLegacyMainControlCreate] {
		_ = shared.Release()
		return nil, fmt.Errorf("%w: %s exports no create entry point", bindings.ErrSymbolNotFound, lib.Path())
	}
	return s, nil
}

// bind registers fptr against name. Missing entry points leave fptr nil.
func (s *System) bind(name string, fptr any) {
	addr, err := s.lib.Lookup(name)
	if err != nil {
		return
	}
	purego.RegisterFunc(fptr, addr)
	s.exported[name] = true
}

// Path returns the file the library was loaded from.
func (s *System) Path() string { return s.lib.Path() }

// HasEntryPoint reports whether the library exports name.
func (s *System) HasEntryPoint(name string) bool {
	if s.exported[name] {
		return true
	}
	_, err := s.lib.Lookup(name)
	return err == nil
}

// ProcAddress resolves name through ADL2_Main_Control_GetProcAddress when the
// library exports it, and through the module symbol table otherwise.
func (s *System) ProcAddress(ctx Handle, name string) uintptr {
	if s.mainControlGetProcAddress != nil && ctx != 0 {
		return s.mainControlGetProcAddress(ctx, s.lib.Handle(), name)
	}
	addr, err := s.lib.Lookup(name)
	if err != nil {
		return 0
	}
	return addr
}

// Close drops this System's reference to the library. Any callback slots
// still bound are released.
func (s *System) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for h, slot := range s.slots {
		slot.Release()
		delete(s.slots, h)
	}
	if s.legacy != nil {
		s.legacy.Release()
		s.legacy = nil
	}
	return s.shared.Release()
}

// MaxSessions is the number of sessions a process may hold open through
// System at once, legacy session included.
const MaxSessions = callback.MaxSlots

// ErrNoCallbackSlots is the error behind StatusNoCallbackSlots.
var ErrNoCallbackSlots = callback.ErrNoSlots

// bindAlloc binds alloc to a callback slot. A nil slot comes with the status
// the create call should return.
func bindAlloc(alloc AllocFunc) (*callback.Slot, Status) {
	if alloc == nil {
		return nil, StatusErrInvalidCallback
	}
	slot, err := callback.Acquire(callback.Func(alloc))
	if errors.Is(err, callback.ErrNoSlots) {
		return nil, StatusNoCallbackSlots
	}
	if err != nil {
		return nil, StatusErrInvalidCallback
	}
	return slot, StatusOk
}

func (s *System) create(alloc AllocFunc, ctx *Handle, call func(cb uintptr) int32) Status {
	if ctx == nil {
		return StatusErrNullPointer
	}
	slot, st := bindAlloc(alloc)
	if slot == nil {
		return st
	}
	st = Status(call(slot.Ptr()))
	if !st.Succeeded() || *ctx == 0 {
		slot.Release()
		return st
	}
	s.mu.Lock()
	s.slots[*ctx] = slot
	s.mu.Unlock()
	return st
}

func (s *System) MainControlCreate(alloc AllocFunc, enumConnected int32, ctx *Handle) Status {
	if s.mainControlCreate == nil {
		return StatusErrNotSupported
	}
	return s.create(alloc, ctx, func(cb uintptr) int32 {
		return s.mainControlCreate(cb, enumConnected, ctx)
	})
}

func (s *System) MainControlX2Create(alloc AllocFunc, enumConnected int32, ctx *Handle, threading ThreadingModel) Status {
	if s.mainControlX2Create == nil {
		return StatusErrNotSupported
	}
	return s.create(alloc, ctx, func(cb uintptr) int32 {
		return s.mainControlX2Create(cb, enumConnected, ctx, int32(threading))
	})
}

func (s *System) MainControlX3Create(alloc AllocFunc, enumConnected int32, ctx *Handle, threading ThreadingModel, options int32) Status {
	if s.mainControlX3Create == nil {
		return StatusErrNotSupported
	}
	return s.create(alloc, ctx, func(cb uintptr) int32 {
		return s.mainControlX3Create(cb, enumConnected, ctx, int32(threading), options)
	})
}

func (s *System) MainControlDestroy(ctx Handle) Status {
	if s.mainControlDestroy == nil {
		return StatusErrNotSupported
	}
	st := Status(s.mainControlDestroy(ctx))
	s.mu.Lock()
	if slot, ok := s.slots[ctx]; ok {
		slot.Release()
		delete(s.slots, ctx)
	}
	s.mu.Unlock()
	return st
}

func (s *System) MainControlRefresh(ctx Handle) Status {
	if s.mainControlRefresh == nil {
		return StatusErrNotSupported
	}
	return Status(s.mainControlRefresh(ctx))
}

func (s *System) AdapterNumberOfAdaptersGet(ctx Handle, num *int32) Status {
	if s.adapterNumberOfAdaptersGet == nil {
		return StatusErrNotSupported
	}
	return Status(s.adapterNumberOfAdaptersGet(ctx, num))
}

func (s *System) AdapterAdapterInfoGet(ctx Handle, info *AdapterInfo, inputSize int32) Status {
	if s.adapterAdapterInfoGet == nil {
		return StatusErrNotSupported
	}
	return Status(s.adapterAdapterInfoGet(ctx, info, inputSize))
}

func (s *System) AdapterAdapterInfoX2Get(ctx Handle, info *unsafe.Pointer) Status {
	if s.adapterAdapterInfoX2Get == nil {
		return StatusErrNotSupported
	}
	return Status(s.adapterAdapterInfoX2Get(ctx, info))
}

func (s *System) AdapterAdapterInfoX3Get(ctx Handle, adapterIndex int32, num *int32, info *unsafe.Pointer) Status {
	if s.adapterAdapterInfoX3Get == nil {
		return StatusErrNotSupported
	}
	return Status(s.adapterAdapterInfoX3Get(ctx, adapterIndex, num, info))
}

func (s *System) AdapterActiveGet(ctx Handle, adapterIndex int32, status *int32) Status {
	if s.adapterActiveGet == nil {
		return StatusErrNotSupported
	}
	return Status(s.adapterActiveGet(ctx, adapterIndex, status))
}

func (s *System) AdapterIDGet(ctx Handle, adapterIndex int32, adapterID *int32) Status {
	if s.adapterIDGet == nil {
		return StatusErrNotSupported
	}
	return Status(s.adapterIDGet(ctx, adapterIndex, adapterID))
}

func (s *System) AdapterPrimaryGet(ctx Handle, primary *int32) Status {
	if s.adapterPrimaryGet == nil {
		return StatusErrNotSupported
	}
	return Status(s.adapterPrimaryGet(ctx, primary))
}

func (s *System) AdapterMemoryInfoGet(ctx Handle, adapterIndex int32, info *MemoryInfo) Status {
	if s.adapterMemoryInfoGet == nil {
		return StatusErrNotSupported
	}
	return Status(s.adapterMemoryInfoGet(ctx, adapterIndex, info))
}

func (s *System) GraphicsVersionsGet(ctx Handle, info *VersionsInfo) Status {
	if s.graphicsVersionsGet == nil {
		return StatusErrNotSupported
	}
	return Status(s.graphicsVersionsGet(ctx, info))
}

func (s *System) GraphicsVersionsX2Get(ctx Handle, info *VersionsInfoX2) Status {
	if s.graphicsVersionsX2Get == nil {
		return StatusErrNotSupported
	}
	return Status(s.graphicsVersionsX2Get(ctx, info))
}

func (s *System) OverdriveCaps(ctx Handle, adapterIndex int32, supported, enabled, version *int32) Status {
	if s.overdriveCaps == nil {
		return StatusErrNotSupported
	}
	return Status(s.overdriveCaps(ctx, adapterIndex, supported, enabled, version))
}

func (s *System) NewQueryPMLogDataGet(ctx Handle, adapterIndex int32, out *PMLogDataOutput) Status {
	if s.newQueryPMLogDataGet == nil {
		return StatusErrNotSupported
	}
	return Status(s.newQueryPMLogDataGet(ctx, adapterIndex, out))
}

func (s *System) legacyCreate(alloc AllocFunc, call func(cb uintptr) int32) Status {
	slot, st := bindAlloc(alloc)
	if slot == nil {
		return st
	}
	st = Status(call(slot.Ptr()))
	if !st.Succeeded() {
		slot.Release()
		return st
	}
	s.mu.Lock()
	if s.legacy != nil {
		s.legacy.Release()
	}
	s.legacy = slot
	s.mu.Unlock()
	return st
}

func (s *System) LegacyMainControlCreate(alloc AllocFunc, enumConnected int32) Status {
	if s.legacyMainControlCreate == nil {
		return StatusErrNotSupported
	}
	return s.legacyCreate(alloc, func(cb uintptr) int32 {
		return s.legacyMainControlCreate(cb, enumConnected)
	})
}

func (s *System) LegacyMainControlX2Create(alloc AllocFunc, enumConnected int32, threading ThreadingModel) Status {
	if s.legacyMainControlX2Create == nil {
		return StatusErrNotSupported
	}
	return s.legacyCreate(alloc, func(cb uintptr) int32 {
		return s.legacyMainControlX2Create(cb, enumConnected, int32(threading))
	})
}

func (s *System) LegacyMainControlDestroy() Status {
	if s.legacyMainControlDestroy == nil {
		return StatusErrNotSupported
	}
	st := Status(s.legacyMainControlDestroy())
	s.mu.Lock()
	if s.legacy != nil {
		s.legacy.Release()
		s.legacy = nil
	}
	s.mu.Unlock()
	return st
}

func (s *System) LegacyMainControlRefresh() Status {
	if s.legacyMainControlRefresh == nil {
		return StatusErrNotSupported
	}
	return Status(s.legacyMainControlRefresh())
}

func (s *System) LegacyAdapterNumberOfAdaptersGet(num *int32) Status {
	if s.legacyAdapterNumberOfAdaptersGet == nil {
		return StatusErrNotSupported
	}
	return Status(s.legacyAdapterNumberOfAdaptersGet(num))
}

func (s *System) LegacyAdapterAdapterInfoGet(info *AdapterInfo, inputSize int32) Status {
	if s.legacyAdapterAdapterInfoGet == nil {
		return StatusErrNotSupported
	}
	return Status(s.legacyAdapterAdapterInfoGet(info, inputSize))
}

func (s *System) LegacyAdapterActiveGet(adapterIndex int32, status *int32) Status {
	if s.legacyAdapterActiveGet == nil {
		return StatusErrNotSupported
	}
	return Status(s.legacyAdapterActiveGet(adapterIndex, status))
}

var _ Driver = (*System)(nil)
