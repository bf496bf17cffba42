//go:build !ios && !android && (amd64 || arm64)

// Package driver provides the raw ADL call surface.
//
// Every method of Driver maps one-to-one onto an ADL entry point and returns
// the driver's integer status unchanged. No method validates handles, owns
// memory or retries: that is the job of the adlgo package. System binds the
// methods to the vendor library with purego; tests substitute an in-memory
// implementation.
package driver

import "unsafe"

// Handle is an opaque ADL_CONTEXT_HANDLE. It is never dereferenced on the Go side.
type Handle uintptr

// AllocFunc is the Go shape of ADL_MAIN_MALLOC_CALLBACK.
// The driver calls it with a byte count and stores output data in the
// returned memory; the caller of the ADL function owns that memory afterwards.
type AllocFunc func(size int32) unsafe.Pointer

// ThreadingModel is ADLThreadingModel.
type ThreadingModel int32

const (
	// ThreadingUnlocked does not serialize calls inside the driver.
	ThreadingUnlocked ThreadingModel = 0
	// ThreadingLocked makes the driver serialize calls on the context.
	ThreadingLocked ThreadingModel = 1
)

// Values for the iEnumConnectedAdapters argument of the create calls.
const (
	EnumAllEverPresent int32 = 0
	EnumConnectedOnly  int32 = 1
)

// AllAdapters asks indexed enumeration calls for every adapter.
const AllAdapters int32 = -1

// Driver is the raw ADL surface used by adlgo.
//
// Pointer arguments follow the C prototypes: outputs are written through them
// and *unsafe.Pointer outputs receive memory obtained from the context's AllocFunc.
type Driver interface {
	// HasEntryPoint reports whether the loaded module exports name.
	HasEntryPoint(name string) bool
	// ProcAddress resolves name for ctx like ADL2_Main_Control_GetProcAddress.
	// It returns 0 when the entry point is not available.
	ProcAddress(ctx Handle, name string) uintptr
	// Close releases this Driver's reference to the loaded module.
	Close() error

	MainControlCreate(alloc AllocFunc, enumConnected int32, ctx *Handle) Status
	MainControlX2Create(alloc AllocFunc, enumConnected int32, ctx *Handle, threading ThreadingModel) Status
	MainControlX3Create(alloc AllocFunc, enumConnected int32, ctx *Handle, threading ThreadingModel, options int32) Status
	MainControlDestroy(ctx Handle) Status
	MainControlRefresh(ctx Handle) Status

	AdapterNumberOfAdaptersGet(ctx Handle, num *int32) Status
	AdapterAdapterInfoGet(ctx Handle, info *AdapterInfo, inputSize int32) Status
	AdapterAdapterInfoX2Get(ctx Handle, info *unsafe.Pointer) Status
	AdapterAdapterInfoX3Get(ctx Handle, adapterIndex int32, num *int32, info *unsafe.Pointer) Status
	AdapterActiveGet(ctx Handle, adapterIndex int32, status *int32) Status
	AdapterIDGet(ctx Handle, adapterIndex int32, adapterID *int32) Status
	AdapterPrimaryGet(ctx Handle, primary *int32) Status
	AdapterMemoryInfoGet(ctx Handle, adapterIndex int32, info *MemoryInfo) Status
	GraphicsVersionsGet(ctx Handle, info *VersionsInfo) Status
	GraphicsVersionsX2Get(ctx Handle, info *VersionsInfoX2) Status
	OverdriveCaps(ctx Handle, adapterIndex int32, supported, enabled, version *int32) Status
	NewQueryPMLogDataGet(ctx Handle, adapterIndex int32, out *PMLogDataOutput) Status

	// Legacy ADL_* family. These calls operate on process-global driver state.
	LegacyMainControlCreate(alloc AllocFunc, enumConnected int32) Status
	LegacyMainControlX2Create(alloc AllocFunc, enumConnected int32, threading ThreadingModel) Status
	LegacyMainControlDestroy() Status
	LegacyMainControlRefresh() Status
	LegacyAdapterNumberOfAdaptersGet(num *int32) Status
	LegacyAdapterAdapterInfoGet(info *AdapterInfo, inputSize int32) Status
	LegacyAdapterActiveGet(adapterIndex int32, status *int32) Status
}
