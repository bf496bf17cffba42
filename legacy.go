//go:build !ios && !android && (amd64 || arm64)

package adlgo

import (
	"sync"
	"unsafe"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/obinnaokechukwu/adlgo/driver"
)

// The legacy ADL_* family keeps its state inside the driver, so there is at
// most one session per process and every call is serialized.
var (
	legacyMu     sync.Mutex
	legacyActive *Legacy
)

// Legacy is a session of the pre-ADL2 API.
//
// Prefer Context. Legacy exists for drivers and tools that still use the
// process-global ADL_Main_Control_Create.
type Legacy struct {
	drv        driver.Driver
	ownsDriver bool
	bridge     *allocBridge
	scope      EnumerationScope
	destroyed  bool
	log        *zap.Logger
}

// OpenLegacy starts the process-wide legacy session. It fails with
// ErrLegacyActive while another legacy session is open.
// WithCreateOptions is not supported by the legacy family.
func OpenLegacy(alloc Allocator, scope EnumerationScope, opts ...CreateOption) (*Legacy, error) {
	const op = "OpenLegacy"
	if alloc == nil {
		return nil, misuse(op, ErrNilAllocator, "")
	}
	o := &CreateOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if err := validateScope(op, scope, o.Threading); err != nil {
		return nil, err
	}
	if o.CreateOptions != 0 {
		return nil, &UnsupportedError{Op: op, Capability: "creation options"}
	}

	legacyMu.Lock()
	defer legacyMu.Unlock()
	if legacyActive != nil {
		return nil, misuse(op, ErrLegacyActive, "")
	}

	log := o.Logger
	if log == nil {
		log = Logger()
	}
	log = log.With(zap.String("session", uuid.NewString()), zap.Bool("legacy", true))

	drv, owns, err := openDriver(op, o)
	if err != nil {
		return nil, err
	}
	closeDriver := func() {
		if owns {
			_ = drv.Close()
		}
	}

	bridge := newAllocBridge(alloc, log)
	var st Status
	var entry string
	switch {
	case drv.HasEntryPoint(driver.EntryLegacyMainControlX2Create):
		entry = driver.EntryLegacyMainControlX2Create
		st = drv.LegacyMainControlX2Create(bridge.allocate, int32(scope), o.Threading)
	case drv.HasEntryPoint(driver.EntryLegacyMainControlCreate):
		entry = driver.EntryLegacyMainControlCreate
		st = drv.LegacyMainControlCreate(bridge.allocate, int32(scope))
	default:
		closeDriver()
		return nil, &LoaderError{Op: op, Symbol: driver.EntryLegacyMainControlCreate, Err: ErrSymbolNotFound}
	}
	if err := createError(op, entry, st); err != nil {
		bridge.releaseAll()
		closeDriver()
		return nil, err
	}
	logStatus(log, entry, st)

	l := &Legacy{drv: drv, ownsDriver: owns, bridge: bridge, scope: scope, log: log}
	legacyActive = l
	log.Debug("legacy session opened", zap.String("entry", entry))
	return l, nil
}

func (l *Legacy) enter(op string) (func(), error) {
	if l == nil {
		return nil, misuse(op, ErrNilPointer, "nil legacy session")
	}
	legacyMu.Lock()
	if l.destroyed {
		legacyMu.Unlock()
		return nil, misuse(op, ErrContextDestroyed, "")
	}
	return legacyMu.Unlock, nil
}

// Scope returns the enumeration scope.
func (l *Legacy) Scope() EnumerationScope { return l.scope }

// Refresh re-enumerates adapters.
func (l *Legacy) Refresh() (Status, error) {
	unlock, err := l.enter("Refresh")
	if err != nil {
		return StatusOk, err
	}
	defer unlock()
	st := l.drv.LegacyMainControlRefresh()
	if err := NewStatusError(st, driver.EntryLegacyMainControlRefresh); err != nil {
		return st, err
	}
	logStatus(l.log, driver.EntryLegacyMainControlRefresh, st)
	return st, nil
}

// NumberOfAdapters returns the number of adapters.
func (l *Legacy) NumberOfAdapters() (int, error) {
	unlock, err := l.enter("NumberOfAdapters")
	if err != nil {
		return 0, err
	}
	defer unlock()
	return l.numberOfAdapters()
}

func (l *Legacy) numberOfAdapters() (int, error) {
	var n int32
	st := l.drv.LegacyAdapterNumberOfAdaptersGet(&n)
	if err := NewStatusError(st, driver.EntryLegacyAdapterNumberOfAdaptersGet); err != nil {
		return 0, err
	}
	return int(n), nil
}

// Adapters returns every adapter.
func (l *Legacy) Adapters() ([]Adapter, error) {
	unlock, err := l.enter("Adapters")
	if err != nil {
		return nil, err
	}
	defer unlock()
	n, err := l.numberOfAdapters()
	if err != nil || n == 0 {
		return nil, err
	}
	infos := make([]driver.AdapterInfo, n)
	for i := range infos {
		infos[i].Size = driver.SizeofAdapterInfo
	}
	st := l.drv.LegacyAdapterAdapterInfoGet(&infos[0], int32(n)*int32(unsafe.Sizeof(infos[0])))
	if err := NewStatusError(st, driver.EntryLegacyAdapterAdapterInfoGet); err != nil {
		return nil, err
	}
	return adaptersFromInfos(infos), nil
}

// AdapterActive reports whether the adapter is active.
func (l *Legacy) AdapterActive(index int) (bool, error) {
	if err := checkIndex("AdapterActive", index); err != nil {
		return false, err
	}
	unlock, err := l.enter("AdapterActive")
	if err != nil {
		return false, err
	}
	defer unlock()
	var status int32
	st := l.drv.LegacyAdapterActiveGet(int32(index), &status)
	if err := NewStatusError(st, driver.EntryLegacyAdapterActiveGet); err != nil {
		return false, err
	}
	return status != 0, nil
}

// Destroy ends the legacy session. Another session may be opened afterwards.
func (l *Legacy) Destroy() error {
	unlock, err := l.enter("Destroy")
	if err != nil {
		return err
	}
	defer unlock()

	l.destroyed = true
	if legacyActive == l {
		legacyActive = nil
	}
	st := l.drv.LegacyMainControlDestroy()
	l.bridge.releaseAll()
	if l.ownsDriver {
		if err := l.drv.Close(); err != nil {
			l.log.Warn("closing ADL library failed", zap.Error(err))
		}
	}
	l.log.Debug("legacy session destroyed", zap.Stringer("status", st))
	return NewStatusError(st, driver.EntryLegacyMainControlDestroy)
}
