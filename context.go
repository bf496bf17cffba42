//go:build !ios && !android && (amd64 || arm64)

package adlgo

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/obinnaokechukwu/adlgo/driver"
)

// EnumerationScope selects which adapters a context enumerates.
type EnumerationScope int32

const (
	// AllEverPresent enumerates every adapter the system has seen.
	AllEverPresent EnumerationScope = EnumerationScope(driver.EnumAllEverPresent)
	// ConnectedOnly enumerates adapters that are present and enabled.
	ConnectedOnly EnumerationScope = EnumerationScope(driver.EnumConnectedOnly)
)

func (s EnumerationScope) String() string {
	switch s {
	case AllEverPresent:
		return "all"
	case ConnectedOnly:
		return "connected"
	default:
		return fmt.Sprintf("EnumerationScope(%d)", int32(s))
	}
}

// ThreadingModel is the ADL threading model of a context.
type ThreadingModel = driver.ThreadingModel

const (
	ThreadingUnlocked = driver.ThreadingUnlocked
	ThreadingLocked   = driver.ThreadingLocked
)

// CreateOptions configures Create.
type CreateOptions struct {
	// Threading is passed to the X2/X3 create calls. ThreadingLocked lets
	// goroutines share the context; otherwise calls are serialized here.
	Threading ThreadingModel

	// CreateOptions is the adlCreateOptions argument of ADL2_Main_ControlX3_Create.
	// A non-zero value requires the X3 entry point.
	CreateOptions int32

	// Driver replaces the system ADL library. Used by tests.
	Driver driver.Driver

	// LibraryPath is tried before the platform search paths.
	LibraryPath string

	// Logger overrides the package logger for this context.
	Logger *zap.Logger
}

// CreateOption configures Create.
type CreateOption func(*CreateOptions)

// WithThreadingModel sets the threading model.
func WithThreadingModel(m ThreadingModel) CreateOption {
	return func(o *CreateOptions) { o.Threading = m }
}

// WithCreateOptions sets the X3 adlCreateOptions value.
func WithCreateOptions(v int32) CreateOption {
	return func(o *CreateOptions) { o.CreateOptions = v }
}

// WithDriver uses d instead of loading the system library.
// The caller keeps ownership of d.
func WithDriver(d driver.Driver) CreateOption {
	return func(o *CreateOptions) { o.Driver = d }
}

// WithLibraryPath loads the library from path.
func WithLibraryPath(path string) CreateOption {
	return func(o *CreateOptions) { o.LibraryPath = path }
}

// WithLogger sets the context logger.
func WithLogger(l *zap.Logger) CreateOption {
	return func(o *CreateOptions) { o.Logger = l }
}

// Context is an ADL2 session.
//
// A Context is destroyed exactly once, by Destroy or Close. Every call after
// that fails with ErrContextDestroyed without reaching the driver.
type Context struct {
	mu        sync.RWMutex
	destroyed bool

	drv        driver.Driver
	ownsDriver bool
	handle     driver.Handle
	bridge     *allocBridge
	resolver   *resolver

	scope     EnumerationScope
	threading ThreadingModel
	entry     string
	id        uuid.UUID
	log       *zap.Logger
}

// Create opens an ADL2 context.
//
// alloc supplies the memory the driver writes variable-size output into.
// scope selects which adapters are enumerated.
func Create(alloc Allocator, scope EnumerationScope, opts ...CreateOption) (*Context, error) {
	o := &CreateOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return CreateWithOptions(alloc, scope, o)
}

// CreateWithOptions opens an ADL2 context with explicit options.
func CreateWithOptions(alloc Allocator, scope EnumerationScope, opts *CreateOptions) (*Context, error) {
	const op = "Create"
	if alloc == nil {
		return nil, misuse(op, ErrNilAllocator, "")
	}
	if opts == nil {
		opts = &CreateOptions{}
	}
	if err := validateScope(op, scope, opts.Threading); err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = Logger()
	}
	id := uuid.New()
	log = log.With(zap.String("session", id.String()))

	drv, owns, err := openDriver(op, opts)
	if err != nil {
		return nil, err
	}

	entry, threading, err := creationEntry(drv, opts)
	if err != nil {
		if owns {
			_ = drv.Close()
		}
		return nil, err
	}

	bridge := newAllocBridge(alloc, log)
	var h driver.Handle
	var st Status
	switch entry {
	case driver.EntryMainControlX3Create:
		st = drv.MainControlX3Create(bridge.allocate, int32(scope), &h, threading, opts.CreateOptions)
	case driver.EntryMainControlX2Create:
		st = drv.MainControlX2Create(bridge.allocate, int32(scope), &h, threading)
	default:
		st = drv.MainControlCreate(bridge.allocate, int32(scope), &h)
	}
	if err := createError(op, entry, st); err != nil {
		bridge.releaseAll()
		if owns {
			_ = drv.Close()
		}
		return nil, err
	}
	if h == 0 {
		bridge.releaseAll()
		if owns {
			_ = drv.Close()
		}
		return nil, &DriverError{Op: entry, Status: StatusErrNullPointer}
	}
	logStatus(log, entry, st)

	c := &Context{
		drv:        drv,
		ownsDriver: owns,
		handle:     h,
		bridge:     bridge,
		scope:      scope,
		threading:  threading,
		entry:      entry,
		id:         id,
		log:        log,
	}
	c.resolver = newResolver(func(name string) bool {
		return drv.ProcAddress(h, name) != 0
	}, log)
	runtime.SetFinalizer(c, (*Context).finalize)

	log.Debug("context created",
		zap.String("entry", entry),
		zap.Stringer("scope", scope),
		zap.Int32("threading", int32(threading)),
	)
	return c, nil
}

func validateScope(op string, scope EnumerationScope, threading ThreadingModel) error {
	if scope != AllEverPresent && scope != ConnectedOnly {
		return misuse(op, ErrInvalidArgument, fmt.Sprintf("unknown enumeration scope %d", int32(scope)))
	}
	if threading != ThreadingUnlocked && threading != ThreadingLocked {
		return misuse(op, ErrInvalidArgument, fmt.Sprintf("unknown threading model %d", int32(threading)))
	}
	return nil
}

func openDriver(op string, opts *CreateOptions) (driver.Driver, bool, error) {
	if opts.Driver != nil {
		return opts.Driver, false, nil
	}
	sys, err := driver.Open(opts.LibraryPath)
	if err != nil {
		return nil, false, &LoaderError{Op: op, Err: ErrDriverUnavailable, Cause: err}
	}
	return sys, true, nil
}

// creationEntry picks the create call. Creation cannot use the resolver since
// there is no context yet, so it asks the module directly.
func creationEntry(drv driver.Driver, opts *CreateOptions) (string, ThreadingModel, error) {
	threading := opts.Threading
	switch {
	case drv.HasEntryPoint(driver.EntryMainControlX3Create):
		return driver.EntryMainControlX3Create, threading, nil
	case opts.CreateOptions != 0:
		return "", 0, &UnsupportedError{Op: "Create", Capability: "creation options"}
	case drv.HasEntryPoint(driver.EntryMainControlX2Create):
		return driver.EntryMainControlX2Create, threading, nil
	case drv.HasEntryPoint(driver.EntryMainControlCreate):
		// The base create has no threading argument and is unlocked.
		return driver.EntryMainControlCreate, ThreadingUnlocked, nil
	}
	return "", 0, &LoaderError{Op: "Create", Symbol: driver.EntryMainControlCreate, Err: ErrSymbolNotFound}
}

// enter starts a driver call on c. Locked contexts admit concurrent callers;
// unlocked contexts admit one at a time.
func (c *Context) enter(op string) (func(), error) {
	if c == nil {
		return nil, misuse(op, ErrNilPointer, "nil context")
	}
	var unlock func()
	if c.threading == ThreadingLocked {
		c.mu.RLock()
		unlock = c.mu.RUnlock
	} else {
		c.mu.Lock()
		unlock = c.mu.Unlock
	}
	if c.destroyed {
		unlock()
		return nil, misuse(op, ErrContextDestroyed, "")
	}
	return unlock, nil
}

// require resolves a capability and fails with UnsupportedError when no
// entry point is available. The caller must be inside enter.
func (c *Context) require(op string, capability Capability) (Resolution, error) {
	res := c.resolver.resolve(capability)
	if res.State != Resolved {
		return res, &UnsupportedError{Op: op, Capability: capability.Name}
	}
	return res, nil
}

// check converts st and logs advisory statuses.
func (c *Context) check(op string, st Status) error {
	if err := NewStatusError(st, op); err != nil {
		return err
	}
	logStatus(c.log, op, st)
	return nil
}

// ID returns the session ID used in log fields.
func (c *Context) ID() uuid.UUID { return c.id }

// Scope returns the enumeration scope.
func (c *Context) Scope() EnumerationScope { return c.scope }

// ThreadingModel returns the effective threading model.
func (c *Context) ThreadingModel() ThreadingModel { return c.threading }

// CreateEntry returns the entry point that created the context.
func (c *Context) CreateEntry() string { return c.entry }

// Handle returns the raw context handle, or 0 after Destroy.
func (c *Context) Handle() driver.Handle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.handle
}

// Destroyed reports whether Destroy has been called.
func (c *Context) Destroyed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.destroyed
}

// Refresh re-enumerates adapters. Adapter indices and UDIDs stay paired
// across refreshes. A positive status is returned with a nil error.
func (c *Context) Refresh() (Status, error) {
	unlock, err := c.enter("Refresh")
	if err != nil {
		return StatusOk, err
	}
	defer unlock()
	st := c.drv.MainControlRefresh(c.handle)
	if err := c.check(driver.EntryMainControlRefresh, st); err != nil {
		return st, err
	}
	c.log.Debug("context refreshed")
	return st, nil
}

// ProcAddress returns the address of an entry point for this context,
// or 0 if the driver does not provide it.
func (c *Context) ProcAddress(name string) (uintptr, error) {
	unlock, err := c.enter("ProcAddress")
	if err != nil {
		return 0, err
	}
	defer unlock()
	if name == "" {
		return 0, misuse("ProcAddress", ErrInvalidArgument, "empty entry point name")
	}
	return c.drv.ProcAddress(c.handle, name), nil
}

// Resolve looks up capability on first use and returns the cached result afterwards.
func (c *Context) Resolve(capability Capability) (Resolution, error) {
	unlock, err := c.enter("Resolve")
	if err != nil {
		return Resolution{}, err
	}
	defer unlock()
	return c.resolver.resolve(capability), nil
}

// Supports reports whether any version of capability is available.
func (c *Context) Supports(capability Capability) bool {
	res, err := c.Resolve(capability)
	return err == nil && res.State == Resolved
}

// Destroy releases the driver session. The context is unusable afterwards,
// even if the driver reports an error. Destroying twice is misuse.
func (c *Context) Destroy() error {
	if c == nil {
		return misuse("Destroy", ErrNilPointer, "nil context")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return misuse("Destroy", ErrContextDestroyed, "")
	}
	return c.destroyLocked()
}

// Close destroys the context if it is still alive.
func (c *Context) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return nil
	}
	return c.destroyLocked()
}

func (c *Context) destroyLocked() error {
	c.destroyed = true
	runtime.SetFinalizer(c, nil)

	st := c.drv.MainControlDestroy(c.handle)
	c.handle = 0
	if n := c.bridge.releaseAll(); n > 0 {
		c.log.Debug("released driver allocations at destroy", zap.Int("count", n))
	}
	if c.ownsDriver {
		if err := c.drv.Close(); err != nil {
			c.log.Warn("closing ADL library failed", zap.Error(err))
		}
	}
	c.log.Debug("context destroyed", zap.Stringer("status", st))
	return NewStatusError(st, driver.EntryMainControlDestroy)
}

func (c *Context) finalize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	c.log.Warn("context was not destroyed; destroying in finalizer")
	_ = c.destroyLocked()
}
