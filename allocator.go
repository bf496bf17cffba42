//go:build !ios && !android && (amd64 || arm64)

package adlgo

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"

	"github.com/obinnaokechukwu/adlgo/internal/cmem"
)

// Allocator supplies the memory the driver writes variable-size output into.
//
// Allocate must return size bytes that stay valid and unmoved until Release
// is called with the same pointer. Both methods may be called from the
// driver's thread.
type Allocator interface {
	Allocate(size int) (unsafe.Pointer, error)
	Release(p unsafe.Pointer)
}

// GoAllocator allocates pinned Go memory.
//
// Blocks are kept alive and pinned until Release, so the driver may hold on
// to them between calls.
type GoAllocator struct {
	mu     sync.Mutex
	blocks map[uintptr]*goBlock
	closed bool

	limit       atomic.Int64
	pinnedBytes atomic.Int64
}

type goBlock struct {
	buf    []byte
	pinner runtime.Pinner
}

// AllocatorUsage reports memory currently held by an allocator.
type AllocatorUsage struct {
	Blocks int
	Bytes  int64
}

// ErrAllocatorLimit is returned when an allocation would exceed the configured limit.
var ErrAllocatorLimit = errors.New("adlgo: allocation exceeds configured memory limit")

// NewGoAllocator creates an allocator backed by the Go heap.
func NewGoAllocator() *GoAllocator {
	return &GoAllocator{blocks: make(map[uintptr]*goBlock)}
}

// SetMemoryLimit sets a limit for total bytes held at once.
// A limit <= 0 disables enforcement.
func (a *GoAllocator) SetMemoryLimit(bytes int64) {
	a.limit.Store(bytes)
}

// Allocate returns size bytes of zeroed, pinned memory.
func (a *GoAllocator) Allocate(size int) (unsafe.Pointer, error) {
	if size <= 0 {
		return nil, errors.New("adlgo: allocation size must be positive")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil, errors.New("adlgo: allocator is closed")
	}
	if lim := a.limit.Load(); lim > 0 && a.pinnedBytes.Load()+int64(size) > lim {
		return nil, ErrAllocatorLimit
	}

	blk := &goBlock{buf: make([]byte, size)}
	p := unsafe.Pointer(&blk.buf[0])
	blk.pinner.Pin(p)
	a.blocks[uintptr(p)] = blk
	a.pinnedBytes.Add(int64(size))
	return p, nil
}

// Release unpins p. Unknown pointers are ignored.
func (a *GoAllocator) Release(p unsafe.Pointer) {
	if p == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	blk, ok := a.blocks[uintptr(p)]
	if !ok {
		return
	}
	delete(a.blocks, uintptr(p))
	a.pinnedBytes.Add(-int64(len(blk.buf)))
	blk.pinner.Unpin()
}

// Usage returns the blocks and bytes not yet released.
func (a *GoAllocator) Usage() AllocatorUsage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AllocatorUsage{Blocks: len(a.blocks), Bytes: a.pinnedBytes.Load()}
}

// Close releases every outstanding block. Allocate fails afterwards.
func (a *GoAllocator) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	for k, blk := range a.blocks {
		blk.pinner.Unpin()
		delete(a.blocks, k)
	}
	a.pinnedBytes.Store(0)
	return nil
}

// CAllocator allocates from the C heap with malloc and free.
type CAllocator struct{}

// NewCAllocator binds the C runtime allocator.
func NewCAllocator() (*CAllocator, error) {
	if err := cmem.Load(); err != nil {
		return nil, &LoaderError{Op: "NewCAllocator", Symbol: "malloc", Err: ErrSymbolNotFound, Cause: err}
	}
	return &CAllocator{}, nil
}

// Allocate calls malloc.
func (CAllocator) Allocate(size int) (unsafe.Pointer, error) {
	if size <= 0 {
		return nil, errors.New("adlgo: allocation size must be positive")
	}
	p := cmem.Malloc(uintptr(size))
	if p == nil {
		return nil, errors.New("adlgo: malloc failed")
	}
	return p, nil
}

// Release calls free.
func (CAllocator) Release(p unsafe.Pointer) {
	cmem.Free(p)
}

// allocBridge adapts an Allocator to the driver's allocation callback and
// tracks every block handed to the driver until it is released exactly once.
type allocBridge struct {
	alloc Allocator
	log   *zap.Logger

	mu          sync.Mutex
	outstanding map[uintptr]unsafe.Pointer
	calls       int
}

func newAllocBridge(alloc Allocator, log *zap.Logger) *allocBridge {
	return &allocBridge{alloc: alloc, log: log, outstanding: make(map[uintptr]unsafe.Pointer)}
}

// allocate is the driver.AllocFunc for a context.
func (b *allocBridge) allocate(size int32) unsafe.Pointer {
	if size <= 0 {
		return nil
	}
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()

	p, err := b.alloc.Allocate(int(size))
	if err != nil || p == nil {
		b.log.Warn("driver allocation failed", zap.Int32("size", size), zap.Error(err))
		return nil
	}
	b.mu.Lock()
	b.outstanding[uintptr(p)] = p
	b.mu.Unlock()
	return p
}

// release frees p if it came from this bridge. It reports whether p was freed.
func (b *allocBridge) release(p unsafe.Pointer) bool {
	if p == nil {
		return false
	}
	b.mu.Lock()
	_, ok := b.outstanding[uintptr(p)]
	delete(b.outstanding, uintptr(p))
	b.mu.Unlock()
	if !ok {
		b.log.Warn("driver returned memory not obtained from the allocator", zap.Uintptr("ptr", uintptr(p)))
		return false
	}
	b.alloc.Release(p)
	return true
}

// releaseAll frees blocks the driver still holds. It returns how many were freed.
func (b *allocBridge) releaseAll() int {
	b.mu.Lock()
	ptrs := make([]unsafe.Pointer, 0, len(b.outstanding))
	for _, p := range b.outstanding {
		ptrs = append(ptrs, p)
	}
	b.outstanding = make(map[uintptr]unsafe.Pointer)
	b.mu.Unlock()

	for _, p := range ptrs {
		b.alloc.Release(p)
	}
	return len(ptrs)
}

func (b *allocBridge) pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.outstanding)
}
