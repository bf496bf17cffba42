//go:build !ios && !android && (amd64 || arm64)

// Package callback provides the native trampolines handed to the ADL create
// calls as ADL_MAIN_MALLOC_CALLBACK.
//
// The callback has no user-data argument, so one trampoline cannot tell which
// context it is allocating for. Instead there is a fixed table of slots, each
// with its own trampoline. A slot is bound to one allocation function for the
// lifetime of one context and returned to the table when the context is gone.
package callback

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// MaxSlots is the number of contexts that can be alive at the same time.
// purego callbacks are never freed, so the table is created once and reused.
const MaxSlots = 64

// ErrNoSlots is returned by Acquire when every slot is bound.
var ErrNoSlots = errors.New("adlgo: no free allocation callback slots")

// Func allocates size bytes for the driver.
type Func func(size int32) unsafe.Pointer

type slot struct {
	tramp uintptr
	fn    Func
	// gen counts bindings so a stale Slot cannot release a newer binding.
	gen uint64
}

var (
	mu    sync.Mutex
	table [MaxSlots]slot
)

// newTrampoline creates the native entry point for slot i.
// Tests replace it to avoid creating real callbacks.
var newTrampoline = func(i int) uintptr {
	return purego.NewCallback(func(size int32) uintptr {
		return uintptr(dispatch(i, size))
	})
}

// Slot is a bound trampoline.
type Slot struct {
	index int
	gen   uint64
	ptr   uintptr
}

// Acquire binds fn to a free slot and returns it.
func Acquire(fn Func) (*Slot, error) {
	if fn == nil {
		return nil, errors.New("adlgo: nil allocation function")
	}
	mu.Lock()
	defer mu.Unlock()
	for i := range table {
		s := &table[i]
		if s.fn != nil {
			continue
		}
		if s.tramp == 0 {
			s.tramp = newTrampoline(i)
		}
		s.fn = fn
		s.gen++
		return &Slot{index: i, gen: s.gen, ptr: s.tramp}, nil
	}
	return nil, ErrNoSlots
}

// Ptr returns the function pointer to pass to the driver.
func (s *Slot) Ptr() uintptr {
	if s == nil {
		return 0
	}
	return s.ptr
}

// Index returns the slot number.
func (s *Slot) Index() int { return s.index }

// Release unbinds the slot. Calls through its trampoline return NULL afterwards.
// Releasing twice is a no-op.
func (s *Slot) Release() {
	if s == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	t := &table[s.index]
	if t.fn == nil || t.gen != s.gen || s.ptr == 0 {
		return
	}
	t.fn = nil
	s.ptr = 0
}

// InUse returns the number of bound slots.
func InUse() int {
	mu.Lock()
	defer mu.Unlock()
	n := 0
	for i := range table {
		if table[i].fn != nil {
			n++
		}
	}
	return n
}

func dispatch(i int, size int32) unsafe.Pointer {
	if size <= 0 {
		return nil
	}
	mu.Lock()
	fn := table[i].fn
	mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(size)
}
