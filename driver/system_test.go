//go:build (linux || darwin) && !ios && !android && (amd64 || arm64)

package driver

import (
	"testing"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obinnaokechukwu/adlgo/internal/bindings"
	"github.com/obinnaokechukwu/adlgo/internal/callback"
)

// newUnloadedSystem returns a System with no library and no bound entry points.
func newUnloadedSystem() *System {
	return &System{
		shared:   bindings.NewShared(nil, nil),
		exported: map[string]bool{},
		slots:    make(map[Handle]*callback.Slot),
	}
}

func TestCreateDispatchesThroughTrampoline(t *testing.T) {
	s := newUnloadedSystem()
	defer s.Close()

	buf := make([]byte, 64)
	var sizes []int32
	alloc := func(size int32) unsafe.Pointer {
		sizes = append(sizes, size)
		return unsafe.Pointer(&buf[0])
	}

	var h Handle
	var got uintptr
	st := s.create(alloc, &h, func(cb uintptr) int32 {
		// Allocate the way the driver does, through the C function pointer.
		got, _, _ = purego.SyscallN(cb, 48)
		h = 0x40
		return int32(StatusOk)
	})
	require.Equal(t, StatusOk, st)
	assert.Equal(t, []int32{48}, sizes)
	assert.Equal(t, uintptr(unsafe.Pointer(&buf[0])), got)
	require.Contains(t, s.slots, h)

	before := callback.InUse()
	assert.Equal(t, StatusErrNotSupported, s.MainControlDestroy(h))
	assert.NotContains(t, s.slots, h)
	assert.Equal(t, before-1, callback.InUse())
}

func TestCreateFailureReleasesSlot(t *testing.T) {
	s := newUnloadedSystem()
	defer s.Close()

	before := callback.InUse()
	var h Handle
	st := s.create(func(int32) unsafe.Pointer { return nil }, &h, func(uintptr) int32 {
		return int32(StatusErrNotInit)
	})
	assert.Equal(t, StatusErrNotInit, st)
	assert.Empty(t, s.slots)
	assert.Equal(t, before, callback.InUse())
}

func TestCreateWithoutFreeSlots(t *testing.T) {
	s := newUnloadedSystem()
	defer s.Close()

	var held []*callback.Slot
	defer func() {
		for _, slot := range held {
			slot.Release()
		}
	}()
	for callback.InUse() < callback.MaxSlots {
		slot, err := callback.Acquire(func(int32) unsafe.Pointer { return nil })
		require.NoError(t, err)
		held = append(held, slot)
	}

	called := false
	var h Handle
	st := s.create(func(int32) unsafe.Pointer { return nil }, &h, func(uintptr) int32 {
		called = true
		return int32(StatusOk)
	})
	assert.Equal(t, StatusNoCallbackSlots, st)
	assert.False(t, st.Known())
	assert.Equal(t, "NO_CALLBACK_SLOTS", st.String())
	assert.False(t, called, "the driver must not be called without a slot")
}
