//go:build !ios && !android && (amd64 || arm64)

package callback

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeTrampolines(t *testing.T) {
	t.Helper()
	orig := newTrampoline
	newTrampoline = func(i int) uintptr { return uintptr(0x1000 + i) }
	t.Cleanup(func() { newTrampoline = orig })
}

func TestAcquireDispatchesToBoundFunc(t *testing.T) {
	fakeTrampolines(t)

	buf := make([]byte, 64)
	var sizes []int32
	s, err := Acquire(func(size int32) unsafe.Pointer {
		sizes = append(sizes, size)
		return unsafe.Pointer(&buf[0])
	})
	require.NoError(t, err)
	defer s.Release()

	assert.NotZero(t, s.Ptr())
	assert.Equal(t, unsafe.Pointer(&buf[0]), dispatch(s.Index(), 48))
	assert.Equal(t, []int32{48}, sizes)
}

func TestDispatchRejectsNonPositiveSize(t *testing.T) {
	fakeTrampolines(t)

	called := false
	s, err := Acquire(func(size int32) unsafe.Pointer {
		called = true
		return nil
	})
	require.NoError(t, err)
	defer s.Release()

	assert.Nil(t, dispatch(s.Index(), 0))
	assert.Nil(t, dispatch(s.Index(), -4))
	assert.False(t, called)
}

func TestReleasedSlotReturnsNull(t *testing.T) {
	fakeTrampolines(t)

	s, err := Acquire(func(size int32) unsafe.Pointer {
		t.Fatal("released slot must not call its function")
		return nil
	})
	require.NoError(t, err)
	idx := s.Index()
	s.Release()
	s.Release()

	assert.Nil(t, dispatch(idx, 16))
	assert.Zero(t, s.Ptr())
}

func TestSlotsAreReused(t *testing.T) {
	fakeTrampolines(t)

	before := InUse()
	a, err := Acquire(func(int32) unsafe.Pointer { return nil })
	require.NoError(t, err)
	ptr := a.Ptr()
	a.Release()

	b, err := Acquire(func(int32) unsafe.Pointer { return nil })
	require.NoError(t, err)
	defer b.Release()

	assert.Equal(t, ptr, b.Ptr())
	assert.Equal(t, before+1, InUse())
}

func TestExhaustion(t *testing.T) {
	fakeTrampolines(t)

	var held []*Slot
	defer func() {
		for _, s := range held {
			s.Release()
		}
	}()
	for {
		s, err := Acquire(func(int32) unsafe.Pointer { return nil })
		if err != nil {
			assert.ErrorIs(t, err, ErrNoSlots)
			break
		}
		held = append(held, s)
		require.LessOrEqual(t, len(held), MaxSlots)
	}
	assert.Equal(t, MaxSlots, InUse())
}

func TestStaleSlotCannotReleaseNewBinding(t *testing.T) {
	fakeTrampolines(t)

	old, err := Acquire(func(int32) unsafe.Pointer { return nil })
	require.NoError(t, err)
	idx := old.Index()
	old.Release()

	buf := make([]byte, 8)
	fresh, err := Acquire(func(int32) unsafe.Pointer { return unsafe.Pointer(&buf[0]) })
	require.NoError(t, err)
	defer fresh.Release()
	require.Equal(t, idx, fresh.Index())

	stale := &Slot{index: idx, gen: fresh.gen - 1, ptr: fresh.Ptr()}
	stale.Release()
	assert.Equal(t, unsafe.Pointer(&buf[0]), dispatch(idx, 8))
}
