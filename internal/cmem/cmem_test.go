//go:build (linux || darwin) && !ios && !android && (amd64 || arm64)

package cmem

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/obinnaokechukwu/adlgo/internal/bindings"
)

func TestMallocFree(t *testing.T) {
	if err := Load(); err != nil {
		t.Skipf("libc not available: %v", err)
	}

	p := Malloc(128)
	require.NotNil(t, p)
	b := unsafe.Slice((*byte)(p), 128)
	for i := range b {
		b[i] = byte(i)
	}
	require.Equal(t, byte(127), b[127])
	Free(p)
}

func TestZeroAndNil(t *testing.T) {
	require.Nil(t, Malloc(0))
	Free(nil)
}

func TestLibcIgnoresADLOverride(t *testing.T) {
	t.Setenv("ADLGO_LIBRARY", "/opt/amd/libatiadlxx.so")

	var tried []string
	s := newLibc(func(path string) (bindings.Library, error) {
		tried = append(tried, path)
		return nil, errors.New("not opened")
	})
	_, err := s.Acquire()
	require.ErrorIs(t, err, bindings.ErrLibraryNotFound)
	require.NotEmpty(t, tried)
	require.NotContains(t, tried, "/opt/amd/libatiadlxx.so")
}
