//go:build !ios && !android && (amd64 || arm64)

// Package cmem binds the C runtime's malloc and free.
//
// Memory handed to the ADL driver through its allocation callback may be
// kept by the driver, so some callers prefer C heap memory that the Go
// runtime never sees.
package cmem

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/obinnaokechukwu/adlgo/internal/bindings"
	"github.com/obinnaokechukwu/adlgo/internal/platform"
)

var (
	loadOnce sync.Once
	loadErr  error

	malloc func(size uintptr) unsafe.Pointer
	free   func(p unsafe.Pointer)
)

// libc is acquired once and never released.
var libc = newLibc(bindings.OpenLibrary)

// newLibc searches only the C runtime names. The ADL path override does not
// apply here.
func newLibc(open bindings.Opener) *bindings.Shared {
	return bindings.NewShared(platform.CLibraryNames(), open)
}

// Load binds malloc and free. It is safe to call repeatedly.
func Load() error {
	loadOnce.Do(func() {
		lib, err := libc.Acquire()
		if err != nil {
			loadErr = err
			return
		}
		mallocAddr, err := lib.Lookup("malloc")
		if err != nil {
			loadErr = err
			return
		}
		freeAddr, err := lib.Lookup("free")
		if err != nil {
			loadErr = err
			return
		}
		purego.RegisterFunc(&malloc, mallocAddr)
		purego.RegisterFunc(&free, freeAddr)
	})
	return loadErr
}

// Malloc allocates size bytes on the C heap. It returns nil if Load failed.
func Malloc(size uintptr) unsafe.Pointer {
	if Load() != nil || size == 0 {
		return nil
	}
	return malloc(size)
}

// Free releases memory returned by Malloc. Free(nil) is a no-op.
func Free(p unsafe.Pointer) {
	if p == nil || Load() != nil {
		return
	}
	free(p)
}
