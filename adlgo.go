//go:build !ios && !android && (amd64 || arm64)

// Package adlgo provides bindings to the AMD Display Library (ADL) without
// CGO, using purego.
//
// Create opens an ADL2 session (a Context) that owns its driver handle and
// the memory the driver allocates through it:
//
//	ctx, err := adlgo.Create(adlgo.NewGoAllocator(), adlgo.ConnectedOnly)
//	if err != nil {
//		return err
//	}
//	defer ctx.Destroy()
//	adapters, err := ctx.Adapters()
//
// Capabilities with several driver entry points (AdapterInfo, X2, X3) are
// resolved to the newest version the installed driver provides. The raw
// one-to-one call surface is in package driver.
package adlgo

import (
	"github.com/obinnaokechukwu/adlgo/driver"
)

// EnvLibraryPath names an explicit ADL library path.
const EnvLibraryPath = driver.EnvLibraryPath

// Available reports whether the ADL library can be found on this system.
// It does not load the library.
func Available() bool {
	_, err := LibraryPath()
	return err == nil
}

// LibraryPath returns the path of the ADL library that would be loaded.
func LibraryPath() (string, error) {
	return driver.FindLibrary()
}

// Re-export raw types for convenience
type (
	// Handle is an opaque ADL context handle.
	Handle = driver.Handle

	// Driver is the raw ADL call surface.
	Driver = driver.Driver
)
