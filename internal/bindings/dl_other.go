//go:build !((linux || darwin || freebsd) && !ios && !android && (amd64 || arm64)) && !(windows && (amd64 || arm64))

package bindings

import (
	"fmt"
	"runtime"
)

// OpenLibrary always fails on platforms without a supported dynamic loader.
func OpenLibrary(path string) (Library, error) {
	return nil, fmt.Errorf("%w: dynamic loading unsupported on %s/%s", ErrLibraryNotFound, runtime.GOOS, runtime.GOARCH)
}
