//go:build (linux || darwin || freebsd) && !ios && !android && (amd64 || arm64)

package bindings

import (
	"fmt"

	"github.com/ebitengine/purego"
)

type dlLibrary struct {
	handle uintptr
	path   string
}

// OpenLibrary opens path with dlopen.
// ADL has no cross-library references, so symbols stay RTLD_LOCAL.
func OpenLibrary(path string) (Library, error) {
	h, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, err
	}
	return &dlLibrary{handle: h, path: path}, nil
}

func (l *dlLibrary) Lookup(symbol string) (uintptr, error) {
	addr, err := purego.Dlsym(l.handle, symbol)
	if err != nil || addr == 0 {
		return 0, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	return addr, nil
}

func (l *dlLibrary) Close() error {
	return purego.Dlclose(l.handle)
}

func (l *dlLibrary) Path() string {
	return l.path
}

func (l *dlLibrary) Handle() uintptr {
	return l.handle
}
