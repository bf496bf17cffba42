//go:build windows && (amd64 || arm64)

package bindings

import (
	"fmt"

	"golang.org/x/sys/windows"
)

type dllLibrary struct {
	handle windows.Handle
	path   string
}

// OpenLibrary opens path with LoadLibrary.
func OpenLibrary(path string) (Library, error) {
	h, err := windows.LoadLibrary(path)
	if err != nil {
		return nil, err
	}
	return &dllLibrary{handle: h, path: path}, nil
}

func (l *dllLibrary) Lookup(symbol string) (uintptr, error) {
	addr, err := windows.GetProcAddress(l.handle, symbol)
	if err != nil || addr == 0 {
		return 0, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	return addr, nil
}

func (l *dllLibrary) Close() error {
	return windows.FreeLibrary(l.handle)
}

func (l *dllLibrary) Path() string {
	return l.path
}

func (l *dllLibrary) Handle() uintptr {
	return uintptr(l.handle)
}
