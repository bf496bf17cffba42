// Package bindings handles loading the ADL shared library and resolving its
// entry points.
//
// The driver library is process-wide state. It is loaded lazily by the first
// Acquire and unloaded when the last reference is released, so every context
// in the process shares one module handle while keeping its own session state.
package bindings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// ErrLibraryNotFound is returned when no candidate library could be opened.
var ErrLibraryNotFound = errors.New("adlgo: ADL library not found")

// ErrSymbolNotFound is returned when a library does not export a symbol.
var ErrSymbolNotFound = errors.New("adlgo: ADL entry point not found")

// Library is an opened shared library.
type Library interface {
	// Lookup returns the address of an exported symbol.
	Lookup(symbol string) (uintptr, error)
	// Close unloads the library.
	Close() error
	// Path returns the path the library was opened from.
	Path() string
	// Handle returns the native module handle.
	Handle() uintptr
}

// Opener opens a single library path.
type Opener func(path string) (Library, error)

// Shared is a lazily loaded, reference-counted library.
//
// Acquire loads the library on first use; Release unloads it once every
// Acquire has been matched. A failed load is not cached: the next Acquire
// searches again, since a driver may be installed while the process runs.
type Shared struct {
	mu    sync.Mutex
	names []string
	paths []string
	env   string
	open  Opener
	lib   Library
	refs  int
}

// Option configures a Shared.
type Option func(*Shared)

// WithSearchPaths adds directories tried before the platform search paths.
func WithSearchPaths(dirs ...string) Option {
	return func(s *Shared) {
		s.paths = append(s.paths, dirs...)
	}
}

// WithEnvOverride names an environment variable holding an explicit library
// path. It is read on every load and tried before anything else.
func WithEnvOverride(name string) Option {
	return func(s *Shared) {
		s.env = name
	}
}

// NewShared creates a shared library that searches for the given file names
// using open.
func NewShared(names []string, open Opener, opts ...Option) *Shared {
	s := &Shared{names: names, open: open}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Acquire returns the loaded library, loading it if this is the first reference.
func (s *Shared) Acquire() (Library, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lib == nil {
		lib, err := s.load()
		if err != nil {
			return nil, err
		}
		s.lib = lib
	}
	s.refs++
	return s.lib, nil
}

// Release drops one reference. The library is closed when the count reaches zero.
// Releasing more times than acquired is a no-op.
func (s *Shared) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refs == 0 {
		return nil
	}
	s.refs--
	if s.refs > 0 {
		return nil
	}
	lib := s.lib
	s.lib = nil
	return lib.Close()
}

// Refs returns the number of outstanding references.
func (s *Shared) Refs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs
}

// IsLoaded returns true if the library is currently loaded.
func (s *Shared) IsLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lib != nil
}

func (s *Shared) load() (Library, error) {
	var lastErr error
	for _, candidate := range s.candidates() {
		lib, err := s.open(candidate)
		if err == nil {
			return lib, nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v (last error: %v)", ErrLibraryNotFound, s.names, lastErr)
	}
	return nil, fmt.Errorf("%w: %v", ErrLibraryNotFound, s.names)
}

// candidates lists full paths first, then bare names so the system loader
// can apply its own search rules.
func (s *Shared) candidates() []string {
	var out []string
	if s.env != "" {
		if p := os.Getenv(s.env); p != "" {
			out = append(out, p)
		}
	}
	for _, name := range s.names {
		if filepath.IsAbs(name) {
			out = append(out, name)
		}
	}
	searchPaths := append(append([]string{}, s.paths...), LibrarySearchPaths()...)
	for _, dir := range searchPaths {
		for _, name := range s.names {
			if filepath.IsAbs(name) {
				continue
			}
			out = append(out, filepath.Join(dir, name))
		}
	}
	for _, name := range s.names {
		if !filepath.IsAbs(name) {
			out = append(out, name)
		}
	}
	return out
}

// FindLibrary searches for the first existing file among names and returns its full path.
// A path named by the env variable wins when it exists; env may be empty.
// This is useful for diagnostics.
func FindLibrary(env string, names []string) (string, error) {
	if env != "" {
		if p := os.Getenv(env); p != "" {
			if _, err := os.Stat(p); err == nil {
				return p, nil
			}
		}
	}
	for _, searchPath := range LibrarySearchPaths() {
		for _, name := range names {
			fullPath := filepath.Join(searchPath, name)
			if _, err := os.Stat(fullPath); err == nil {
				return fullPath, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %v", ErrLibraryNotFound, names)
}

// LibrarySearchPaths returns platform-specific library search paths.
func LibrarySearchPaths() []string {
	var paths []string

	switch runtime.GOOS {
	case "linux":
		// Check LD_LIBRARY_PATH first
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		// AMDGPU-PRO and ROCm install locations, then the standard paths
		paths = append(paths,
			"/opt/amdgpu-pro/lib64",
			"/opt/amdgpu-pro/lib/x86_64-linux-gnu",
			"/opt/amdgpu/lib64",
			"/opt/amdgpu/lib/x86_64-linux-gnu",
			"/usr/lib/x86_64-linux-gnu",
			"/usr/lib/aarch64-linux-gnu",
			"/usr/local/lib",
			"/usr/lib64",
			"/usr/lib",
		)

	case "windows":
		// The display driver installs ADL into System32.
		if root := os.Getenv("SystemRoot"); root != "" {
			paths = append(paths, filepath.Join(root, "System32"))
		}
		// Executable directory
		if exe, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Dir(exe))
		}
		if winPath := os.Getenv("PATH"); winPath != "" {
			paths = append(paths, filepath.SplitList(winPath)...)
		}

	case "freebsd", "darwin":
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		paths = append(paths,
			"/usr/local/lib",
			"/usr/lib",
		)
	}

	return paths
}
