//go:build !ios && !android && (amd64 || arm64)

// Package platform provides platform detection for adlgo.
// It determines which ADL library names to look for based on the operating
// system and architecture.
package platform

import (
	"fmt"
	"runtime"
	"unsafe"
)

// Is64Bit indicates whether the platform is 64-bit.
// adlgo only supports 64-bit platforms due to purego limitations.
const Is64Bit = unsafe.Sizeof(uintptr(0)) == 8

// Supported reports whether AMD ships an ADL library for this OS.
// ADL exists for Windows and Linux only.
const Supported = runtime.GOOS == "windows" || runtime.GOOS == "linux"

// LibraryExtension is the file extension for shared libraries on this platform.
var LibraryExtension string

// LibraryPrefix is the prefix for shared library names on this platform.
var LibraryPrefix string

func init() {
	switch runtime.GOOS {
	case "darwin":
		LibraryExtension = ".dylib"
		LibraryPrefix = "lib"
	case "windows":
		LibraryExtension = ".dll"
		LibraryPrefix = ""
	default: // linux, freebsd, etc.
		LibraryExtension = ".so"
		LibraryPrefix = "lib"
	}
}

// FormatLibraryName returns the platform-specific library filename.
// If version is 0, returns the unversioned library name.
//
// Examples:
//   - Linux:   FormatLibraryName("atiadlxx", 0) -> "libatiadlxx.so"
//   - Linux:   FormatLibraryName("c", 6)        -> "libc.so.6"
//   - Windows: FormatLibraryName("atiadlxx", 0) -> "atiadlxx.dll"
func FormatLibraryName(name string, version int) string {
	switch runtime.GOOS {
	case "darwin":
		if version > 0 {
			return fmt.Sprintf("%s%s.%d%s", LibraryPrefix, name, version, LibraryExtension)
		}
		return fmt.Sprintf("%s%s%s", LibraryPrefix, name, LibraryExtension)
	case "windows":
		if version > 0 {
			return fmt.Sprintf("%s%s-%d%s", LibraryPrefix, name, version, LibraryExtension)
		}
		return fmt.Sprintf("%s%s%s", LibraryPrefix, name, LibraryExtension)
	default: // linux, freebsd
		if version > 0 {
			return fmt.Sprintf("%s%s%s.%d", LibraryPrefix, name, LibraryExtension, version)
		}
		return fmt.Sprintf("%s%s%s", LibraryPrefix, name, LibraryExtension)
	}
}

// ADLLibraryNames returns the ADL library file names to try, most preferred first.
//
// On Windows the 64-bit driver ships atiadlxx.dll; 32-bit processes on a 64-bit
// system get atiadlxy.dll. Both are tried because some driver packages only
// install one of them.
func ADLLibraryNames() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			FormatLibraryName("atiadlxx", 0),
			FormatLibraryName("atiadlxy", 0),
		}
	default:
		return []string{FormatLibraryName("atiadlxx", 0)}
	}
}

// CLibraryNames returns the names of the C runtime that provides malloc/free.
func CLibraryNames() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{"ucrtbase.dll", "msvcrt.dll"}
	case "darwin":
		return []string{"/usr/lib/libSystem.B.dylib"}
	case "freebsd":
		return []string{FormatLibraryName("c", 7)}
	default:
		return []string{FormatLibraryName("c", 6), FormatLibraryName("c", 0)}
	}
}

// GOOS returns the current operating system.
func GOOS() string {
	return runtime.GOOS
}

// GOARCH returns the current architecture.
func GOARCH() string {
	return runtime.GOARCH
}
