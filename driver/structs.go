//go:build !ios && !android && (amd64 || arm64)

package driver

import (
	"bytes"
	"unsafe"
)

// MaxPath is ADL_MAX_PATH.
const MaxPath = 256

// PMLogMaxSensors is ADL_PMLOG_MAX_SENSORS.
const PMLogMaxSensors = 256

// MemoryInfo is ADLMemoryInfo.
type MemoryInfo struct {
	MemorySize      int64
	MemoryType      [MaxPath]byte
	MemoryBandwidth int64
}

// VersionsInfo is ADLVersionsInfo.
type VersionsInfo struct {
	DriverVer       [MaxPath]byte
	CatalystVersion [MaxPath]byte
	CatalystWebLink [MaxPath]byte
}

// VersionsInfoX2 is ADLVersionsInfoX2.
type VersionsInfoX2 struct {
	DriverVer       [MaxPath]byte
	CatalystVersion [MaxPath]byte
	CrimsonVersion  [MaxPath]byte
	CatalystWebLink [MaxPath]byte
}

// SingleSensorData is ADLSingleSensorData.
type SingleSensorData struct {
	Supported int32
	Value     int32
}

// PMLogDataOutput is ADLPMLogDataOutput.
type PMLogDataOutput struct {
	Size    int32
	Sensors [PMLogMaxSensors]SingleSensorData
}

// SizeofAdapterInfo is sizeof(AdapterInfo) for the current platform.
const SizeofAdapterInfo = int32(unsafe.Sizeof(AdapterInfo{}))

// CString converts a NUL-terminated fixed-size C char array to a string.
func CString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// SetCString copies s into dst and NUL-terminates it, truncating if needed.
func SetCString(dst []byte, s string) {
	if len(dst) == 0 {
		return
	}
	n := copy(dst[:len(dst)-1], s)
	dst[n] = 0
	for i := n + 1; i < len(dst); i++ {
		dst[i] = 0
	}
}

// AdapterInfoSlice views n AdapterInfo records stored at p.
// The returned slice aliases p.
func AdapterInfoSlice(p unsafe.Pointer, n int) []AdapterInfo {
	if p == nil || n <= 0 {
		return nil
	}
	return unsafe.Slice((*AdapterInfo)(p), n)
}
