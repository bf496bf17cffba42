//go:build !ios && !android && (amd64 || arm64)

package driver

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusOk, "ADL_OK"},
		{StatusOkWarning, "ADL_OK_WARNING"},
		{StatusErrNotSupported, "ADL_ERR_NOT_SUPPORTED"},
		{StatusErrCallToIncompatibleDriver, "ADL_ERR_CALL_TO_INCOMPATIABLE_DRIVER"},
		{Status(-99), "ADL_STATUS(-99)"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", int32(tt.status), got, tt.want)
		}
	}
}

func TestStatusSucceeded(t *testing.T) {
	for _, s := range []Status{StatusOk, StatusOkWarning, StatusOkModeChange, StatusOkRestart, StatusOkWait} {
		assert.True(t, s.Succeeded(), s.String())
	}
	for _, s := range []Status{StatusErr, StatusErrNotInit, StatusErrNotSupported, StatusErrSetIncomplete} {
		assert.False(t, s.Succeeded(), s.String())
	}
	assert.True(t, StatusErrNoXDisplay.Known())
	assert.False(t, Status(-13).Known())
}

func TestCString(t *testing.T) {
	var buf [MaxPath]byte
	SetCString(buf[:], "Radeon RX 7900 XTX")
	assert.Equal(t, "Radeon RX 7900 XTX", CString(buf[:]))

	SetCString(buf[:], "short")
	assert.Equal(t, "short", CString(buf[:]))

	small := make([]byte, 4)
	SetCString(small, "truncated")
	assert.Equal(t, "tru", CString(small))

	assert.Equal(t, "no terminator", CString([]byte("no terminator")))
	SetCString(nil, "ignored")
}

func TestAdapterInfoSlice(t *testing.T) {
	infos := make([]AdapterInfo, 3)
	for i := range infos {
		infos[i].AdapterIndex = int32(i)
	}
	view := AdapterInfoSlice(unsafe.Pointer(&infos[0]), 3)
	require.Len(t, view, 3)
	assert.Equal(t, int32(2), view[2].AdapterIndex)
	assert.Nil(t, AdapterInfoSlice(nil, 3))
	assert.Nil(t, AdapterInfoSlice(unsafe.Pointer(&infos[0]), 0))
}

func TestStructSizes(t *testing.T) {
	assert.Equal(t, uintptr(8+MaxPath+8), unsafe.Sizeof(MemoryInfo{}))
	assert.Equal(t, uintptr(3*MaxPath), unsafe.Sizeof(VersionsInfo{}))
	assert.Equal(t, uintptr(4*MaxPath), unsafe.Sizeof(VersionsInfoX2{}))
	assert.Equal(t, uintptr(4+PMLogMaxSensors*8), unsafe.Sizeof(PMLogDataOutput{}))
	assert.Equal(t, int32(unsafe.Sizeof(AdapterInfo{})), SizeofAdapterInfo)
}

func TestEntryPointsUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, name := range EntryPoints {
		assert.False(t, seen[name], "duplicate entry point %s", name)
		seen[name] = true
	}
	for _, name := range Opaque {
		assert.False(t, seen[name], "opaque type %s bound as entry point", name)
	}
}

func TestOpenMissingLibrary(t *testing.T) {
	_, err := Open("/nonexistent/libatiadlxx.so")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}
