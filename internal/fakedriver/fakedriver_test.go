//go:build !ios && !android && (amd64 || arm64)

package fakedriver

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obinnaokechukwu/adlgo/driver"
)

func goAlloc(size int32) unsafe.Pointer {
	buf := make([]byte, size)
	return unsafe.Pointer(&buf[0])
}

func TestRefreshTakesNewSnapshot(t *testing.T) {
	d := New(Adapter{UDID: "a", Present: true})
	var h driver.Handle
	require.Equal(t, driver.StatusOk, d.MainControlCreate(goAlloc, driver.EnumAllEverPresent, &h))

	d.SetAdapters(Adapter{UDID: "a", Present: true}, Adapter{UDID: "b", Present: true})
	var n int32
	require.Equal(t, driver.StatusOk, d.AdapterNumberOfAdaptersGet(h, &n))
	assert.Equal(t, int32(1), n)

	require.Equal(t, driver.StatusOk, d.MainControlRefresh(h))
	require.Equal(t, driver.StatusOk, d.AdapterNumberOfAdaptersGet(h, &n))
	assert.Equal(t, int32(2), n)
}

func TestHiddenEntryPoint(t *testing.T) {
	d := New()
	d.Hide(driver.EntryAdapterAdapterInfoX3Get)
	assert.False(t, d.HasEntryPoint(driver.EntryAdapterAdapterInfoX3Get))

	var h driver.Handle
	require.Equal(t, driver.StatusOk, d.MainControlX2Create(goAlloc, 0, &h, driver.ThreadingLocked))
	assert.Zero(t, d.ProcAddress(h, driver.EntryAdapterAdapterInfoX3Get))
	assert.NotZero(t, d.ProcAddress(h, driver.EntryAdapterAdapterInfoX2Get))
	assert.Equal(t, driver.ThreadingLocked, d.Threading(h))
	assert.Equal(t, driver.EntryMainControlX2Create, d.CreateEntry(h))
}

func TestUnknownHandle(t *testing.T) {
	d := New()
	var n int32
	assert.Equal(t, driver.StatusErrNotInit, d.AdapterNumberOfAdaptersGet(0xdead, &n))
	assert.Equal(t, 1, d.Calls(driver.EntryAdapterNumberOfAdaptersGet))
}

func TestX3AllocatesThroughCallback(t *testing.T) {
	d := New(Adapter{UDID: "a", Present: true}, Adapter{UDID: "b", Present: false})
	var sizes []int32
	alloc := func(size int32) unsafe.Pointer {
		sizes = append(sizes, size)
		return goAlloc(size)
	}
	var h driver.Handle
	require.Equal(t, driver.StatusOk, d.MainControlCreate(alloc, driver.EnumConnectedOnly, &h))

	var n int32
	var p unsafe.Pointer
	require.Equal(t, driver.StatusOk, d.AdapterAdapterInfoX3Get(h, driver.AllAdapters, &n, &p))
	assert.Equal(t, int32(1), n)
	assert.Equal(t, []int32{driver.SizeofAdapterInfo}, sizes)
	infos := driver.AdapterInfoSlice(p, int(n))
	assert.Equal(t, "a", driver.CString(infos[0].UDID[:]))
}

func TestForcedStatus(t *testing.T) {
	d := New()
	d.SetStatus(driver.EntryMainControlCreate, driver.StatusErrNotInit)
	var h driver.Handle
	assert.Equal(t, driver.StatusErrNotInit, d.MainControlCreate(goAlloc, 0, &h))
	assert.Zero(t, d.LiveContexts())

	d.SetStatus(driver.EntryMainControlCreate, driver.StatusOk)
	assert.Equal(t, driver.StatusOk, d.MainControlCreate(goAlloc, 0, &h))
	assert.Equal(t, 1, d.LiveContexts())
}
