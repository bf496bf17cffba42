//go:build !windows && !ios && !android && (amd64 || arm64)

package driver

// AdapterInfo is the Linux layout of the SDK AdapterInfo struct.
type AdapterInfo struct {
	Size              int32
	AdapterIndex      int32
	UDID              [MaxPath]byte
	BusNumber         int32
	DeviceNumber      int32
	FunctionNumber    int32
	VendorID          int32
	AdapterName       [MaxPath]byte
	DisplayName       [MaxPath]byte
	Present           int32
	XScreenNum        int32
	DrvIndex          int32
	XScreenConfigName [MaxPath]byte
}
