//go:build !windows && !ios && !android && (amd64 || arm64)

package adlgo

import "github.com/obinnaokechukwu/adlgo/driver"

func fillPlatformFields(a *Adapter, info *driver.AdapterInfo) {
	a.XScreenNum = int(info.XScreenNum)
	a.DriverIndex = int(info.DrvIndex)
	a.XScreenConfigName = driver.CString(info.XScreenConfigName[:])
}
