//go:build windows && (amd64 || arm64)

package adlgo

import "github.com/obinnaokechukwu/adlgo/driver"

func fillPlatformFields(a *Adapter, info *driver.AdapterInfo) {
	a.Exists = info.Exist != 0
	a.DriverPath = driver.CString(info.DriverPath[:])
	a.DriverPathExt = driver.CString(info.DriverPathExt[:])
	a.PNPString = driver.CString(info.PNPString[:])
	a.OSDisplayIndex = int(info.OSDisplayIndex)
}
