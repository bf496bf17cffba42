//go:build !ios && !android && (amd64 || arm64)

package adlgo

import "github.com/obinnaokechukwu/adlgo/driver"

// DriverVersions holds the installed driver's version strings.
// CrimsonVersion is empty when only the older entry point is available.
type DriverVersions struct {
	DriverVersion   string
	CatalystVersion string
	CrimsonVersion  string
	WebLink         string
}

// DriverVersions returns the driver version strings. ADL_OK_WARNING, which
// the driver returns when it cannot read every field, is a success.
func (c *Context) DriverVersions() (DriverVersions, error) {
	const op = "DriverVersions"
	unlock, err := c.enter(op)
	if err != nil {
		return DriverVersions{}, err
	}
	defer unlock()

	res, err := c.require(op, CapDriverVersions)
	if err != nil {
		return DriverVersions{}, err
	}
	if res.Entry == driver.EntryGraphicsVersionsX2Get {
		var info driver.VersionsInfoX2
		if err := c.check(res.Entry, c.drv.GraphicsVersionsX2Get(c.handle, &info)); err != nil {
			return DriverVersions{}, err
		}
		return DriverVersions{
			DriverVersion:   driver.CString(info.DriverVer[:]),
			CatalystVersion: driver.CString(info.CatalystVersion[:]),
			CrimsonVersion:  driver.CString(info.CrimsonVersion[:]),
			WebLink:         driver.CString(info.CatalystWebLink[:]),
		}, nil
	}

	var info driver.VersionsInfo
	if err := c.check(res.Entry, c.drv.GraphicsVersionsGet(c.handle, &info)); err != nil {
		return DriverVersions{}, err
	}
	return DriverVersions{
		DriverVersion:   driver.CString(info.DriverVer[:]),
		CatalystVersion: driver.CString(info.CatalystVersion[:]),
		WebLink:         driver.CString(info.CatalystWebLink[:]),
	}, nil
}
