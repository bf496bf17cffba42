//go:build !ios && !android && (amd64 || arm64)

package adlgo

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/obinnaokechukwu/adlgo/internal/fakedriver"
)

func twoAdapters() []fakedriver.Adapter {
	return []fakedriver.Adapter{
		{
			UDID: "PCI_VEN_1002&DEV_744C&SUBSYS_0E3B1002&REV_C8_1", Name: "AMD Radeon RX 7900 XTX",
			Display: "\\\\.\\DISPLAY1", VendorID: VendorATI, Bus: 3, Present: true, Active: true, ID: 100, Primary: true,
			MemorySize: 24 << 30, MemoryType: "GDDR6", MemoryBandwidth: 960000,
			OverdriveSupported: true, OverdriveEnabled: true, OverdriveVersion: 8,
			Sensors: map[int]int32{
				int(SensorFanRPM):        1450,
				int(SensorFanPercentage): 38,
				int(SensorTempHotspot):   71,
				int(SensorTempEdge):      58,
			},
		},
		{
			UDID: "PCI_VEN_10DE&DEV_2684&SUBSYS_16F110DE&REV_A1_2", Name: "Other Vendor GPU",
			VendorID: 4318, Bus: 4, Present: true, Active: true, ID: 200,
		},
	}
}

func newFake(adapters ...fakedriver.Adapter) *fakedriver.Driver {
	return fakedriver.New(adapters...)
}

func newTestContext(t *testing.T, d *fakedriver.Driver, opts ...CreateOption) *Context {
	t.Helper()
	opts = append([]CreateOption{WithDriver(d), WithLogger(zaptest.NewLogger(t))}, opts...)
	ctx, err := Create(NewGoAllocator(), AllEverPresent, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctx.Close() })
	return ctx
}
