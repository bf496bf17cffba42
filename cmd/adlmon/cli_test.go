//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/obinnaokechukwu/adlgo"
	"github.com/obinnaokechukwu/adlgo/driver"
	"github.com/obinnaokechukwu/adlgo/internal/fakedriver"
)

func testAdapters() []fakedriver.Adapter {
	return []fakedriver.Adapter{
		{
			UDID: "PCI_VEN_1002&DEV_73BF&REV_C1_1", Name: "AMD Radeon RX 6800 XT",
			VendorID: adlgo.VendorATI, Bus: 10, Present: true, Active: true, ID: 7, Primary: true,
			MemorySize: 16 << 30, MemoryType: "GDDR6", MemoryBandwidth: 512000,
			OverdriveSupported: true, OverdriveEnabled: true, OverdriveVersion: 8,
			Sensors: map[int]int32{
				int(adlgo.SensorFanRPM):        1200,
				int(adlgo.SensorFanPercentage): 30,
				int(adlgo.SensorTempHotspot):   68,
			},
		},
		{
			UDID: "PCI_VEN_1002&DEV_164E&REV_C1_2", Name: "AMD Radeon Graphics",
			VendorID: adlgo.VendorATI, Bus: 18, Present: true, Active: false, ID: 8,
		},
	}
}

// runCLI executes adlmon against a fake driver and returns stdout.
func runCLI(t *testing.T, d *fakedriver.Driver, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := &app{out: &out, driver: d, log: zaptest.NewLogger(t)}
	cmd := newCLI(a)
	cmd.SetArgs(args)
	cmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() { adlgo.SetLogger(nil) })
	err := cmd.Execute()
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	d := fakedriver.New(testAdapters()...)
	out, err := runCLI(t, d, "list")
	require.NoError(t, err)

	assert.Contains(t, out, "INDEX")
	assert.Contains(t, out, "AMD Radeon RX 6800 XT")
	assert.Contains(t, out, "16 GiB GDDR6")
	assert.Contains(t, out, "v8")
	assert.Contains(t, out, "0a:00.0")
	assert.Contains(t, out, "AMD Radeon Graphics")
	assert.Equal(t, 0, d.LiveContexts())
}

func TestListActiveOnly(t *testing.T) {
	d := fakedriver.New(testAdapters()...)
	out, err := runCLI(t, d, "list", "--active")
	require.NoError(t, err)
	assert.Contains(t, out, "AMD Radeon RX 6800 XT")
	assert.NotContains(t, out, "AMD Radeon Graphics")
}

func TestListOlderDriver(t *testing.T) {
	d := fakedriver.New(testAdapters()...)
	d.Hide(driver.EntryAdapterMemoryInfoGet, driver.EntryOverdriveCaps, driver.EntryAdapterAdapterInfoX3Get)
	out, err := runCLI(t, d, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "AMD Radeon RX 6800 XT")
	assert.NotContains(t, out, "GDDR6")
}

func TestInfoCommand(t *testing.T) {
	d := fakedriver.New(testAdapters()...)
	d.Hide(driver.EntryNewQueryPMLogDataGet)
	out, err := runCLI(t, d, "info")
	require.NoError(t, err)

	assert.Contains(t, out, "23.40.02.01")
	assert.Contains(t, out, "software:  23.12.1")
	assert.Contains(t, out, driver.EntryMainControlX3Create)
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, adlgo.CapPMLog.Name) {
			assert.Contains(t, line, adlgo.Unsupported.String())
		}
	}
}

func TestSensorsCommand(t *testing.T) {
	d := fakedriver.New(testAdapters()...)
	out, err := runCLI(t, d, "sensors", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Adapter 0")
	assert.Contains(t, out, "1200 RPM (30%)")
	assert.Contains(t, out, "68°C")
	assert.Contains(t, out, adlgo.SensorTempHotspot.String())
	assert.NotContains(t, out, "Adapter 1")
}

func TestSensorsStalledFan(t *testing.T) {
	adapters := testAdapters()
	adapters[0].Sensors[int(adlgo.SensorFanRPM)] = adlgo.FanRPMInvalid
	d := fakedriver.New(adapters...)
	out, err := runCLI(t, d, "sensors", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "STALLED")
}

func TestSensorsBadIndex(t *testing.T) {
	d := fakedriver.New(testAdapters()...)
	_, err := runCLI(t, d, "sensors", "first")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid adapter index")
}

func TestInvalidScopeFlag(t *testing.T) {
	d := fakedriver.New(testAdapters()...)
	_, err := runCLI(t, d, "--scope", "everything", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Equal(t, 0, d.Created())
}

func TestDriverUnavailable(t *testing.T) {
	a := &app{out: &bytes.Buffer{}, log: zaptest.NewLogger(t)}
	a.cfg = DefaultConfig()
	a.cfg.Library = t.TempDir() + "/libatiadlxx-missing.so"
	_, err := a.openContext()
	require.Error(t, err)
	assert.ErrorIs(t, err, adlgo.ErrDriverUnavailable)
	assert.Contains(t, err.Error(), adlgo.EnvLibraryPath)
}

func TestWatchAlerts(t *testing.T) {
	adapters := testAdapters()
	adapters[0].Sensors[int(adlgo.SensorFanRPM)] = adlgo.FanRPMInvalid
	d := fakedriver.New(adapters...)

	a := &app{driver: d, log: zaptest.NewLogger(t)}
	a.cfg = DefaultConfig()
	a.cfg.Interval = MinInterval

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	var alerts bytes.Buffer
	require.NoError(t, a.watch(ctx, &alerts))

	assert.True(t, strings.HasPrefix(alerts.String(), "\a"))
	assert.Contains(t, alerts.String(), "fan speed reading invalid")
	assert.Equal(t, 0, d.LiveContexts())
}

func TestServiceConfig(t *testing.T) {
	cfg := serviceConfig([]string{"service", "run", "--config=/etc/adlmon.yaml"})
	assert.Equal(t, "adlmon", cfg.Name)
	assert.Equal(t, []string{"service", "run", "--config=/etc/adlmon.yaml"}, cfg.Arguments)
}

func TestServiceArgsForwardsFlags(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "none",
			want: []string{"service", "run"},
		},
		{
			name: "absolute config",
			args: []string{"-c", "/etc/adlmon.yaml"},
			want: []string{"service", "run", "--config=/etc/adlmon.yaml"},
		},
		{
			name: "every flag",
			args: []string{
				"--config", "adlmon.yaml", "--scope", "all", "--threading", "locked",
				"--library", "/opt/amd/libatiadlxx.so", "--log-file", "logs/adlmon.log",
				"--dev", "--env-file", "adlmon.env", "--interval", "5s",
			},
			want: []string{
				"service", "run",
				"--config=" + filepath.Join(wd, "adlmon.yaml"),
				"--dev=true",
				"--env-file=" + filepath.Join(wd, "adlmon.env"),
				"--interval=5s",
				"--library=/opt/amd/libatiadlxx.so",
				"--log-file=" + filepath.Join(wd, "logs", "adlmon.log"),
				"--scope=all",
				"--threading=locked",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newCLI(&app{out: &bytes.Buffer{}})
			cmd, _, err := root.Find([]string{"service", "install"})
			require.NoError(t, err)
			require.NoError(t, cmd.ParseFlags(tt.args))

			got, err := serviceArgs(cmd.Flags())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProgramStartStop(t *testing.T) {
	d := fakedriver.New(testAdapters()...)
	a := &app{driver: d, log: zaptest.NewLogger(t)}
	a.cfg = DefaultConfig()

	p := &program{app: a}
	require.NoError(t, p.Start(nil))
	require.Eventually(t, func() bool { return d.Created() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, p.Stop(nil))
	assert.NoError(t, p.err)
	assert.Equal(t, 0, d.LiveContexts())
}
