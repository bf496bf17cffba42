//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/obinnaokechukwu/adlgo"
	"github.com/obinnaokechukwu/adlgo/internal/fakedriver"
	"github.com/obinnaokechukwu/adlgo/internal/monitor"
)

func stalled(index int) monitor.Reading {
	return monitor.Reading{Adapter: index, Name: "gpu", Temps: adlgo.Temps{FanRPM: adlgo.FanRPMInvalid, HasFanRPM: true}}
}

func TestCommandRemediator(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}
	out := filepath.Join(t.TempDir(), "remedied")

	tests := []struct {
		name    string
		command string
		timeout time.Duration
		errMsg  string
	}{
		{name: "success", command: `echo "$ADLMON_ADAPTER_INDEX $ADLMON_FAN_RPM" > ` + out, timeout: 5 * time.Second},
		{name: "failure", command: "echo busy >&2; exit 3", timeout: 5 * time.Second, errMsg: "busy"},
		{name: "timeout", command: "exec sleep 5", timeout: 50 * time.Millisecond, errMsg: "timed out"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &commandRemediator{command: tt.command, timeout: tt.timeout, log: zaptest.NewLogger(t)}
			err := r.Remediate(context.Background(), stalled(2))
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Contains(t, err.Error(), "adapter 2")
				return
			}
			require.NoError(t, err)
			data, err := os.ReadFile(out)
			require.NoError(t, err)
			assert.Equal(t, "2 65535\n", string(data))
		})
	}
}

func TestWatchRunsOnStallCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}
	adapters := testAdapters()
	adapters[0].Sensors[int(adlgo.SensorFanRPM)] = adlgo.FanRPMInvalid

	a := &app{driver: fakedriver.New(adapters...), log: zaptest.NewLogger(t)}
	a.cfg = DefaultConfig()
	a.cfg.Interval = time.Hour
	marker := filepath.Join(t.TempDir(), "ran")
	a.cfg.OnStall = "touch " + marker

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	var alerts bytes.Buffer
	require.NoError(t, a.watch(ctx, &alerts))

	_, err := os.Stat(marker)
	require.NoError(t, err)
	// The fake fan stays stalled after the command, so the alert still fires.
	assert.Contains(t, alerts.String(), "fan speed reading invalid")
}
