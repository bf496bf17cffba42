//go:build !ios && !android && (amd64 || arm64)

package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/obinnaokechukwu/adlgo"
	"github.com/obinnaokechukwu/adlgo/internal/fakedriver"
)

// scriptedReader returns its readings in order, repeating the last one.
type scriptedReader struct {
	mu    sync.Mutex
	steps [][]Reading
	err   error
	calls int
}

func (r *scriptedReader) Read(context.Context) ([]Reading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	i := r.calls - 1
	if i >= len(r.steps) {
		i = len(r.steps) - 1
	}
	return r.steps[i], nil
}

func reading(rpm, hotspot int) []Reading {
	return []Reading{{Adapter: 0, Name: "gpu0", Temps: adlgo.Temps{
		FanRPM: rpm, HasFanRPM: true, Hotspot: hotspot, HasHotspot: true,
	}}}
}

func TestFanStallAlertsOnTransition(t *testing.T) {
	r := &scriptedReader{steps: [][]Reading{
		reading(1200, 60),
		reading(adlgo.FanRPMInvalid, 60),
		reading(adlgo.FanRPMInvalid, 60),
		reading(1300, 60),
	}}
	var alerts []Alert
	c := New(Config{Interval: time.Second, HistorySize: 10}, r, zaptest.NewLogger(t), func(a Alert) {
		alerts = append(alerts, a)
	})

	for i := 0; i < 4; i++ {
		c.CollectOnce(context.Background())
	}
	require.Len(t, alerts, 2)
	assert.Equal(t, AlertFanStall, alerts[0].Kind)
	assert.Contains(t, alerts[0].String(), "65535")
	assert.Equal(t, AlertRecovered, alerts[1].Kind)
	assert.Equal(t, 2, c.Alerts())
}

func TestHotspotLimit(t *testing.T) {
	r := &scriptedReader{steps: [][]Reading{reading(1200, 95)}}
	var got []AlertKind
	c := New(Config{HotspotLimit: 90}, r, nil, func(a Alert) { got = append(got, a.Kind) })
	c.CollectOnce(context.Background())
	assert.Equal(t, []AlertKind{AlertHotspot}, got)
}

func TestHistoryRing(t *testing.T) {
	r := &scriptedReader{steps: [][]Reading{reading(1, 0), reading(2, 0), reading(3, 0), reading(4, 0), reading(5, 0)}}
	c := New(Config{HistorySize: 3}, r, nil, nil)
	for i := 0; i < 5; i++ {
		c.CollectOnce(context.Background())
	}

	h := c.History(10)
	require.Len(t, h, 3)
	assert.Equal(t, 3, h[0].Readings[0].Temps.FanRPM)
	assert.Equal(t, 5, h[2].Readings[0].Temps.FanRPM)

	h = c.History(2)
	require.Len(t, h, 2)
	assert.Equal(t, 4, h[0].Readings[0].Temps.FanRPM)
	assert.Empty(t, c.History(0))
	assert.Equal(t, 5, c.Current().Readings[0].Temps.FanRPM)
}

func TestReadErrorKeepsLastSample(t *testing.T) {
	r := &scriptedReader{steps: [][]Reading{reading(1000, 50)}}
	c := New(Config{}, r, nil, nil)
	c.CollectOnce(context.Background())

	r.err = errors.New("driver went away")
	c.CollectOnce(context.Background())
	assert.Error(t, c.LastError())
	assert.Equal(t, 1000, c.Current().Readings[0].Temps.FanRPM)
	assert.Len(t, c.History(5), 1)
}

func TestRunStopsOnCancel(t *testing.T) {
	r := &scriptedReader{steps: [][]Reading{reading(1000, 50)}}
	c := New(Config{Interval: 10 * time.Millisecond}, r, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return len(c.History(10)) >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestStartStop(t *testing.T) {
	r := &scriptedReader{steps: [][]Reading{reading(1000, 50)}}
	c := New(Config{Interval: 10 * time.Millisecond}, r, nil, nil)
	c.Start()
	require.Eventually(t, func() bool { return len(c.History(1)) == 1 }, time.Second, 5*time.Millisecond)
	c.Stop()
	c.Stop()
}

func TestContextReader(t *testing.T) {
	d := fakedriver.New(
		fakedriver.Adapter{UDID: "gpu0", Name: "Radeon", VendorID: adlgo.VendorATI, Present: true, Active: true,
			Sensors: map[int]int32{int(adlgo.SensorFanRPM): adlgo.FanRPMInvalid, int(adlgo.SensorTempHotspot): 80}},
		fakedriver.Adapter{UDID: "gpu1", Name: "Other", VendorID: 4318, Present: true, Active: true},
	)
	ctx, err := adlgo.Create(adlgo.NewGoAllocator(), adlgo.ConnectedOnly, adlgo.WithDriver(d))
	require.NoError(t, err)
	defer ctx.Destroy()

	r := NewContextReader(ctx, adlgo.VendorATI)
	readings, err := r.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, "Radeon", readings[0].Name)
	assert.True(t, readings[0].Temps.FanStalled())

	r.Refresh = true
	_, err = r.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, d.Calls("ADL2_Main_Control_Refresh"))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Read(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestContextReaderContinuesPastFailedAdapter(t *testing.T) {
	gpu0 := fakedriver.Adapter{UDID: "gpu0", Name: "First", VendorID: adlgo.VendorATI, Present: true, Active: true,
		Sensors: map[int]int32{int(adlgo.SensorFanRPM): 1100, int(adlgo.SensorTempHotspot): 70}}
	gpu1 := fakedriver.Adapter{UDID: "gpu1", Name: "Second", VendorID: adlgo.VendorATI, Present: true, Active: true,
		Sensors: map[int]int32{int(adlgo.SensorFanRPM): 1200, int(adlgo.SensorTempHotspot): 72}}
	d := fakedriver.New(gpu0, gpu1)
	ctx, err := adlgo.Create(adlgo.NewGoAllocator(), adlgo.ConnectedOnly, adlgo.WithDriver(d))
	require.NoError(t, err)
	defer ctx.Destroy()

	r := NewContextReader(ctx, adlgo.VendorATI)
	readings, err := r.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, readings, 2)

	// The first adapter disappears; the reader still holds its index.
	d.SetAdapters(gpu1)
	readings, err = r.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, readings, 2)

	assert.Equal(t, "First", readings[0].Name)
	require.Error(t, readings[0].Err)
	assert.Equal(t, adlgo.StatusErrInvalidADLIdx, adlgo.StatusOf(readings[0].Err))
	assert.Zero(t, readings[0].Temps)

	assert.Equal(t, "Second", readings[1].Name)
	assert.NoError(t, readings[1].Err)
	assert.Equal(t, 1200, readings[1].Temps.FanRPM)
}

func TestCollectorRecordsPerAdapterErrors(t *testing.T) {
	lost := errors.New("adapter gone")
	r := &scriptedReader{steps: [][]Reading{
		{
			{Adapter: 0, Name: "gpu0", Err: lost},
			{Adapter: 1, Name: "gpu1", Temps: adlgo.Temps{FanRPM: adlgo.FanRPMInvalid, HasFanRPM: true}},
		},
	}}
	var alerts []Alert
	c := New(Config{}, r, zaptest.NewLogger(t), func(a Alert) { alerts = append(alerts, a) })
	c.CollectOnce(context.Background())

	require.Len(t, alerts, 1)
	assert.Equal(t, 1, alerts[0].Adapter)
	assert.Equal(t, AlertFanStall, alerts[0].Kind)
	assert.ErrorIs(t, c.LastError(), lost)
	assert.Contains(t, c.LastError().Error(), "adapter 0")
	require.Len(t, c.Current().Readings, 2)
	assert.Len(t, c.History(5), 1)
}

func TestRemediationClearsStall(t *testing.T) {
	tests := []struct {
		name       string
		steps      [][]Reading
		remedyErr  error
		wantAlerts []AlertKind
	}{
		{
			name:  "cleared",
			steps: [][]Reading{reading(adlgo.FanRPMInvalid, 60), reading(1200, 60)},
		},
		{
			name:       "still stalled",
			steps:      [][]Reading{reading(adlgo.FanRPMInvalid, 60), reading(adlgo.FanRPMInvalid, 60)},
			wantAlerts: []AlertKind{AlertFanStall},
		},
		{
			name:       "remediation fails",
			steps:      [][]Reading{reading(adlgo.FanRPMInvalid, 60), reading(adlgo.FanRPMInvalid, 60)},
			remedyErr:  errors.New("exit status 1"),
			wantAlerts: []AlertKind{AlertFanStall},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &scriptedReader{steps: tt.steps}
			var remedied []int
			remedy := RemediatorFunc(func(ctx context.Context, rd Reading) error {
				remedied = append(remedied, rd.Adapter)
				return tt.remedyErr
			})
			var got []AlertKind
			c := New(Config{Remediate: remedy}, r, zaptest.NewLogger(t), func(a Alert) { got = append(got, a.Kind) })
			c.CollectOnce(context.Background())

			assert.Equal(t, tt.wantAlerts, got)
			assert.Equal(t, []int{0}, remedied)
			assert.Equal(t, 2, r.calls)
			assert.Equal(t, 1, c.Remediations())
			assert.Equal(t, tt.steps[1][0].Temps.FanRPM, c.Current().Readings[0].Temps.FanRPM)
		})
	}
}

func TestRemediationSkippedWhenHealthy(t *testing.T) {
	r := &scriptedReader{steps: [][]Reading{reading(1200, 60)}}
	remedy := RemediatorFunc(func(context.Context, Reading) error {
		t.Fatal("remediation ran for a healthy fan")
		return nil
	})
	c := New(Config{Remediate: remedy}, r, nil, nil)
	c.CollectOnce(context.Background())
	assert.Equal(t, 1, r.calls)
	assert.Zero(t, c.Remediations())
}
