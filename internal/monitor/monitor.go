//go:build !ios && !android && (amd64 || arm64)

// Package monitor polls adapter temperatures and fan readings, keeps a
// bounded history and raises alerts when a fan stalls or a hotspot limit
// is crossed.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/obinnaokechukwu/adlgo"
)

// Reading is one adapter's sensors at one point in time. Err is set when
// the adapter could not be read; Temps is then zero.
type Reading struct {
	Adapter int
	Name    string
	Temps   adlgo.Temps
	Err     error
}

// Sample is the result of one poll.
type Sample struct {
	Time     time.Time
	Readings []Reading
}

// Reader reads the current sensors of every monitored adapter. A failure
// confined to one adapter is reported in that adapter's Reading.
type Reader interface {
	Read(ctx context.Context) ([]Reading, error)
}

// Remediator tries to clear a stalled fan on one adapter.
type Remediator interface {
	Remediate(ctx context.Context, r Reading) error
}

// RemediatorFunc adapts a function to Remediator.
type RemediatorFunc func(ctx context.Context, r Reading) error

func (f RemediatorFunc) Remediate(ctx context.Context, r Reading) error { return f(ctx, r) }

// AlertKind classifies alerts.
type AlertKind int

const (
	AlertFanStall AlertKind = iota + 1
	AlertHotspot
	AlertRecovered
)

func (k AlertKind) String() string {
	switch k {
	case AlertFanStall:
		return "fan-stall"
	case AlertHotspot:
		return "hotspot"
	case AlertRecovered:
		return "recovered"
	default:
		return "unknown"
	}
}

// Alert is raised when an adapter enters or leaves a fault state.
type Alert struct {
	Time    time.Time
	Kind    AlertKind
	Adapter int
	Name    string
	Reading adlgo.Temps
}

func (a Alert) String() string {
	switch a.Kind {
	case AlertFanStall:
		return fmt.Sprintf("adapter %d (%s): fan speed reading invalid (%d RPM)", a.Adapter, a.Name, a.Reading.FanRPM)
	case AlertHotspot:
		return fmt.Sprintf("adapter %d (%s): hotspot %d°C", a.Adapter, a.Name, a.Reading.Hotspot)
	default:
		return fmt.Sprintf("adapter %d (%s): %s", a.Adapter, a.Name, a.Kind)
	}
}

// Config configures a Collector.
type Config struct {
	// Interval between polls.
	Interval time.Duration
	// HistorySize is the number of samples kept.
	HistorySize int
	// HotspotLimit raises AlertHotspot at or above this temperature in °C.
	// Zero disables the check.
	HotspotLimit int
	// Remediate runs for every adapter reporting an invalid fan reading.
	// All adapters are then read again and only the second reading is
	// evaluated, so a stall the remediation cleared raises no alert.
	Remediate Remediator
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Interval:    2 * time.Second,
		HistorySize: 1800, // 1 hour at 2s intervals
	}
}

// Collector polls a Reader on an interval.
type Collector struct {
	mu sync.RWMutex

	config Config
	reader Reader
	log    *zap.Logger

	history  []Sample
	histHead int
	histSize int

	last      Sample
	lastError error
	faulted   map[int]AlertKind
	alerts    int
	remedies  int

	onAlert func(Alert)

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a collector. onAlert may be nil.
func New(config Config, reader Reader, log *zap.Logger, onAlert func(Alert)) *Collector {
	def := DefaultConfig()
	if config.Interval <= 0 {
		config.Interval = def.Interval
	}
	if config.HistorySize < 1 {
		config.HistorySize = def.HistorySize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{
		config:  config,
		reader:  reader,
		log:     log,
		history: make([]Sample, config.HistorySize),
		faulted: make(map[int]AlertKind),
		onAlert: onAlert,
	}
}

// Run polls until ctx is cancelled. It polls once immediately.
// It returns nil when ctx is cancelled.
func (c *Collector) Run(ctx context.Context) error {
	c.CollectOnce(ctx)

	ticker := time.NewTicker(c.config.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.CollectOnce(ctx)
		}
	}
}

// Start runs the collector in a background goroutine.
func (c *Collector) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		_ = c.Run(ctx)
	}()
}

// Stop halts a collector started with Start and waits for it to exit.
func (c *Collector) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}

// CollectOnce polls the reader and records the sample.
func (c *Collector) CollectOnce(ctx context.Context) {
	readings, err := c.reader.Read(ctx)
	if err == nil {
		readings, err = c.remediate(ctx, readings)
	}
	now := time.Now()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.mu.Lock()
		c.lastError = err
		c.mu.Unlock()
		c.log.Warn("sensor poll failed", zap.Error(err), zap.String("kind", adlgo.KindOf(err).String()))
		return
	}

	sample := Sample{Time: now, Readings: readings}
	var (
		raised []Alert
		failed []error
	)
	for _, r := range readings {
		if r.Err != nil {
			failed = append(failed, fmt.Errorf("adapter %d: %w", r.Adapter, r.Err))
		}
	}

	c.mu.Lock()
	c.lastError = errors.Join(failed...)
	c.last = sample
	c.history[c.histHead] = sample
	c.histHead = (c.histHead + 1) % len(c.history)
	if c.histSize < len(c.history) {
		c.histSize++
	}
	for _, r := range readings {
		if r.Err != nil {
			continue
		}
		if a, ok := c.evaluate(now, r); ok {
			raised = append(raised, a)
		}
	}
	c.alerts += len(raised)
	c.mu.Unlock()

	for _, r := range readings {
		if r.Err != nil {
			c.log.Warn("adapter read failed",
				zap.Int("adapter", r.Adapter),
				zap.String("name", r.Name),
				zap.Error(r.Err),
				zap.String("kind", adlgo.KindOf(r.Err).String()),
			)
			continue
		}
		c.log.Info("adapter sensors",
			zap.Int("adapter", r.Adapter),
			zap.String("name", r.Name),
			zap.Int("fan_rpm", r.Temps.FanRPM),
			zap.Int("fan_percent", r.Temps.FanPercent),
			zap.Int("hotspot_c", r.Temps.Hotspot),
		)
	}
	for _, a := range raised {
		if a.Kind == AlertRecovered {
			c.log.Info("adapter recovered", zap.Int("adapter", a.Adapter), zap.String("name", a.Name))
		} else {
			c.log.Error("adapter alert", zap.Stringer("kind", a.Kind), zap.Int("adapter", a.Adapter), zap.String("alert", a.String()))
		}
		if c.onAlert != nil {
			c.onAlert(a)
		}
	}
}

// remediate runs the configured Remediator for each stalled adapter and
// returns a fresh read when any ran. Readings are returned unchanged when
// nothing is stalled or no Remediator is set.
func (c *Collector) remediate(ctx context.Context, readings []Reading) ([]Reading, error) {
	if c.config.Remediate == nil {
		return readings, nil
	}
	ran := 0
	for _, r := range readings {
		if r.Err != nil || !r.Temps.FanStalled() {
			continue
		}
		ran++
		c.log.Warn("fan reading invalid, running remediation", zap.Int("adapter", r.Adapter), zap.String("name", r.Name))
		if err := c.config.Remediate.Remediate(ctx, r); err != nil {
			c.log.Warn("remediation failed", zap.Int("adapter", r.Adapter), zap.Error(err))
		}
	}
	if ran == 0 {
		return readings, nil
	}
	c.mu.Lock()
	c.remedies += ran
	c.mu.Unlock()
	return c.reader.Read(ctx)
}

// evaluate returns an alert when r moves an adapter into or out of a fault.
// Alerts fire on transitions only. The caller must hold c.mu.
func (c *Collector) evaluate(now time.Time, r Reading) (Alert, bool) {
	state := AlertKind(0)
	switch {
	case r.Temps.FanStalled():
		state = AlertFanStall
	case c.config.HotspotLimit > 0 && r.Temps.HasHotspot && r.Temps.Hotspot >= c.config.HotspotLimit:
		state = AlertHotspot
	}

	prev := c.faulted[r.Adapter]
	if state == prev {
		return Alert{}, false
	}
	if state == 0 {
		delete(c.faulted, r.Adapter)
		return Alert{Time: now, Kind: AlertRecovered, Adapter: r.Adapter, Name: r.Name, Reading: r.Temps}, true
	}
	c.faulted[r.Adapter] = state
	return Alert{Time: now, Kind: state, Adapter: r.Adapter, Name: r.Name, Reading: r.Temps}, true
}

// Current returns the latest sample.
func (c *Collector) Current() Sample {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// LastError returns the error of the latest poll, or nil if it succeeded.
// Per-adapter failures of a recorded poll are joined into one error.
func (c *Collector) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// Alerts returns the number of alerts raised so far.
func (c *Collector) Alerts() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.alerts
}

// Remediations returns how many times the Remediator has run.
func (c *Collector) Remediations() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.remedies
}

// History returns up to limit of the most recent samples, oldest first.
func (c *Collector) History(limit int) []Sample {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if limit <= 0 || c.histSize == 0 {
		return []Sample{}
	}
	if limit > c.histSize {
		limit = c.histSize
	}
	n := len(c.history)
	out := make([]Sample, limit)
	for i := 0; i < limit; i++ {
		out[i] = c.history[(c.histHead-limit+i+n)%n]
	}
	return out
}
