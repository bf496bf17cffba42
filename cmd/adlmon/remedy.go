//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/obinnaokechukwu/adlgo/internal/monitor"
)

// commandRemediator runs the on_stall command for an adapter whose fan
// reading is invalid. The adapter is passed in ADLMON_ADAPTER_* variables.
type commandRemediator struct {
	command string
	timeout time.Duration
	log     *zap.Logger
}

func (r *commandRemediator) Remediate(ctx context.Context, rd monitor.Reading) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := shellCommand(ctx, r.command)
	cmd.WaitDelay = time.Second
	cmd.Env = append(os.Environ(),
		"ADLMON_ADAPTER_INDEX="+strconv.Itoa(rd.Adapter),
		"ADLMON_ADAPTER_NAME="+rd.Name,
		"ADLMON_FAN_RPM="+strconv.Itoa(rd.Temps.FanRPM),
	)
	start := time.Now()
	out, err := cmd.CombinedOutput()
	out = bytes.TrimSpace(out)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("timed out after %s: %w", r.timeout, err)
		}
		return fmt.Errorf("on_stall command for adapter %d: %w: %s", rd.Adapter, err, out)
	}
	r.log.Info("on_stall command finished",
		zap.Int("adapter", rd.Adapter),
		zap.Duration("took", time.Since(start)),
		zap.ByteString("output", out),
	)
	return nil
}

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command)
	}
	return exec.CommandContext(ctx, "/bin/sh", "-c", command)
}
