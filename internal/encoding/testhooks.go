package encoding

import (
	"context"
	"os/exec"
)

// runFFmpeg executes an ffmpeg invocation and returns combined output.
// Overridable for tests.
var runFFmpeg = func(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	return cmd.CombinedOutput()
}

// runProbe executes an ffprobe invocation and returns stdout. Overridable
// for tests.
var runProbe = func(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	return cmd.Output()
}

// SetRunnerForTests replaces the ffmpeg runner and returns a restore func.
func SetRunnerForTests(fn func(ctx context.Context, binary string, args []string) ([]byte, error)) func() {
	prev := runFFmpeg
	runFFmpeg = fn
	return func() { runFFmpeg = prev }
}

// SetProbeForTests replaces the ffprobe runner and returns a restore func.
func SetProbeForTests(fn func(ctx context.Context, binary string, args []string) ([]byte, error)) func() {
	prev := runProbe
	runProbe = fn
	return func() { runProbe = prev }
}
