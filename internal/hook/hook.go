// Package hook runs a user-supplied shell command for every printed result.
package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxvaer/hostprobe/internal/output"
)

// Timeout bounds a single hook invocation.
const Timeout = 30 * time.Second

// Runner executes a shell command for each non-filtered result.
type Runner struct {
	cmd    string
	logger zerolog.Logger
}

// NewRunner creates a hook runner. cmd is the shell command to execute.
func NewRunner(cmd string, logger zerolog.Logger) *Runner {
	return &Runner{cmd: cmd, logger: logger.With().Str("component", "hook").Logger()}
}

// Run executes the hook command with the entry as JSON on stdin. The
// placeholders {url}, {host}, {final_url}, {status} and {protocol} are
// replaced with shell-quoted values. Failures are logged and never halt
// the run.
func (r *Runner) Run(ctx context.Context, e output.Entry) {
	data, err := json.Marshal(e)
	if err != nil {
		r.logger.Warn().Err(err).Str("host", e.Host).Msg("marshal result")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	shell, args := shellCommand()
	cmd := exec.CommandContext(ctx, shell, append(args, r.Expand(e))...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stderr = os.Stderr

	out, err := cmd.Output()
	if err != nil {
		r.logger.Warn().Err(err).Str("host", e.Host).Msg("hook failed")
		return
	}
	if len(out) > 0 {
		r.logger.Info().Str("host", e.Host).Msg(strings.TrimRight(string(out), "\n"))
	}
}

// Expand substitutes the placeholders of the configured command for e.
func (r *Runner) Expand(e output.Entry) string {
	return strings.NewReplacer(
		"{url}", quote(e.HostURL),
		"{final_url}", quote(e.FinalURL),
		"{host}", quote(e.Host),
		"{protocol}", quote(e.Protocol),
		"{status}", strconv.Itoa(e.StatusCode),
	).Replace(r.cmd)
}

func shellCommand() (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C"}
	}
	return "sh", []string{"-c"}
}

func quote(s string) string {
	if runtime.GOOS == "windows" {
		return `"` + strings.ReplaceAll(s, `"`, "") + `"`
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
