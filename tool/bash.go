package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// BashToolName is the name the bash tool is registered under.
const BashToolName = "execute_bash"

// BashOption configures the bash tool.
type BashOption func(*bashConfig)

type bashConfig struct {
	timeout time.Duration
	limits  Limits
	env     []string
}

// WithBashTimeout sets the default per-command timeout. Default is 120s.
func WithBashTimeout(d time.Duration) BashOption {
	return func(c *bashConfig) {
		c.timeout = d
	}
}

// WithOutputLimits overrides the output truncation bounds.
func WithOutputLimits(l Limits) BashOption {
	return func(c *bashConfig) {
		c.limits = l
	}
}

// WithBashEnv appends KEY=VALUE pairs to the inherited environment.
func WithBashEnv(env ...string) BashOption {
	return func(c *bashConfig) {
		c.env = append(c.env, env...)
	}
}

type bashArgs struct {
	Command string `json:"command" desc:"The bash command to execute"`
	Timeout *int   `json:"timeout" desc:"Optional timeout in seconds for this command"`
}

// NewBashTool creates the execute_bash tool, which runs commands with
// bash -c in workingDir. The working directory must exist.
func NewBashTool(workingDir string, opts ...BashOption) (Registration, error) {
	info, err := os.Stat(workingDir)
	if err != nil {
		return Registration{}, fmt.Errorf("tool: bash working directory: %w", err)
	}
	if !info.IsDir() {
		return Registration{}, fmt.Errorf("tool: bash working directory %q is not a directory", workingDir)
	}

	cfg := &bashConfig{
		timeout: 120 * time.Second,
		limits:  Limits{MaxLines: DefaultMaxOutputLines, MaxBytes: DefaultMaxOutputBytes},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return Func(BashToolName,
		"Execute a bash command in the working directory and return its combined stdout and stderr with the exit code. "+
			"Long running commands should be backgrounded. Output is truncated when it is very long.",
		func(ctx context.Context, args bashArgs) (string, error) {
			command := strings.TrimSpace(args.Command)
			if command == "" {
				return "", errors.New("command is required")
			}

			timeout := cfg.timeout
			if args.Timeout != nil && *args.Timeout > 0 {
				timeout = time.Duration(*args.Timeout) * time.Second
			}
			runCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			cmd := exec.CommandContext(runCtx, "bash", "-c", command)
			cmd.Dir = workingDir
			cmd.WaitDelay = time.Second
			if len(cfg.env) > 0 {
				cmd.Env = append(os.Environ(), cfg.env...)
			}
			var out bytes.Buffer
			cmd.Stdout = &out
			cmd.Stderr = &out

			runErr := cmd.Run()
			if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
				text, _ := cfg.limits.truncate(strings.TrimRight(out.String(), "\n"))
				if text != "" {
					text += "\n"
				}
				return "", fmt.Errorf("%s[command timed out after %s]", text, timeout)
			}

			// A backgrounded child can hold the output pipe after bash exits;
			// WaitDelay then ends the wait and the exit status is still valid.
			exitCode := 0
			if runErr != nil {
				var ee *exec.ExitError
				switch {
				case errors.As(runErr, &ee):
					exitCode = ee.ExitCode()
				case errors.Is(runErr, exec.ErrWaitDelay) && cmd.ProcessState != nil:
					exitCode = cmd.ProcessState.ExitCode()
				default:
					return "", fmt.Errorf("run command: %w", runErr)
				}
			}

			text, cut := cfg.limits.truncate(strings.TrimRight(out.String(), "\n"))
			var b strings.Builder
			b.WriteString(text)
			if cut {
				b.WriteString("\n[Output truncated]")
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "[The command completed with exit code %d.]", exitCode)
			return b.String(), nil
		}), nil
}
