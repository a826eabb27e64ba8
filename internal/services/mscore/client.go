package mscore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"mscx/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onOutput func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithOutput receives every line the program prints.
func WithOutput(fn func(string)) Option {
	return func(c *Client) {
		c.onOutput = fn
	}
}

// Client wraps the notation program CLI.
type Client struct {
	binary   string
	timeout  time.Duration
	exec     Executor
	onOutput func(string)
}

// New constructs a client. A timeout of zero disables the per-call bound.
func New(binary string, timeout time.Duration, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, services.Wrap(services.ErrConfiguration, "mscore", "init", "binary required", nil)
	}
	client := &Client{
		binary:  binary,
		timeout: timeout,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the configured program name or path.
func (c *Client) Binary() string {
	return c.binary
}

// Render re-saves source to destination through the program.
func (c *Client) Render(ctx context.Context, source, destination string) error {
	if source == "" || destination == "" {
		return services.Wrap(services.ErrValidation, "mscore", "render", "source and destination required", nil)
	}
	return c.run(ctx, "render", []string{"-o", destination, source}, c.onOutput)
}

// Version returns the first line of the program's version output.
func (c *Client) Version(ctx context.Context) (string, error) {
	var first string
	err := c.run(ctx, "version", []string{"--version"}, func(line string) {
		if first == "" {
			first = strings.TrimSpace(line)
		}
	})
	if err != nil {
		return "", err
	}
	return first, nil
}

func (c *Client) run(ctx context.Context, operation string, args []string, onOutput func(string)) error {
	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	err := c.exec.Run(runCtx, c.binary, args, onOutput)
	if err == nil {
		return nil
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, "mscore", operation, fmt.Sprintf("exceeded %s", c.timeout), err)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return services.Wrap(services.ErrNotFound, "mscore", operation, fmt.Sprintf("binary %q not found", c.binary), err)
	}
	return services.Wrap(services.ErrExternalTool, "mscore", operation, "", err)
}

// waitDelay bounds how long Wait keeps output pipes open after the process
// was killed.
const waitDelay = 2 * time.Second

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	configureProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	var mu sync.Mutex
	emit := func(line string) {
		if onOutput == nil {
			return
		}
		mu.Lock()
		onOutput(line)
		mu.Unlock()
	}
	stdout := &lineWriter{emit: emit}
	stderr := &lineWriter{emit: emit}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}
	err := cmd.Wait()
	stdout.flush()
	stderr.flush()
	if err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}

// lineWriter splits written output into lines. Each instance is written by
// one copying goroutine.
type lineWriter struct {
	buf  []byte
	emit func(string)
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		idx := bytes.IndexByte(w.buf, '\n')
		if idx < 0 {
			break
		}
		line := strings.TrimRight(string(w.buf[:idx]), "\r")
		w.buf = w.buf[idx+1:]
		w.emit(line)
	}
	return len(p), nil
}

func (w *lineWriter) flush() {
	if len(w.buf) == 0 {
		return
	}
	w.emit(strings.TrimRight(string(w.buf), "\r"))
	w.buf = nil
}
