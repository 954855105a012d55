package textgen

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/atelier-edu/reparto/internal/errors"
	"github.com/atelier-edu/reparto/internal/logging"
	"github.com/atelier-edu/reparto/internal/util"
)

// Defaults for CommandClient when the configuration leaves them unset.
const (
	DefaultMaxTokens = 800
	DefaultTimeout   = 60 * time.Second

	// maxTokensPlaceholder in a configured arg is replaced with the
	// request's token budget, so any CLI flag convention can be bridged:
	// args: ["--max-tokens", "{max_tokens}"].
	maxTokensPlaceholder = "{max_tokens}"

	// stderrExcerptLen bounds how much of a failing command's stderr ends
	// up in the error message.
	stderrExcerptLen = 200
)

// Options configures a CommandClient.
type Options struct {
	// Command is the executable to run ("ollama", a wrapper script).
	Command string

	// Args are passed to the command. Occurrences of {max_tokens} are
	// replaced per request.
	Args []string

	// MaxTokens is the default token budget for requests that set none.
	MaxTokens int

	// Timeout bounds each call when the caller's context carries no
	// earlier deadline.
	Timeout time.Duration
}

// CommandClient bridges generation to an external command. The prompt is
// written to the command's stdin and the response read from its stdout,
// which keeps prompts out of process argument lists.
type CommandClient struct {
	command   string
	args      []string
	maxTokens int
	timeout   time.Duration
	logger    *logging.Logger
}

// NewCommandClient creates a command-backed client. Pass a nil logger to
// disable logging.
func NewCommandClient(opts Options, logger *logging.Logger) *CommandClient {
	if logger == nil {
		logger = logging.NopLogger()
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CommandClient{
		command:   opts.Command,
		args:      append([]string(nil), opts.Args...),
		maxTokens: maxTokens,
		timeout:   timeout,
		logger:    logger.WithComponent("textgen"),
	}
}

// Command returns the configured executable name.
func (c *CommandClient) Command() string {
	return c.command
}

// Generate runs the configured command once and returns its trimmed
// stdout. Timeouts and empty responses come back as retryable
// GenerationErrors so the caller can decide whether a replay is worth it.
func (c *CommandClient) Generate(ctx context.Context, req Request) (string, error) {
	if c.command == "" {
		return "", errors.NewGenerationError("no generation command configured", errors.ErrGeneratorUnavailable)
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", errors.NewGenerationError("prompt is empty", errors.ErrInvalidInput).
			WithCommand(c.command)
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.command, c.expandArgs(maxTokens)...)
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			c.logger.Warn("generation timed out",
				"command", c.command,
				"elapsed", elapsed.String())
			return "", errors.NewGenerationError("command timed out", errors.ErrGenerationTimeout).
				WithCommand(c.command)
		}
		c.logger.Warn("generation command failed",
			"command", c.command,
			"error", err.Error(),
			"stderr", util.TruncateString(stderr.String(), stderrExcerptLen))
		return "", errors.NewGenerationError("command failed", err).
			WithCommand(c.command)
	}

	response := strings.TrimSpace(stdout.String())
	if response == "" {
		return "", errors.NewGenerationError("command produced no output", errors.ErrEmptyResponse).
			WithCommand(c.command)
	}

	c.logger.Debug("generation completed",
		"command", c.command,
		"prompt_chars", len(prompt),
		"response_chars", len(response),
		"max_tokens", maxTokens,
		"elapsed", elapsed.String())
	return response, nil
}

// expandArgs substitutes the per-request token budget into the configured
// args.
func (c *CommandClient) expandArgs(maxTokens int) []string {
	if len(c.args) == 0 {
		return nil
	}
	args := make([]string, len(c.args))
	for i, arg := range c.args {
		args[i] = strings.ReplaceAll(arg, maxTokensPlaceholder, strconv.Itoa(maxTokens))
	}
	return args
}
