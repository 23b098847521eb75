// Package git records profile history by committing the plain-text store to a
// local git repository.
package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// LockName is the file used to serialize git access between processes.
const LockName = ".harp.lock"

// ErrLockTimeout is returned when another process holds the lock for too long.
var ErrLockTimeout = errors.New("timed out waiting for git lock")

// Client runs git commands in a working directory.
type Client struct {
	WorkDir  string
	Logger   *slog.Logger
	lockPath string
}

// NewClient creates a git client for workDir. A nil logger disables logging.
func NewClient(workDir string, logger *slog.Logger) *Client {
	return &Client{
		WorkDir:  workDir,
		Logger:   logger,
		lockPath: filepath.Join(workDir, LockName),
	}
}

// IsInstalled reports whether a git binary is on PATH.
func IsInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// Lock acquires the inter-process lock, polling until ctx is done.
func (c *Client) Lock(ctx context.Context) (func(), error) {
	for {
		f, err := os.OpenFile(c.lockPath, os.O_CREATE|os.O_EXCL, 0o600)
		if err == nil {
			f.Close()
			return func() { _ = os.Remove(c.lockPath) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrLockTimeout, ctx.Err())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// Run executes a git command. It does not take the lock; callers that
// modify the repository must hold it.
func (c *Client) Run(ctx context.Context, args ...string) (string, error) {
	if c.Logger != nil {
		c.Logger.Debug("executing git", "args", args, "dir", c.WorkDir)
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.WorkDir
	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		return output, fmt.Errorf("git %s failed: %w\nOutput: %s", args[0], err, output)
	}
	return output, nil
}

// IsRepo reports whether the working directory already holds a repository.
func (c *Client) IsRepo() bool {
	_, err := os.Stat(filepath.Join(c.WorkDir, ".git"))
	return err == nil
}

// Init creates the repository. Re-running it is harmless.
func (c *Client) Init(ctx context.Context) error {
	_, err := c.Run(ctx, "init", "--quiet")
	return err
}

// Add stages files.
func (c *Client) Add(ctx context.Context, files ...string) error {
	if len(files) == 0 {
		return nil
	}
	_, err := c.Run(ctx, append([]string{"add", "--"}, files...)...)
	return err
}

// Rm removes files from the working tree and the index.
func (c *Client) Rm(ctx context.Context, files ...string) error {
	if len(files) == 0 {
		return nil
	}
	_, err := c.Run(ctx, append([]string{"rm", "-f", "--quiet", "--"}, files...)...)
	return err
}

// Commit records the staged changes. Nothing staged is not an error.
func (c *Client) Commit(ctx context.Context, msg string) error {
	status, err := c.Run(ctx, "status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return err
	}
	if status == "" {
		return nil
	}
	_, err = c.Run(ctx, "-c", "user.name=harp", "-c", "user.email=harp@localhost", "commit", "--quiet", "-m", msg)
	return err
}

// Log returns the last n commit subjects touching path, newest first.
func (c *Client) Log(ctx context.Context, path string, n int) ([]string, error) {
	out, err := c.Run(ctx, "log", fmt.Sprintf("-n%d", n), "--format=%s", "--", path)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}
