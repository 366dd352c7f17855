// Package hooks runs user scripts at named hook points.
//
// Scripts live in <dir>/<point>.d and run in name order with the event
// fields exported as ADVISING_NOTIFY_* environment variables.
package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/advising-app/advising-notify/internal/config"
	"github.com/advising-app/advising-notify/internal/logging"
)

// Failure modes.
const (
	FailureAbort  = "abort"
	FailureWarn   = "warn"
	FailureIgnore = "ignore"
)

// EnvPrefix prefixes every variable handed to a hook script.
const EnvPrefix = "ADVISING_NOTIFY_"

// DefaultTimeout bounds a single script run.
const DefaultTimeout = 10 * time.Second

// DefaultMaxAsync bounds concurrently running async scripts.
const DefaultMaxAsync = 10

// ErrHookFailed wraps a script failure in abort mode.
var ErrHookFailed = errors.New("hook failed")

// Runner executes hook scripts. The zero value is not usable; build one
// with NewRunner or FromConfig.
type Runner struct {
	Dir         string
	FailureMode string
	Timeout     time.Duration
	// Async starts scripts without waiting for them. Failures are logged.
	Async    bool
	MaxAsync int
	Logger   logging.Logger

	now     func() time.Time
	binary  string
	mu      sync.Mutex
	pending int
	wg      sync.WaitGroup
}

// NewRunner creates a Runner for hooks under dir.
func NewRunner(dir string, logger logging.Logger) *Runner {
	if logger == nil {
		logger = logging.Nop()
	}
	binary, _ := os.Executable()
	return &Runner{
		Dir:         dir,
		FailureMode: FailureWarn,
		Timeout:     DefaultTimeout,
		MaxAsync:    DefaultMaxAsync,
		Logger:      logger,
		now:         time.Now,
		binary:      binary,
	}
}

// FromConfig creates a Runner from the loaded configuration.
func FromConfig(logger logging.Logger) *Runner {
	r := NewRunner(config.Get("hooks_dir", ""), logger)
	r.FailureMode = config.Get("hooks_failure_mode", FailureWarn)
	r.Timeout = config.GetSeconds("hooks_timeout_seconds", DefaultTimeout)
	return r
}

// Init creates the hooks directory.
func (r *Runner) Init() error {
	if r.Dir == "" {
		return nil
	}
	if err := os.MkdirAll(r.Dir, config.FileModeDir); err != nil {
		return fmt.Errorf("failed to create hooks directory %s: %w", r.Dir, err)
	}
	return nil
}

// Scripts returns the executable scripts for point, sorted by name.
func (r *Runner) Scripts(point string) []string {
	dir := filepath.Join(r.Dir, point+".d")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var scripts []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		info, err := os.Stat(path)
		if err != nil || info.Mode()&0111 == 0 {
			continue
		}
		scripts = append(scripts, path)
	}
	sort.Strings(scripts)
	return scripts
}

// Run executes the scripts for point. vars are exported with EnvPrefix
// and upper-cased keys. Only abort mode returns script failures.
func (r *Runner) Run(ctx context.Context, point string, vars map[string]string) error {
	scripts := r.Scripts(point)
	if len(scripts) == 0 {
		return nil
	}
	env := r.environ(point, vars)
	r.Logger.Debug("running hooks", "point", point, "scripts", len(scripts))

	for _, script := range scripts {
		if r.Async {
			r.startAsync(script, env)
			continue
		}
		if err := r.runOne(ctx, script, env); err != nil {
			switch r.FailureMode {
			case FailureAbort:
				return fmt.Errorf("%w: %s: %v", ErrHookFailed, filepath.Base(script), err)
			case FailureIgnore:
			default:
				r.Logger.Warn("hook failed", "point", point, "script", filepath.Base(script), "error", err)
			}
		}
	}
	return nil
}

// Wait blocks until every async script has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Pending returns the number of running async scripts.
func (r *Runner) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

func (r *Runner) environ(point string, vars map[string]string) []string {
	env := os.Environ()
	env = append(env,
		EnvPrefix+"HOOK_POINT="+point,
		EnvPrefix+"HOOK_TIMESTAMP="+r.now().Format(time.RFC3339),
	)
	if r.binary != "" {
		env = append(env, EnvPrefix+"BINARY="+r.binary)
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, EnvPrefix+strings.ToUpper(k)+"="+vars[k])
	}
	return env
}

func (r *Runner) runOne(ctx context.Context, script string, env []string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, script)
	cmd.Env = env
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("timed out after %s", r.timeout())
		}
		if s := strings.TrimSpace(out.String()); s != "" {
			err = fmt.Errorf("%w, output: %s", err, s)
		}
		return err
	}
	r.Logger.Debug("hook completed", "script", filepath.Base(script), "duration_seconds", time.Since(start).Seconds())
	return nil
}

func (r *Runner) startAsync(script string, env []string) {
	r.mu.Lock()
	if r.pending >= r.maxAsync() {
		r.mu.Unlock()
		r.Logger.Warn("too many async hooks pending, skipping", "max", r.maxAsync(), "script", filepath.Base(script))
		return
	}
	r.pending++
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer func() {
			r.mu.Lock()
			r.pending--
			r.mu.Unlock()
			r.wg.Done()
		}()
		if err := r.runOne(context.Background(), script, env); err != nil && r.FailureMode != FailureIgnore {
			r.Logger.Warn("async hook failed", "script", filepath.Base(script), "error", err)
		}
	}()
}

func (r *Runner) timeout() time.Duration {
	if r.Timeout <= 0 {
		return DefaultTimeout
	}
	return r.Timeout
}

func (r *Runner) maxAsync() int {
	if r.MaxAsync <= 0 {
		return DefaultMaxAsync
	}
	return r.MaxAsync
}
