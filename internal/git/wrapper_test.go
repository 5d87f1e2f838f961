package git

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satococoa/gitwrap/internal/command"
	"github.com/satococoa/gitwrap/internal/errors"
	"github.com/satococoa/gitwrap/internal/event"
	"github.com/satococoa/gitwrap/internal/testutil"
)

func TestNew(t *testing.T) {
	t.Run("should apply options", func(t *testing.T) {
		bus := event.NewBus()
		w, err := New(
			WithBinary("/opt/git/bin/git"),
			WithTimeout(5*time.Second),
			WithEnv(map[string]string{"GIT_TERMINAL_PROMPT": "0"}),
			WithBus(bus),
		)

		require.NoError(t, err)
		assert.Equal(t, "/opt/git/bin/git", w.BinaryPath())
		assert.Equal(t, 5*time.Second, w.Timeout())
		assert.Equal(t, map[string]string{"GIT_TERMINAL_PROMPT": "0"}, w.Env())
		assert.Same(t, bus, w.Bus())
	})

	t.Run("should default the timeout", func(t *testing.T) {
		w, err := New(WithBinary("git"))
		require.NoError(t, err)
		assert.Equal(t, DefaultTimeout, w.Timeout())
		assert.NotNil(t, w.Bus())
	})

	t.Run("should find git on PATH", func(t *testing.T) {
		path := testutil.RequireGit(t)
		w, err := New()
		require.NoError(t, err)
		assert.Equal(t, path, w.BinaryPath())
	})

	t.Run("should report a missing binary", func(t *testing.T) {
		t.Setenv("PATH", t.TempDir())

		_, err := New()

		var ce *errors.ConfigurationError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "git binary", ce.Setting)
	})
}

func TestWrapper_Env(t *testing.T) {
	w, err := New(WithBinary("git"))
	require.NoError(t, err)

	w.SetEnvVar("GIT_AUTHOR_NAME", "Robot")
	v, ok := w.EnvVar("GIT_AUTHOR_NAME")
	assert.True(t, ok)
	assert.Equal(t, "Robot", v)

	// Env returns a copy
	env := w.Env()
	env["GIT_AUTHOR_NAME"] = "changed"
	v, _ = w.EnvVar("GIT_AUTHOR_NAME")
	assert.Equal(t, "Robot", v)

	w.UnsetEnvVar("GIT_AUTHOR_NAME")
	_, ok = w.EnvVar("GIT_AUTHOR_NAME")
	assert.False(t, ok)

	w.SetBinaryPath("/usr/local/bin/git")
	w.SetTimeout(0)
	assert.Equal(t, "/usr/local/bin/git", w.BinaryPath())
	assert.Zero(t, w.Timeout())
}

func TestWrapper_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("should return stdout of a real git", func(t *testing.T) {
		// Given: a repository on master
		dir := testutil.NewRepo(t)
		w, err := New()
		require.NoError(t, err)

		// When: asking for the current branch
		out, err := w.Run(ctx, command.CurrentBranch().SetDir(dir))

		// Then: git prints master
		require.NoError(t, err)
		assert.Equal(t, "master", strings.TrimSpace(out))
	})

	t.Run("should report git diagnostics", func(t *testing.T) {
		dir := testutil.NewRepo(t)
		w, err := New()
		require.NoError(t, err)

		_, err = w.Run(ctx, command.RevParse("--verify", "does-not-exist").SetDir(dir))

		var ee *errors.ExecutionError
		require.ErrorAs(t, err, &ee)
		assert.NotZero(t, ee.ExitCode)
		assert.Contains(t, err.Error(), "fatal")
	})

	t.Run("should emit events in lifecycle order", func(t *testing.T) {
		dir := testutil.NewRepo(t)
		w, err := New()
		require.NoError(t, err)
		var kinds []event.Kind
		for _, k := range event.Kinds {
			w.Subscribe(k, func(e *event.Event) error {
				kinds = append(kinds, e.Kind)
				return nil
			}, 0)
		}

		_, err = w.Run(ctx, command.Status(command.StatusOptions{Short: true, Branch: true}).SetDir(dir))

		require.NoError(t, err)
		require.GreaterOrEqual(t, len(kinds), 3)
		assert.Equal(t, event.Prepare, kinds[0])
		assert.Equal(t, event.Success, kinds[len(kinds)-1])
		for _, k := range kinds[1 : len(kinds)-1] {
			assert.Equal(t, event.Output, k)
		}
	})

	t.Run("should bypass from a prepare handler without spawning", func(t *testing.T) {
		// Given: two prepare handlers, the lower priority one bypassing
		bin := testutil.FakeGit(t, `echo spawned; exit 1`)
		w, err := New(WithBinary(bin))
		require.NoError(t, err)
		var order []string
		w.Subscribe(event.Prepare, func(e *event.Event) error {
			order = append(order, "observer")
			assert.True(t, e.Command.Bypass)
			return nil
		}, 0)
		w.Subscribe(event.Prepare, func(e *event.Event) error {
			order = append(order, "bypass")
			e.Command.SetBypass(true)
			return nil
		}, -5)
		var bypassed, finished bool
		w.Subscribe(event.Bypass, func(*event.Event) error { bypassed = true; return nil }, 0)
		w.Subscribe(event.Success, func(*event.Event) error { finished = true; return nil }, 0)
		w.Subscribe(event.Error, func(*event.Event) error { finished = true; return nil }, 0)

		// When: running
		out, err := w.Run(ctx, command.New("push"))

		// Then: -5 ran first, nothing was spawned
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.Equal(t, []string{"bypass", "observer"}, order)
		assert.True(t, bypassed)
		assert.False(t, finished)
	})

	t.Run("should fail for a missing directory", func(t *testing.T) {
		bin := testutil.FakeGit(t, `exit 0`)
		w, err := New(WithBinary(bin))
		require.NoError(t, err)

		_, err = w.Run(ctx, command.New("status").SetDir("/no/such/dir"))

		var de *errors.DirectoryResolutionError
		assert.ErrorAs(t, err, &de)
	})

	t.Run("should pass the overlay environment", func(t *testing.T) {
		bin := testutil.FakeGit(t, `printf %s "$GITWRAP_WRAPPER_TEST"`)
		w, err := New(WithBinary(bin), WithEnv(map[string]string{"GITWRAP_WRAPPER_TEST": "yes"}))
		require.NoError(t, err)

		out, err := w.Run(ctx, command.New("config"))

		require.NoError(t, err)
		assert.Equal(t, "yes", out)
	})

	t.Run("should expose the wrapper to handlers", func(t *testing.T) {
		bin := testutil.FakeGit(t, `exit 0`)
		w, err := New(WithBinary(bin), WithTimeout(time.Minute))
		require.NoError(t, err)
		var seen event.Context
		w.Subscribe(event.Success, func(e *event.Event) error {
			seen = e.Context
			return nil
		}, 0)

		_, err = w.Run(ctx, command.New("status"))

		require.NoError(t, err)
		require.NotNil(t, seen)
		assert.Equal(t, bin, seen.BinaryPath())
		assert.Equal(t, time.Minute, seen.Timeout())
	})

	t.Run("should time out", func(t *testing.T) {
		bin := testutil.FakeGit(t, `exec sleep 5`)
		w, err := New(WithBinary(bin), WithTimeout(100*time.Millisecond))
		require.NoError(t, err)

		_, err = w.Run(ctx, command.New("fetch"))

		assert.True(t, errors.IsTimeout(err))
	})

	t.Run("should apply the directory override", func(t *testing.T) {
		dir := testutil.NewRepo(t)
		w, err := New()
		require.NoError(t, err)

		out, err := w.Run(ctx, command.RevParse("--show-toplevel"), WithDir(dir))

		require.NoError(t, err)
		samePath(t, dir, strings.TrimSpace(out))
	})
}

func TestWrapper_Exec(t *testing.T) {
	bin := testutil.FakeGit(t, `echo out; echo err >&2`)
	w, err := New(WithBinary(bin))
	require.NoError(t, err)

	res, err := w.Exec(context.Background(), command.New("status"))

	require.NoError(t, err)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
	assert.Equal(t, 0, res.ExitCode)
}

func TestWrapper_Raw(t *testing.T) {
	ctx := context.Background()
	dir := testutil.NewRepo(t)
	w, err := New()
	require.NoError(t, err)

	t.Run("RunRaw", func(t *testing.T) {
		out, err := w.RunRaw(ctx, "log --format=%s -n 1", WithDir(dir))
		require.NoError(t, err)
		assert.Equal(t, "Initial commit\n", out)
	})

	t.Run("Git", func(t *testing.T) {
		out, err := w.Git(ctx, "rev-parse --abbrev-ref HEAD", dir)
		require.NoError(t, err)
		assert.Equal(t, "master\n", out)
	})
}

func TestWrapper_Concurrent(t *testing.T) {
	dir := testutil.NewRepo(t)
	w, err := New()
	require.NoError(t, err)
	var mu sync.Mutex
	successes := 0
	w.Subscribe(event.Success, func(*event.Event) error {
		mu.Lock()
		defer mu.Unlock()
		successes++
		return nil
	}, 0)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := w.Run(context.Background(), command.CurrentBranch().SetDir(dir))
			if err == nil && strings.TrimSpace(out) != "master" {
				err = assert.AnError
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 8, successes)
}

func TestWrapper_AsRunner(t *testing.T) {
	dir := testutil.NewRepo(t)
	w, err := New()
	require.NoError(t, err)

	executor := command.NewExecutor(w.Runner())
	result, err := executor.Execute(context.Background(), []*command.Command{
		command.Branch("topic", "master").SetDir(dir),
		command.BranchList(false, false).SetDir(dir),
	})

	require.NoError(t, err)
	require.NoError(t, result.FirstError())
	assert.Contains(t, result.Results[1].Output, "topic")
}
