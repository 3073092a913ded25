package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/monsterinc/jshunter/internal/common/errorwrapper"
	"github.com/monsterinc/jshunter/internal/common/summary"
	"github.com/monsterinc/jshunter/internal/config"
	"github.com/monsterinc/jshunter/internal/datastore"
	"github.com/monsterinc/jshunter/internal/extractor"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProber reports every URL containing "live" as alive, plus extra lines.
type fakeProber struct {
	extra []string
	err   error
	calls atomic.Int32
}

func (f *fakeProber) Engine() string { return "fake" }

func (f *fakeProber) Probe(_ context.Context, urls []string) ([]string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	var out []string
	for _, u := range urls {
		if strings.Contains(u, "live") {
			out = append(out, u, u)
		}
	}
	return append(out, f.extra...), nil
}

// fakeInvoker emits two lines per URL and fails URLs containing "broken".
type fakeInvoker struct {
	kind       extractor.Kind
	prepareErr error
	prepared   atomic.Int32
	calls      atomic.Int32
}

func (f *fakeInvoker) Kind() extractor.Kind { return f.kind }

func (f *fakeInvoker) Prepare() error {
	f.prepared.Add(1)
	return f.prepareErr
}

func (f *fakeInvoker) Invoke(_ context.Context, url string) (extractor.Output, error) {
	f.calls.Add(1)
	if strings.Contains(url, "broken") {
		return extractor.Output{Stderr: "parse\terror", ExitCode: 2}, errorwrapper.NewToolExecutionError(string(f.kind), 2, "parse error", nil)
	}
	if f.kind == extractor.KindEndpoints {
		return extractor.Output{Lines: []string{"/api/shared", url + "/only"}}, nil
	}
	return extractor.Output{Lines: []string{"secret-1 " + url, "secret-2 " + url}}, nil
}

type fixture struct {
	cfg       *config.GlobalConfig
	prober    *fakeProber
	endpoints *fakeInvoker
	secrets   *fakeInvoker
	stdout    *bytes.Buffer
}

func newFixture(t *testing.T, input string) *fixture {
	t.Helper()
	dir := t.TempDir()

	cfg := config.NewDefaultGlobalConfig()
	cfg.PipelineConfig.InputFile = filepath.Join(dir, "js_urls.txt")
	cfg.PipelineConfig.OutputDir = filepath.Join(dir, "js_out")
	cfg.PipelineConfig.Concurrency = 4
	require.NoError(t, os.WriteFile(cfg.PipelineConfig.InputFile, []byte(input), 0644))

	return &fixture{
		cfg:       cfg,
		prober:    &fakeProber{},
		endpoints: &fakeInvoker{kind: extractor.KindEndpoints},
		secrets:   &fakeInvoker{kind: extractor.KindSecrets},
		stdout:    &bytes.Buffer{},
	}
}

func (f *fixture) pipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()
	opts = append([]Option{
		WithProber(f.prober),
		WithEndpointInvoker(f.endpoints),
		WithSecretInvoker(f.secrets),
		WithStdout(f.stdout),
	}, opts...)
	p, err := New(f.cfg, zerolog.Nop(), opts...)
	require.NoError(t, err)
	return p
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

const sampleInput = `
https://b.live.example/app.js
https://a.live.example/main.js
  https://a.live.example/main.js
https://dead.example/x.js

https://c.live.example/broken.js
`

func TestRunAll_ChainsStages(t *testing.T) {
	f := newFixture(t, sampleInput)
	f.prober.extra = []string{"https://injected.example/evil.js"}
	store, err := datastore.NewHistoryStore(filepath.Join(t.TempDir(), "history.db"), zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	rs := f.pipeline(t, WithHistory(store)).RunAll(context.Background(), "run-1")
	require.NoError(t, rs.Validate())

	require.NoError(t, rs.Err)
	assert.Equal(t, summary.RunStatusCompletedWithIssues, rs.Status)

	pc := f.cfg.PipelineConfig
	assert.Equal(t,
		"https://a.live.example/main.js\nhttps://b.live.example/app.js\nhttps://c.live.example/broken.js\n",
		readFile(t, pc.AlivePath()),
		"alive set is the sorted, deduplicated subset of the input")

	assert.Equal(t,
		"/api/shared\nhttps://a.live.example/main.js/only\nhttps://b.live.example/app.js/only\n",
		readFile(t, pc.EndpointsPath()))

	secrets := readFile(t, pc.SecretsPath())
	assert.Equal(t, secrets, f.stdout.String(), "file and stdout carry identical bytes")
	lines := strings.Split(strings.TrimSuffix(secrets, "\n"), "\n")
	require.Len(t, lines, 4)
	for i := 0; i < len(lines); i += 2 {
		url := strings.TrimPrefix(lines[i], "secret-1 ")
		assert.Equal(t, "secret-2 "+url, lines[i+1], "each item's block stays contiguous")
	}

	probe, _ := rs.Stage(summary.StageProbe)
	assert.Equal(t, 4, probe.InputCount)
	assert.Equal(t, 3, probe.OutputCount)
	endpoints, _ := rs.Stage(summary.StageEndpoints)
	assert.Equal(t, 2, endpoints.Succeeded)
	assert.Equal(t, 1, endpoints.Failed)
	assert.Equal(t, 3, endpoints.OutputCount)

	failures := readFile(t, pc.FailuresPath())
	assert.Contains(t, failures, "endpoints\thttps://c.live.example/broken.js\t2\t")
	assert.Contains(t, failures, "secrets\thttps://c.live.example/broken.js\t2\t")
	assert.Equal(t, 2, strings.Count(failures, "\n"))

	run, err := store.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, string(summary.RunStatusCompletedWithIssues), run.Status)
	assert.Equal(t, 3, run.Alive)
	assert.Equal(t, 3, run.Endpoints)
	assert.Equal(t, 4, run.Secrets)
	assert.Equal(t, 2, run.FailedItems)

	stored, err := store.ListItemFailures(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestRunAll_EmptyInput(t *testing.T) {
	f := newFixture(t, "\n   \n")
	f.endpoints.prepareErr = errorwrapper.NewToolNotFoundError("endpoints", "linkfinder", nil)
	f.secrets.prepareErr = errorwrapper.NewToolNotFoundError("secrets", "secretfinder", nil)

	rs := f.pipeline(t).RunAll(context.Background(), "run-empty")

	require.NoError(t, rs.Err)
	assert.Equal(t, summary.RunStatusCompleted, rs.Status)
	assert.Zero(t, f.endpoints.prepared.Load(), "tools are not resolved without work")
	assert.Zero(t, f.secrets.prepared.Load())

	pc := f.cfg.PipelineConfig
	for _, path := range []string{pc.AlivePath(), pc.EndpointsPath(), pc.SecretsPath()} {
		assert.Empty(t, readFile(t, path), path)
	}
	assert.Empty(t, f.stdout.String())
	assert.NoFileExists(t, pc.FailuresPath())
}

func TestRunAll_MissingInput(t *testing.T) {
	f := newFixture(t, "")
	require.NoError(t, os.Remove(f.cfg.PipelineConfig.InputFile))

	rs := f.pipeline(t).RunAll(context.Background(), "run-missing")

	require.Error(t, rs.Err)
	assert.ErrorIs(t, rs.Err, errorwrapper.ErrMissingInput)
	assert.Equal(t, summary.RunStatusFailed, rs.Status)
	assert.Equal(t, 1, rs.Status.ExitCode())
	assert.Zero(t, f.prober.calls.Load())
	assert.NoDirExists(t, f.cfg.PipelineConfig.OutputDir, "no output is created")

	secrets, ok := rs.Stage(summary.StageSecrets)
	require.True(t, ok)
	assert.True(t, secrets.Skipped)
}

func TestRunAll_MissingTool(t *testing.T) {
	f := newFixture(t, sampleInput)
	f.endpoints.prepareErr = errorwrapper.NewToolNotFoundError("endpoints", "linkfinder", nil)

	rs := f.pipeline(t).RunAll(context.Background(), "run-notool")

	assert.ErrorIs(t, rs.Err, errorwrapper.ErrToolNotFound)
	assert.Equal(t, summary.RunStatusFailed, rs.Status)
	assert.Zero(t, f.endpoints.calls.Load(), "no item runs when the tool is missing")
	assert.Zero(t, f.secrets.prepared.Load())
	assert.FileExists(t, f.cfg.PipelineConfig.AlivePath())
	assert.NoFileExists(t, f.cfg.PipelineConfig.EndpointsPath())
}

func TestRunAll_ProberFailure(t *testing.T) {
	f := newFixture(t, sampleInput)
	f.prober.err = errorwrapper.NewToolExecutionError("prober", 1, "bad flag", nil)

	rs := f.pipeline(t).RunAll(context.Background(), "run-probefail")

	var execErr *errorwrapper.ToolExecutionError
	require.ErrorAs(t, rs.Err, &execErr)
	assert.Equal(t, 1, execErr.ExitCode)
	assert.NoFileExists(t, f.cfg.PipelineConfig.AlivePath())
}

func TestRun_SingleStageReadsCheckpoint(t *testing.T) {
	f := newFixture(t, sampleInput)
	pc := f.cfg.PipelineConfig
	require.NoError(t, os.MkdirAll(pc.OutputDir, 0755))
	require.NoError(t, os.WriteFile(pc.AlivePath(), []byte("https://z.example/z.js\nhttps://z.example/z.js\n"), 0644))

	rs := f.pipeline(t).Run(context.Background(), "run-secrets", summary.StageSecrets)

	require.NoError(t, rs.Err)
	assert.Zero(t, f.prober.calls.Load())
	assert.Equal(t, int32(1), f.secrets.calls.Load(), "checkpoint lines are deduplicated")
	assert.Equal(t, "secret-1 https://z.example/z.js\nsecret-2 https://z.example/z.js\n", readFile(t, pc.SecretsPath()))
	require.Len(t, rs.Stages, 1)
}

func TestRun_SingleStageMissingCheckpoint(t *testing.T) {
	f := newFixture(t, sampleInput)

	rs := f.pipeline(t).Run(context.Background(), "run-endpoints", summary.StageEndpoints)

	assert.ErrorIs(t, rs.Err, errorwrapper.ErrMissingInput)
	assert.Zero(t, f.endpoints.prepared.Load())
}

func TestRun_UnknownStage(t *testing.T) {
	f := newFixture(t, sampleInput)

	rs := f.pipeline(t).Run(context.Background(), "run-x", "crawl")

	assert.ErrorIs(t, rs.Err, errorwrapper.ErrInvalidConfiguration)
	assert.Equal(t, summary.RunStatusFailed, rs.Status)
}

func TestRunAll_Canceled(t *testing.T) {
	f := newFixture(t, sampleInput)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rs := f.pipeline(t).RunAll(ctx, "run-cancel")

	assert.Equal(t, summary.RunStatusInterrupted, rs.Status)
	assert.Zero(t, f.prober.calls.Load())
	for _, s := range rs.Stages {
		assert.True(t, s.Skipped, s.Stage)
	}
}

func TestSecrets_EchoDisabled(t *testing.T) {
	f := newFixture(t, sampleInput)
	f.cfg.PipelineConfig.EchoSecrets = false

	rs := f.pipeline(t).RunAll(context.Background(), "run-quiet")

	require.NoError(t, rs.Err)
	assert.Empty(t, f.stdout.String())
	assert.NotEmpty(t, readFile(t, f.cfg.PipelineConfig.SecretsPath()))
}

func TestRunAll_RerunReplacesOutputs(t *testing.T) {
	f := newFixture(t, sampleInput)
	p := f.pipeline(t)
	first := p.RunAll(context.Background(), "run-a")
	require.NoError(t, first.Err)
	firstEndpoints := readFile(t, f.cfg.PipelineConfig.EndpointsPath())

	f.stdout.Reset()
	second := p.RunAll(context.Background(), "run-b")
	require.NoError(t, second.Err)

	assert.Equal(t, firstEndpoints, readFile(t, f.cfg.PipelineConfig.EndpointsPath()))
	assert.Equal(t, f.stdout.String(), readFile(t, f.cfg.PipelineConfig.SecretsPath()))
	assert.Equal(t, 2, strings.Count(readFile(t, f.cfg.PipelineConfig.FailuresPath()), "\n"), "failure log holds only the latest run")
}

func TestFailureLog_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "js_failures.log")
	fl := NewFailureLog(path)

	require.NoError(t, fl.Append(summary.StageEndpoints, nil))
	assert.NoFileExists(t, path)

	require.NoError(t, fl.Append(summary.StageEndpoints, []summary.FailedItem{
		{URL: "https://a/x.js", ExitCode: 1, Reason: "exit status 1:\n\ttraceback"},
	}))
	assert.Equal(t, "endpoints\thttps://a/x.js\t1\texit status 1: traceback\n", readFile(t, path))

	require.NoError(t, fl.Reset())
	assert.NoFileExists(t, path)
	require.NoError(t, fl.Reset())
}

func TestRunCounts(t *testing.T) {
	rs := summary.RunSummary{Stages: []summary.StageReport{
		{Stage: summary.StageProbe, OutputCount: 5},
		{Stage: summary.StageSecrets, OutputCount: 7, Failed: 2},
	}}

	assert.Equal(t, datastore.RunCounts{Alive: 5, Secrets: 7, FailedItems: 2}, RunCounts(rs))
}

func TestNewRunID(t *testing.T) {
	start := mustTime(t, "2026-03-04T05:06:07Z")
	first := NewRunID(start)
	second := NewRunID(start.Add(400 * time.Millisecond))
	again := NewRunID(start)

	assert.True(t, strings.HasPrefix(first, "20260304-050607.000-"), first)
	assert.True(t, strings.HasPrefix(second, "20260304-050607.400-"), second)
	assert.NotEqual(t, first, again, "runs started at the same instant get distinct IDs")
}

func TestRun_DuplicateRunIDKeepsFirstRecord(t *testing.T) {
	store, err := datastore.NewHistoryStore(filepath.Join(t.TempDir(), "history.db"), zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	first := newFixture(t, sampleInput)
	rs := first.pipeline(t, WithHistory(store)).RunAll(context.Background(), "run-dup")
	require.Equal(t, summary.RunStatusCompletedWithIssues, rs.Status)

	second := newFixture(t, "")
	rs = second.pipeline(t, WithHistory(store)).RunAll(context.Background(), "run-dup")
	require.Equal(t, summary.RunStatusCompleted, rs.Status, "history errors never fail the run")

	run, err := store.GetRun(context.Background(), "run-dup")
	require.NoError(t, err)
	assert.Equal(t, string(summary.RunStatusCompletedWithIssues), run.Status)
	assert.Equal(t, first.cfg.PipelineConfig.InputFile, run.InputPath)
	assert.Equal(t, 3, run.Alive)
	assert.Equal(t, 2, run.FailedItems)

	runs, err := store.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
	stored, err := store.ListItemFailures(context.Background(), "run-dup")
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}
