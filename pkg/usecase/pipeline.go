package usecase

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
	"github.com/prometheus/client_golang/prometheus"
)

const defaultPythonBin = "python3"

var defaultBuildCommand = []string{"setup.py", "sdist"}

// PipelineConfig carries the tunables of the runtime and build steps.
type PipelineConfig struct {
	PythonBin     string   // Interpreter name or path, default python3
	PythonVersion string   // Required version prefix, e.g. "3.10"; empty accepts any
	BuildCommand  []string // Arguments passed to the interpreter, default "setup.py sdist"
	KeepWorkspace bool     // Leave the extracted workspace on disk for inspection
}

type pipelineUseCase struct {
	github   interfaces.GitHubClient
	index    interfaces.PackageIndex
	runner   interfaces.CommandRunner
	runs     interfaces.RunRepository
	store    interfaces.ArtifactStore
	notifier interfaces.Notifier
	config   PipelineConfig
}

// PipelineOption is a functional option for the pipeline use case
type PipelineOption func(*pipelineUseCase)

// WithRunRepository enables run record persistence
func WithRunRepository(runs interfaces.RunRepository) PipelineOption {
	return func(uc *pipelineUseCase) {
		uc.runs = runs
	}
}

// WithArtifactStore enables artifact archival after successful builds
func WithArtifactStore(store interfaces.ArtifactStore) PipelineOption {
	return func(uc *pipelineUseCase) {
		uc.store = store
	}
}

// WithNotifier enables run completion notifications
func WithNotifier(notifier interfaces.Notifier) PipelineOption {
	return func(uc *pipelineUseCase) {
		uc.notifier = notifier
	}
}

// WithPipelineConfig overrides runtime and build settings. Zero valued
// fields keep their defaults.
func WithPipelineConfig(cfg PipelineConfig) PipelineOption {
	return func(uc *pipelineUseCase) {
		if cfg.PythonBin != "" {
			uc.config.PythonBin = cfg.PythonBin
		}
		if cfg.PythonVersion != "" {
			uc.config.PythonVersion = cfg.PythonVersion
		}
		if len(cfg.BuildCommand) > 0 {
			uc.config.BuildCommand = cfg.BuildCommand
		}
		if cfg.KeepWorkspace {
			uc.config.KeepWorkspace = true
		}
	}
}

// NewPipeline creates the release pipeline use case. GitHub access,
// the package index and a command runner are required; run
// persistence, artifact archival and notifications are optional
// bookkeeping enabled through options.
func NewPipeline(
	github interfaces.GitHubClient,
	index interfaces.PackageIndex,
	runner interfaces.CommandRunner,
	opts ...PipelineOption,
) interfaces.PipelineUseCase {
	uc := &pipelineUseCase{
		github: github,
		index:  index,
		runner: runner,
		config: PipelineConfig{
			PythonBin:    defaultPythonBin,
			BuildCommand: defaultBuildCommand,
		},
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// runState carries what one step produces and a later step consumes
// within a single Execute call.
type runState struct {
	push      *model.PushInfo
	workspace *model.Workspace
	project   *model.ProjectMetadata
	python    string
	artifact  *model.Artifact
}

// Execute runs the five pipeline steps in their fixed order for a
// triggering tag push. The first failing step stops the sequence:
// remaining steps are recorded as skipped and side effects of earlier
// steps, such as an already created release, are left in place.
func (uc *pipelineUseCase) Execute(ctx context.Context, push *model.PushInfo) (*model.PipelineRun, error) {
	logger := ctxlog.From(ctx)

	run := model.NewPipelineRun(push)
	st := &runState{push: push}
	uc.persist(ctx, run)

	logger.Info("Starting release pipeline",
		"run_id", run.ID,
		"repository", run.FullName(),
		"ref", run.Ref,
		"tag", run.Tag,
	)

	run.Start()
	uc.persist(ctx, run)
	metricRunsInFlight.Inc()
	defer metricRunsInFlight.Dec()

	err := uc.runSteps(ctx, run, st)
	if err != nil {
		run.Fail(err)
		logger.Error("Release pipeline failed",
			"run_id", run.ID,
			"repository", run.FullName(),
			"tag", run.Tag,
			"error", err,
		)
	} else {
		run.Succeed()
		logger.Info("Release pipeline succeeded",
			"run_id", run.ID,
			"repository", run.FullName(),
			"tag", run.Tag,
			"release_url", run.ReleaseURL,
			"artifact", run.ArtifactName,
			"duration_ms", run.Duration().Milliseconds(),
		)
	}
	uc.persist(ctx, run)
	metricRunsTotal.WithLabelValues(string(run.Status)).Inc()

	uc.finishRun(ctx, run, st, err)

	return run, err
}

// runSteps drives the step sequence and records each transition.
func (uc *pipelineUseCase) runSteps(ctx context.Context, run *model.PipelineRun, st *runState) error {
	logger := ctxlog.From(ctx)

	steps := []struct {
		name model.StepName
		fn   func(context.Context, *model.PipelineRun, *runState) error
	}{
		{model.StepCheckout, uc.stepCheckout},
		{model.StepCreateRelease, uc.stepCreateRelease},
		{model.StepSetupRuntime, uc.stepSetupRuntime},
		{model.StepBuild, uc.stepBuild},
		{model.StepPublish, uc.stepPublish},
	}

	for _, step := range steps {
		logger.Info("Running pipeline step", "run_id", run.ID, "step", step.name)
		run.StartStep(step.name)
		uc.persist(ctx, run)

		timer := prometheus.NewTimer(metricStepDuration.WithLabelValues(string(step.name)))
		err := step.fn(ctx, run, st)
		timer.ObserveDuration()

		run.FinishStep(step.name, err)
		uc.persist(ctx, run)

		if err != nil {
			return goerr.Wrap(err, "pipeline step failed", goerr.V("step", step.name))
		}

		logger.Info("Pipeline step finished",
			"run_id", run.ID,
			"step", step.name,
			"duration_ms", run.Step(step.name).Duration().Milliseconds(),
		)
	}

	return nil
}

// stepCheckout downloads the source archive for the triggering tag and
// unpacks it into the run workspace.
func (uc *pipelineUseCase) stepCheckout(ctx context.Context, run *model.PipelineRun, st *runState) error {
	logger := ctxlog.From(ctx)

	ref := run.CommitSHA
	if ref == "" {
		sha, err := uc.github.ResolveTagSHA(ctx, run.Owner, run.Repo, run.Tag)
		if err != nil {
			return fmt.Errorf("failed to resolve tag %s in %s: %w", run.Tag, run.FullName(), err)
		}
		run.CommitSHA = sha
		ref = sha
	}

	archive, err := uc.github.DownloadArchive(ctx, run.Owner, run.Repo, ref)
	if err != nil {
		return fmt.Errorf("failed to download source for %s@%s: %w", run.FullName(), ref, err)
	}

	logger.Info("Downloaded source archive",
		"repository", run.FullName(),
		"ref", ref,
		"size_bytes", len(archive),
	)

	ws, err := uc.extractWorkspace(ctx, archive)
	if err != nil {
		return err
	}
	st.workspace = ws

	meta, err := uc.loadProjectMetadata(ctx, ws)
	if err != nil {
		return err
	}
	st.project = meta

	logger.Info("Checked out source",
		"run_id", run.ID,
		"dir", ws.ProjectDir,
		"files", ws.Files,
		"size_bytes", ws.Size,
	)
	return nil
}

// stepCreateRelease publishes a release for the tag. The release name
// is the tag prefixed with "Release ".
func (uc *pipelineUseCase) stepCreateRelease(ctx context.Context, run *model.PipelineRun, st *runState) error {
	rel := model.NewRelease(st.push)
	rel.CommitSHA = run.CommitSHA

	result, err := uc.github.CreateRelease(ctx, rel)
	if err != nil {
		return fmt.Errorf("failed to create release for tag %s: %w", rel.TagName, err)
	}

	run.ReleaseID = result.ID
	run.ReleaseURL = result.URL

	ctxlog.From(ctx).Info("Created release",
		"run_id", run.ID,
		"name", rel.Name,
		"tag", rel.TagName,
		"release_id", result.ID,
		"url", result.URL,
	)
	return nil
}

// stepSetupRuntime resolves the configured interpreter on the host and
// verifies its version against the pinned one.
func (uc *pipelineUseCase) stepSetupRuntime(ctx context.Context, run *model.PipelineRun, st *runState) error {
	path, err := uc.runner.LookPath(uc.config.PythonBin)
	if err != nil {
		return fmt.Errorf("runtime %s not found on host: %w", uc.config.PythonBin, err)
	}
	st.python = path

	out, err := uc.runner.Run(ctx, st.workspace.ProjectDir, path, "--version")
	if err != nil {
		return fmt.Errorf("failed to probe runtime version: %w", err)
	}

	version := strings.TrimPrefix(strings.TrimSpace(string(out)), "Python ")

	if want := uc.config.PythonVersion; want != "" {
		if version != want && !strings.HasPrefix(version, want+".") {
			return goerr.New("runtime version mismatch",
				goerr.V("want", want),
				goerr.V("got", version),
				goerr.V("python", path),
			)
		}
	}

	ctxlog.From(ctx).Info("Runtime ready",
		"run_id", run.ID,
		"python", path,
		"version", version,
	)
	return nil
}

// stepBuild runs the build command in the project directory and
// collects the distribution it produced.
func (uc *pipelineUseCase) stepBuild(ctx context.Context, run *model.PipelineRun, st *runState) error {
	logger := ctxlog.From(ctx)

	logger.Info("Building distribution",
		"run_id", run.ID,
		"python", st.python,
		"command", strings.Join(uc.config.BuildCommand, " "),
	)

	out, err := uc.runner.Run(ctx, st.workspace.ProjectDir, st.python, uc.config.BuildCommand...)
	if err != nil {
		return fmt.Errorf("build command failed: %w", err)
	}
	logger.Debug("Build command finished", "output_bytes", len(out))

	artifact, err := uc.collectArtifact(ctx, run, st)
	if err != nil {
		return err
	}
	st.artifact = artifact
	run.ArtifactName = artifact.Filename

	logger.Info("Built distribution",
		"run_id", run.ID,
		"file", artifact.Filename,
		"package", artifact.Name,
		"version", artifact.Version,
		"size_bytes", artifact.Size,
	)
	return nil
}

// stepPublish uploads the built distribution to the package index.
func (uc *pipelineUseCase) stepPublish(ctx context.Context, run *model.PipelineRun, st *runState) error {
	if st.artifact == nil {
		return goerr.Wrap(model.ErrNoArtifact, "publish step has no artifact")
	}

	f, err := os.Open(st.artifact.Path)
	if err != nil {
		return fmt.Errorf("failed to open artifact %s: %w", st.artifact.Path, err)
	}
	defer f.Close()

	if err := uc.index.Upload(ctx, st.artifact, f); err != nil {
		return fmt.Errorf("failed to upload %s: %w", st.artifact.Filename, err)
	}

	ctxlog.From(ctx).Info("Published package",
		"run_id", run.ID,
		"file", st.artifact.Filename,
		"package", st.artifact.Name,
		"version", st.artifact.Version,
	)
	return nil
}

// persist writes the run record after a state transition. Storage
// trouble is logged and never interrupts the pipeline.
func (uc *pipelineUseCase) persist(ctx context.Context, run *model.PipelineRun) {
	if uc.runs == nil {
		return
	}
	if err := uc.runs.Put(ctx, run); err != nil {
		ctxlog.From(ctx).Warn("Failed to persist run record",
			"error", err,
			"run_id", run.ID,
		)
	}
}

// finishRun performs post-run bookkeeping: failure reporting, artifact
// archival, notification and workspace cleanup. Failures here are
// logged as warnings and never change the outcome of the run.
func (uc *pipelineUseCase) finishRun(ctx context.Context, run *model.PipelineRun, st *runState, runErr error) {
	logger := ctxlog.From(ctx)

	if runErr != nil {
		uc.reportFailure(run, runErr)
	}

	if uc.store != nil && st.artifact != nil {
		if err := uc.archiveArtifact(ctx, run, st.artifact); err != nil {
			logger.Warn("Failed to archive artifact",
				"error", err,
				"run_id", run.ID,
				"file", st.artifact.Filename,
			)
		}
	}

	if uc.notifier != nil {
		if err := uc.notifier.NotifyRun(ctx, run); err != nil {
			logger.Warn("Failed to send run notification",
				"error", err,
				"run_id", run.ID,
			)
		}
	}

	if st.workspace != nil {
		if uc.config.KeepWorkspace {
			logger.Info("Keeping workspace", "run_id", run.ID, "dir", st.workspace.Dir)
			return
		}
		if err := os.RemoveAll(st.workspace.Dir); err != nil {
			logger.Warn("Failed to clean up workspace", "error", err, "dir", st.workspace.Dir)
		} else {
			logger.Debug("Cleaned up workspace", "dir", st.workspace.Dir)
		}
	}
}

// archiveArtifact stores a copy of the distribution in the artifact
// store and records its location on the run.
func (uc *pipelineUseCase) archiveArtifact(ctx context.Context, run *model.PipelineRun, artifact *model.Artifact) error {
	f, err := os.Open(artifact.Path)
	if err != nil {
		return fmt.Errorf("failed to open artifact %s: %w", artifact.Path, err)
	}
	defer f.Close()

	object := fmt.Sprintf("%s/%s/%s/%s", run.Owner, run.Repo, run.Tag, artifact.Filename)
	uri, err := uc.store.Put(ctx, object, "application/gzip", f)
	if err != nil {
		return err
	}

	run.ArtifactURL = uri
	uc.persist(ctx, run)

	ctxlog.From(ctx).Info("Archived artifact", "run_id", run.ID, "uri", uri)
	return nil
}

// reportFailure forwards a failed run to the error monitor when
// sentry has been initialized.
func (uc *pipelineUseCase) reportFailure(run *model.PipelineRun, runErr error) {
	if sentry.CurrentHub().Client() == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("repository", run.FullName())
		scope.SetTag("tag", run.Tag)
		scope.SetTag("run_id", run.ID.String())
		sentry.CaptureException(runErr)
	})
}
