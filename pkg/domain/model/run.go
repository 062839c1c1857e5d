package model

import (
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/m-mizutani/shipwright/pkg/domain/types"
)

// RunStatus represents the overall state of a pipeline run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// StepStatus represents the state of a single step within a run.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusRunning   StepStatus = "running"
	StepStatusSucceeded StepStatus = "succeeded"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepName identifies one of the five pipeline steps.
type StepName string

const (
	StepCheckout      StepName = "checkout"
	StepCreateRelease StepName = "create_release"
	StepSetupRuntime  StepName = "setup_runtime"
	StepBuild         StepName = "build_package"
	StepPublish       StepName = "publish_package"
)

// StepOrder is the fixed execution order. The sequencer runs exactly
// these steps, in exactly this order, and stops at the first failure.
var StepOrder = []StepName{
	StepCheckout,
	StepCreateRelease,
	StepSetupRuntime,
	StepBuild,
	StepPublish,
}

// StepResult records the outcome of one step.
type StepResult struct {
	Name       StepName   `json:"name" firestore:"name"`
	Status     StepStatus `json:"status" firestore:"status"`
	StartedAt  time.Time  `json:"started_at,omitzero" firestore:"started_at"`
	FinishedAt time.Time  `json:"finished_at,omitzero" firestore:"finished_at"`
	Error      string     `json:"error,omitempty" firestore:"error"`
}

// Duration returns how long the step ran, zero if it never finished.
func (s *StepResult) Duration() time.Duration {
	if s.StartedAt.IsZero() || s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// PipelineRun is the record of one activation of the pipeline: which
// tag push triggered it, how far the step sequence got, and what the
// external side effects were.
type PipelineRun struct {
	ID           types.RunID  `json:"id" firestore:"id"`
	Owner        string       `json:"owner" firestore:"owner"`
	Repo         string       `json:"repo" firestore:"repo"`
	Ref          string       `json:"ref" firestore:"ref"`
	Tag          string       `json:"tag" firestore:"tag"`
	Version      string       `json:"version,omitempty" firestore:"version"`
	CommitSHA    string       `json:"commit_sha,omitempty" firestore:"commit_sha"`
	TriggeredBy  string       `json:"triggered_by,omitempty" firestore:"triggered_by"`
	Status       RunStatus    `json:"status" firestore:"status"`
	Steps        []StepResult `json:"steps" firestore:"steps"`
	ReleaseID    int64        `json:"release_id,omitempty" firestore:"release_id"`
	ReleaseURL   string       `json:"release_url,omitempty" firestore:"release_url"`
	ArtifactName string       `json:"artifact_name,omitempty" firestore:"artifact_name"`
	ArtifactURL  string       `json:"artifact_url,omitempty" firestore:"artifact_url"`
	Error        string       `json:"error,omitempty" firestore:"error"`
	CreatedAt    time.Time    `json:"created_at" firestore:"created_at"`
	StartedAt    time.Time    `json:"started_at,omitzero" firestore:"started_at"`
	FinishedAt   time.Time    `json:"finished_at,omitzero" firestore:"finished_at"`
}

// NewPipelineRun creates a pending run for a triggering tag push with
// all five steps in pending state.
func NewPipelineRun(push *PushInfo) *PipelineRun {
	run := &PipelineRun{
		ID:          types.NewRunID(),
		Owner:       push.Owner,
		Repo:        push.Repo,
		Ref:         push.Ref,
		Tag:         push.Tag,
		Version:     VersionFromTag(push.Tag),
		CommitSHA:   push.CommitSHA,
		TriggeredBy: push.Pusher,
		Status:      RunStatusPending,
		CreatedAt:   time.Now(),
	}
	for _, name := range StepOrder {
		run.Steps = append(run.Steps, StepResult{Name: name, Status: StepStatusPending})
	}
	return run
}

// Step returns the result slot for the named step, nil if unknown.
func (r *PipelineRun) Step(name StepName) *StepResult {
	for i := range r.Steps {
		if r.Steps[i].Name == name {
			return &r.Steps[i]
		}
	}
	return nil
}

// Start marks the run as executing.
func (r *PipelineRun) Start() {
	r.Status = RunStatusRunning
	r.StartedAt = time.Now()
}

// StartStep marks the named step as running.
func (r *PipelineRun) StartStep(name StepName) {
	if s := r.Step(name); s != nil {
		s.Status = StepStatusRunning
		s.StartedAt = time.Now()
	}
}

// FinishStep records the outcome of the named step.
func (r *PipelineRun) FinishStep(name StepName, stepErr error) {
	s := r.Step(name)
	if s == nil {
		return
	}
	s.FinishedAt = time.Now()
	if stepErr != nil {
		s.Status = StepStatusFailed
		s.Error = stepErr.Error()
		return
	}
	s.Status = StepStatusSucceeded
}

// Fail finalizes the run after a step failure. Steps that never
// started are marked skipped; already created side effects (such as a
// release from an earlier step) are deliberately left as they are.
func (r *PipelineRun) Fail(err error) {
	r.Status = RunStatusFailed
	if err != nil {
		r.Error = err.Error()
	}
	r.FinishedAt = time.Now()
	for i := range r.Steps {
		if r.Steps[i].Status == StepStatusPending {
			r.Steps[i].Status = StepStatusSkipped
		}
	}
}

// Succeed finalizes a fully completed run.
func (r *PipelineRun) Succeed() {
	r.Status = RunStatusSucceeded
	r.FinishedAt = time.Now()
}

// Duration returns total wall time of the run, zero while unfinished.
func (r *PipelineRun) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// FullName returns owner/repo.
func (r *PipelineRun) FullName() string {
	return r.Owner + "/" + r.Repo
}

// VersionFromTag derives a normalized version from a tag name: a
// leading "v" or "V" is stripped, and the remainder is canonicalized
// through semver when it parses. Tags that are not version-like are
// returned stripped as-is; the pipeline does not reject them.
func VersionFromTag(tag string) string {
	s := strings.TrimSpace(tag)
	if len(s) > 1 && (s[0] == 'v' || s[0] == 'V') {
		s = s[1:]
	}
	if v, err := semver.NewVersion(s); err == nil {
		return v.String()
	}
	return s
}
