package domain

import (
	"strconv"
	"time"
)

// RunIDLayout formats run identifiers from their start time.
const RunIDLayout = "20060102_150405"

// SuffixedID disambiguates time-based identifiers created within the same
// second: base, base_2, base_3 and so on.
func SuffixedID(base string, n int) string {
	if n < 2 {
		return base
	}
	return base + "_" + strconv.Itoa(n)
}

// RunStatus is the terminal status of a pipeline run.
type RunStatus string

// Run statuses. An empty status means the run is still in progress.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// String returns the string representation.
func (s RunStatus) String() string {
	return string(s)
}

// ReviewOutcome records how the review loop ended.
type ReviewOutcome string

// Review outcomes.
const (
	// ReviewSkipped means the complexity level had no review stage.
	ReviewSkipped ReviewOutcome = "skipped"

	// ReviewApproved means the reviewer returned the approval token.
	ReviewApproved ReviewOutcome = "approved"

	// ReviewUnapproved is the soft failure: retries ran out without approval.
	ReviewUnapproved ReviewOutcome = "unapproved"
)

// StageOutput is the raw output of one stage call.
type StageOutput struct {
	Stage   Stage     `json:"stage"`
	Attempt int       `json:"attempt"`
	Output  string    `json:"output"`
	At      time.Time `json:"at"`
}

// Label names the output in traces, e.g. "review#2".
func (o StageOutput) Label() string {
	if o.Stage == StageReview {
		return string(o.Stage) + "#" + strconv.Itoa(o.Attempt)
	}
	return string(o.Stage)
}

// Plan is the structured output of the plan stage.
type Plan struct {
	TechStack     []string `json:"tech_stack"`
	FileStructure []string `json:"file_structure"`
	Steps         []string `json:"steps"`
	Notes         string   `json:"notes,omitempty"`

	// Fallback is true when the planner output could not be parsed.
	Fallback bool `json:"fallback"`
}

// DefaultPlan is the single-technology plan used when planning output
// cannot be parsed.
func DefaultPlan(tech, fileName string) Plan {
	return Plan{
		TechStack:     []string{tech},
		FileStructure: []string{fileName},
		Steps:         []string{"implement the whole solution in " + fileName},
		Fallback:      true,
	}
}

// PipelineRun is one end-to-end execution record.
type PipelineRun struct {
	ID          string              `json:"run_id"`
	ProjectName string              `json:"project_name"`
	Profile     *RequirementProfile `json:"profile"`
	Complexity  ComplexityLevel     `json:"complexity"`
	Outputs     []StageOutput       `json:"outputs"`
	Plan        *Plan               `json:"plan,omitempty"`
	Artifact    []byte              `json:"-"`

	// ArtifactPath is where the final artifact was written.
	ArtifactPath string `json:"artifact_path,omitempty"`

	Status RunStatus     `json:"status"`
	Review ReviewOutcome `json:"review"`
	Error  string        `json:"error,omitempty"`

	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitempty"`
}

// Append records a stage output.
func (r *PipelineRun) Append(stage Stage, attempt int, output string) StageOutput {
	out := StageOutput{Stage: stage, Attempt: attempt, Output: output, At: time.Now()}
	r.Outputs = append(r.Outputs, out)
	return out
}

// LastOutput returns the most recent output of the given stage.
func (r *PipelineRun) LastOutput(stage Stage) (string, bool) {
	for i := len(r.Outputs) - 1; i >= 0; i-- {
		if r.Outputs[i].Stage == stage {
			return r.Outputs[i].Output, true
		}
	}
	return "", false
}

// Unapproved reports the soft failure status.
func (r *PipelineRun) Unapproved() bool {
	return r.Review == ReviewUnapproved
}
