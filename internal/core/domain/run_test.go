package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipelineRun_AppendAndLastOutput(t *testing.T) {
	run := &PipelineRun{ID: "r1"}

	run.Append(StagePlan, 1, "plan")
	run.Append(StageGenerate, 1, "code v1")
	run.Append(StageReview, 1, "code v2")

	out, ok := run.LastOutput(StageGenerate)
	assert.True(t, ok)
	assert.Equal(t, "code v1", out)

	_, ok = run.LastOutput(StageTranslate)
	assert.False(t, ok)
	assert.Len(t, run.Outputs, 3)
}

func TestStageOutput_Label(t *testing.T) {
	assert.Equal(t, "plan", StageOutput{Stage: StagePlan, Attempt: 1}.Label())
	assert.Equal(t, "review#2", StageOutput{Stage: StageReview, Attempt: 2}.Label())
}

func TestDefaultPlan(t *testing.T) {
	p := DefaultPlan("html", "index.html")

	assert.True(t, p.Fallback)
	assert.Equal(t, []string{"html"}, p.TechStack)
	assert.Equal(t, []string{"index.html"}, p.FileStructure)
}

func TestComplexityLevel_HasStage(t *testing.T) {
	c := ComplexityLevel{Stages: []Stage{StagePlan, StageGenerate}}

	assert.True(t, c.HasStage(StagePlan))
	assert.False(t, c.HasStage(StageReview))
}

func TestStage_IsValid(t *testing.T) {
	assert.True(t, StageTranslate.IsValid())
	assert.False(t, Stage("deploy").IsValid())
}

func TestExtraction_IsNull(t *testing.T) {
	assert.True(t, NullExtraction().IsNull())
	assert.False(t, Extraction{Colors: []string{"x"}}.IsNull())
	assert.InDelta(t, 0.1, NullExtraction().Confidence, 1e-9)
}

func TestSuffixedID(t *testing.T) {
	assert.Equal(t, "20240501_120000", SuffixedID("20240501_120000", 0))
	assert.Equal(t, "20240501_120000", SuffixedID("20240501_120000", 1))
	assert.Equal(t, "20240501_120000_2", SuffixedID("20240501_120000", 2))
	assert.Equal(t, "20240501_120000_11", SuffixedID("20240501_120000", 11))
}
