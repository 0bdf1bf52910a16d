package pipeline

import "fmt"

// Stage names a step of a generation run.
type Stage string

// Stages in execution order.
const (
	StageProgress Stage = "progress"
	StageAyah     Stage = "ayah"
	StageHadith   Stage = "hadith"
	StageReview   Stage = "review"
	StageRender   Stage = "render"
	StageSave     Stage = "save"
	StageAdvance  Stage = "advance"
)

// StageError reports which stage of a run failed. The progress cursor is
// never advanced when a run returns a StageError.
type StageError struct {
	Stage Stage
	Cause error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Cause)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}
