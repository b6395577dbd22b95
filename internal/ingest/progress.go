package ingest

// Stage names the pipeline checkpoints reported to a ProgressFunc.
type Stage string

const (
	StagePreprocess  Stage = "preprocess"
	StageMerge       Stage = "merge"
	StageExtract     Stage = "extract"
	StageNormalize   Stage = "normalize"
	StagePostprocess Stage = "postprocess"
)

// ProgressFunc is an optional callback invoked as the pipeline completes
// each stage; done and total count the units the stage worked over. A nil
// ProgressFunc disables reporting.
type ProgressFunc func(stage Stage, done, total int)

// Report invokes p when set.
func (p ProgressFunc) Report(stage Stage, done, total int) {
	if p != nil {
		p(stage, done, total)
	}
}
