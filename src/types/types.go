// Package types holds the data shapes shared by the collector, analysis and renderer.
package types

// Stage names in stacking order (bottom to top).
const (
	StageDraw    = "Draw"
	StagePrepare = "Prepare"
	StageProcess = "Process"
	StageExecute = "Execute"
)

// Stages lists the four rendering stages that make up a frame total.
var Stages = []string{StageDraw, StagePrepare, StageProcess, StageExecute}

// FrameRecord is one row of the gfxinfo profile table: per-stage durations in ms,
// in the column order emitted by the device.
type FrameRecord []float64

// FrameCollection is the ordered set of frames gathered during one run.
// Order is report emission order; across polling rounds it is round order.
type FrameCollection []FrameRecord

// Width returns the column count shared by the collection (0 when empty).
func (c FrameCollection) Width() int {
	if len(c) == 0 {
		return 0
	}
	return len(c[0])
}
