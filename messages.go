package petri

import "github.com/google/uuid"

// Request is a message from the Presenter to the core. Requests are handled
// strictly in the order they are sent.
type Request interface {
	isRequest()
}

// InitRequest sets the viewport dimensions. If the store is empty and
// Preserve is false, the default pattern is seeded at the viewport center.
type InitRequest struct {
	Cols, Rows int
	Preserve   bool
}

// ResizeRequest changes the viewport dimensions with no side effects on the
// store.
type ResizeRequest struct {
	Cols, Rows int
}

// ViewportMoveRequest sets the viewport origin to global (X, Y).
type ViewportMoveRequest struct {
	X, Y int
}

// StartRequest begins the run loop.
type StartRequest struct{}

// StopRequest halts the run loop.
type StopRequest struct{}

// StepRequest advances one generation.
type StepRequest struct{}

// ReverseRequest rewinds one generation; a no-op when history is empty or
// disabled.
type ReverseRequest struct{}

// SetFPSRequest sets the target run-loop cadence in (0, 60]. Fractional
// values are allowed.
type SetFPSRequest struct {
	FPS float64
}

// SetHistoryRequest enables or disables the undo ring and sizes it.
type SetHistoryRequest struct {
	Enabled bool
	Size    int
}

// SetAgeTrackingRequest toggles the age overlay.
type SetAgeTrackingRequest struct {
	Enabled bool
}

// SetHeatmapRequest toggles the activity heatmap overlay.
type SetHeatmapRequest struct {
	Enabled bool
}

// SetRuleRequest replaces the rule; an unparseable string is reported via
// RuleError and leaves the rule unchanged.
type SetRuleRequest struct {
	Rule string
}

// CellUpdate is one viewport cell edit.
type CellUpdate struct {
	Index int
	Value int
}

// SetCellRequest edits the viewport cell (Index%viewW, Index/viewW).
type SetCellRequest struct {
	Index int
	Value int
}

// SetCellsRequest applies a bulk viewport edit.
type SetCellsRequest struct {
	Updates []CellUpdate
}

// ClearRequest empties the store and resets generation, overlays and
// history.
type ClearRequest struct{}

// RandomizeRequest replaces the viewport rectangle with Bernoulli(Density)
// cells and wipes overlays and history.
type RandomizeRequest struct {
	Density float64
}

// LoadRequest replaces the store with a flat packed bitmap at the origin.
type LoadRequest struct {
	W, H int
	Data []uint32
}

// ExportRequest asks for an ExportData message carrying RLE for the world's
// bounding box.
type ExportRequest struct{}

// JumpRequest advances the generation counter to Target.
type JumpRequest struct {
	Target uint64
}

func (InitRequest) isRequest()           {}
func (ResizeRequest) isRequest()         {}
func (ViewportMoveRequest) isRequest()   {}
func (StartRequest) isRequest()          {}
func (StopRequest) isRequest()           {}
func (StepRequest) isRequest()           {}
func (ReverseRequest) isRequest()        {}
func (SetFPSRequest) isRequest()         {}
func (SetHistoryRequest) isRequest()     {}
func (SetAgeTrackingRequest) isRequest() {}
func (SetHeatmapRequest) isRequest()     {}
func (SetRuleRequest) isRequest()        {}
func (SetCellRequest) isRequest()        {}
func (SetCellsRequest) isRequest()       {}
func (ClearRequest) isRequest()          {}
func (RandomizeRequest) isRequest()      {}
func (LoadRequest) isRequest()           {}
func (ExportRequest) isRequest()         {}
func (JumpRequest) isRequest()           {}

// Message is a message from the core to the Presenter. Messages are
// observed in the order they were sent.
type Message interface {
	isMessage()
}

// Rect is a cell-space rectangle.
type Rect struct {
	X, Y int
	W, H int
}

// FPSInfo pairs the measured frame rate with the configured target.
type FPSInfo struct {
	Actual float64
	Target float64
}

// Update carries everything a frame needs. Grid is a packed row-major
// bitmap of the viewport with ceil(viewW/32) words per row; Ages and
// Heatmap are dense byte arrays present only while their overlays are
// enabled. Buffers are freshly allocated for every update and owned by the
// receiver.
type Update struct {
	Grid        []uint32
	Generation  uint64
	Population  int
	Running     bool
	BBox        *Rect
	Rule        string
	FPS         FPSInfo
	Chunks      int
	HistorySize int
	WorldID     uuid.UUID
	Ages        []byte
	Heatmap     []byte
}

// ExportData is the response to an ExportRequest.
type ExportData struct {
	RLE  string
	W, H int
}

// RuleChanged reports the canonical form of a successfully applied rule.
type RuleChanged struct {
	Rule string
}

// RuleError reports a rejected rule string.
type RuleError struct {
	Message string
}

// JumpProgress is emitted at a coarse cadence during a long jump.
type JumpProgress struct {
	Current uint64
	Target  uint64
}

// JumpComplete reports the generation reached by a finished jump.
type JumpComplete struct {
	Generation uint64
}

// JumpError reports a rejected jump.
type JumpError struct {
	Message string
}

func (Update) isMessage()       {}
func (ExportData) isMessage()   {}
func (RuleChanged) isMessage()  {}
func (RuleError) isMessage()    {}
func (JumpProgress) isMessage() {}
func (JumpComplete) isMessage() {}
func (JumpError) isMessage()    {}
