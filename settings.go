package petri

const (
	// maxFPS is the highest allowed run-loop target cadence.
	maxFPS = 60.0
	// defaultFPS is the cadence used when none is configured.
	defaultFPS = 10.0
	// jumpProgressInterval is the generation cadence of progress reports
	// during a jump.
	jumpProgressInterval = 1000
)

// Settings holds the tunable parameters of an engine.
type Settings struct {
	TargetFPS      float64
	HistoryEnabled bool
	HistorySize    int
	AgeTracking    bool
	Heatmap        bool
}

// DefaultSettings returns the engine defaults: 10 FPS, history enabled at
// the default ring size, overlays off.
func DefaultSettings() Settings {
	return Settings{
		TargetFPS:      defaultFPS,
		HistoryEnabled: true,
		HistorySize:    historyDefaultSize,
	}
}

// Validate forces the settings into their supported ranges rather than
// rejecting them. A history size outside the range is clamped to the nearest
// bound; a target FPS outside (0, 60], the zero value included, falls back to
// the default cadence.
func (s *Settings) Validate() {
	if s.TargetFPS <= 0 || s.TargetFPS > maxFPS {
		s.TargetFPS = defaultFPS
	}
	s.HistorySize = clampHistorySize(s.HistorySize)
}
