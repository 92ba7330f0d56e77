package petri

import (
	"time"
)

// fpsSampleWindow is the measurement window of the actual-FPS meter.
const fpsSampleWindow = time.Second

// Controller runs an Engine on a dedicated goroutine and speaks the
// message protocol with the Presenter. Requests are consumed in FIFO order;
// updates are emitted in the order they are produced. Nothing inside a
// single handler is observable from outside: the core only suspends between
// messages and between run-loop ticks.
type Controller struct {
	engine   *Engine
	requests chan Request
	updates  chan Message
	stop     chan struct{}
	done     chan struct{}

	running bool
	tick    *time.Timer
	tickC   <-chan time.Time

	frames     int
	meterStart time.Time
	actualFPS  float64
}

// NewController wraps an engine and starts its worker goroutine.
func NewController(engine *Engine) *Controller {
	c := &Controller{
		engine:   engine,
		requests: make(chan Request, 64),
		updates:  make(chan Message, 128),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go c.loop()
	return c
}

// Send queues a request for the core. It blocks when the request queue is
// full.
func (c *Controller) Send(req Request) {
	c.requests <- req
}

// Updates returns the channel of messages emitted by the core. The channel
// is closed by Close; the Presenter must keep draining it.
func (c *Controller) Updates() <-chan Message {
	return c.updates
}

// Close stops the worker goroutine and closes the update channel.
func (c *Controller) Close() {
	close(c.stop)
	<-c.done
	close(c.updates)
}

// loop is the core's single worker: one handler at a time, no shared state.
func (c *Controller) loop() {
	defer close(c.done)
	for {
		select {
		case req := <-c.requests:
			c.handle(req)
		case <-c.tickC:
			c.tickC = nil
			c.runTick()
		case <-c.stop:
			c.stopRun()
			return
		}
	}
}

// handle dispatches one Presenter request.
func (c *Controller) handle(req Request) {
	switch m := req.(type) {
	case InitRequest:
		c.engine.SetViewportSize(m.Cols, m.Rows)
		if c.engine.Population() == 0 && !m.Preserve {
			c.engine.SeedDefault()
		}
		c.emitUpdate()

	case ResizeRequest:
		c.engine.SetViewportSize(m.Cols, m.Rows)
		c.emitUpdate()

	case ViewportMoveRequest:
		c.engine.SetViewportOrigin(m.X, m.Y)
		c.emitUpdate()

	case StartRequest:
		if !c.running {
			c.running = true
			c.frames = 0
			c.meterStart = time.Now()
			c.scheduleTick(0)
		}

	case StopRequest:
		c.stopRun()
		c.emitUpdate()

	case StepRequest:
		c.stopRun()
		c.engine.Step()
		c.emitUpdate()

	case ReverseRequest:
		c.stopRun()
		// Exhausted or disabled history reverses silently to a no-op; the
		// Presenter disables the control when nothing is left.
		if c.engine.Reverse() {
			c.emitUpdate()
		}

	case SetFPSRequest:
		if c.engine.SetTargetFPS(m.FPS) == nil {
			c.emitUpdate()
		}

	case SetHistoryRequest:
		c.engine.SetHistory(m.Enabled, m.Size)
		c.emitUpdate()

	case SetAgeTrackingRequest:
		c.engine.SetAgeTracking(m.Enabled)
		c.emitUpdate()

	case SetHeatmapRequest:
		c.engine.SetHeatmap(m.Enabled)
		c.emitUpdate()

	case SetRuleRequest:
		if err := c.engine.SetRule(m.Rule); err != nil {
			c.emit(RuleError{Message: err.Error()})
			return
		}
		c.emit(RuleChanged{Rule: c.engine.Rule().String()})
		c.emitUpdate()

	case SetCellRequest:
		c.engine.SetViewportCell(m.Index, m.Value)
		c.emitUpdate()

	case SetCellsRequest:
		for _, u := range m.Updates {
			c.engine.SetViewportCell(u.Index, u.Value)
		}
		c.emitUpdate()

	case ClearRequest:
		c.stopRun()
		c.engine.Clear()
		c.emitUpdate()

	case RandomizeRequest:
		c.stopRun()
		c.engine.Randomize(clamp01(m.Density))
		c.emitUpdate()

	case LoadRequest:
		c.stopRun()
		c.engine.LoadPacked(m.W, m.H, m.Data)
		c.emitUpdate()

	case ExportRequest:
		rle, w, h := c.engine.ExportRLE()
		c.emit(ExportData{RLE: rle, W: w, H: h})

	case JumpRequest:
		c.stopRun()
		err := c.engine.JumpTo(m.Target, func(current, target uint64) {
			c.emit(JumpProgress{Current: current, Target: target})
		})
		if err != nil {
			c.emit(JumpError{Message: err.Error()})
			return
		}
		c.emit(JumpComplete{Generation: c.engine.Generation()})
		c.emitUpdate()
	}
}

// runTick performs one run-loop step and schedules the next one with a
// self-correcting delay.
func (c *Controller) runTick() {
	if !c.running {
		return
	}
	start := time.Now()
	c.engine.Step()
	c.countFrame(start)
	c.emitUpdate()

	interval := time.Duration(float64(time.Second) / c.engine.Settings().TargetFPS)
	delay := interval - time.Since(start)
	if delay < 0 {
		delay = 0
	}
	c.scheduleTick(delay)
}

// scheduleTick arms the run-loop timer.
func (c *Controller) scheduleTick(delay time.Duration) {
	if c.tick != nil {
		c.tick.Stop()
	}
	c.tick = time.NewTimer(delay)
	c.tickC = c.tick.C
}

// stopRun dequeues any pending run-loop tick.
func (c *Controller) stopRun() {
	c.running = false
	if c.tick != nil {
		c.tick.Stop()
		c.tick = nil
	}
	c.tickC = nil
}

// countFrame feeds the actual-FPS meter.
func (c *Controller) countFrame(now time.Time) {
	c.frames++
	if elapsed := now.Sub(c.meterStart); elapsed >= fpsSampleWindow {
		c.actualFPS = float64(c.frames) / elapsed.Seconds()
		c.frames = 0
		c.meterStart = now
	}
}

// emitUpdate assembles and sends a full frame update. Output buffers are
// freshly allocated and ownership passes to the Presenter.
func (c *Controller) emitUpdate() {
	e := c.engine
	u := Update{
		Grid:        e.RenderGrid(),
		Generation:  e.Generation(),
		Population:  e.Population(),
		Running:     c.running,
		Rule:        e.Rule().String(),
		FPS:         FPSInfo{Actual: c.actualFPS, Target: e.Settings().TargetFPS},
		Chunks:      e.Store().ChunkCount(),
		HistorySize: e.HistoryLen(),
		WorldID:     e.WorldID(),
		Ages:        e.RenderAges(),
		Heatmap:     e.RenderHeatmap(),
	}
	if b := e.Bounds(); !b.Empty {
		x, y, w, h := b.Rect()
		u.BBox = &Rect{X: x, Y: y, W: w, H: h}
	}
	c.emit(u)
}

// emit sends one message to the Presenter in order.
func (c *Controller) emit(msg Message) {
	select {
	case c.updates <- msg:
	case <-c.stop:
	}
}

// clamp01 forces a density into [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
