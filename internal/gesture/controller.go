package gesture

import (
	"sync"
	"time"

	"github.com/tphakala/regionedit/internal/coords"
	"github.com/tphakala/regionedit/internal/errors"
	"github.com/tphakala/regionedit/internal/logger"
	"github.com/tphakala/regionedit/internal/observability/metrics"
	"github.com/tphakala/regionedit/internal/region"
)

// GetLogger returns the gesture package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("gesture")
}

// Controller owns at most one Gesture at a time. A pointer-down while a
// drag is active is rejected with ErrGestureActive.
type Controller struct {
	mu       sync.Mutex
	cfg      Config
	gesture  Gesture
	started  time.Time
	log      logger.Logger
	recorder metrics.Recorder
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger replaces the package logger.
func WithLogger(l logger.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRecorder records gesture phases to r.
func WithRecorder(r metrics.Recorder) ControllerOption {
	return func(c *Controller) {
		c.recorder = metrics.OrNoOp(r)
	}
}

// NewController returns an idle controller.
func NewController(cfg Config, opts ...ControllerOption) *Controller {
	c := &Controller{
		cfg:      cfg,
		log:      GetLogger().Module("controller"),
		recorder: metrics.NoOpRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the controller's configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// Active returns the current gesture and whether a drag is in progress.
func (c *Controller) Active() (Gesture, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gesture, c.gesture.Active()
}

// PointerDown starts a gesture on r.
func (c *Controller) PointerDown(p Pointer, r region.Region, box Box, vp coords.Viewport) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gesture.Active() {
		err := errors.New(ErrGestureActive).
			Component("gesture").
			Category(errors.CategoryState).
			RegionContext(c.gesture.RegionID, "").
			Context("requested_region", r.ID).
			Build()
		c.reject(metrics.OpGestureBegin, err)
		return Result{}, err
	}

	g, res, err := Begin(p, r, box, vp, c.cfg)
	if err != nil {
		c.reject(metrics.OpGestureBegin, err)
		return Result{}, err
	}

	c.gesture = g
	c.started = time.Now()
	c.recorder.RecordOperation(metrics.OpGestureBegin, metrics.StatusSuccess)
	c.log.Debug("gesture started",
		logger.String("region_id", r.ID),
		logger.String("tool", p.Tool.String()),
		logger.String("modifiers", p.Mods.String()),
		logger.String("state", res.State.String()))

	if len(res.Created) > 0 && res.State == Idle {
		c.recorder.RecordOperation(metrics.OpSplit, metrics.StatusSuccess)
		c.log.Debug("region split by tool",
			logger.String("region_id", r.ID),
			logger.String("left_id", res.Created[0].ID),
			logger.String("right_id", res.Created[1].ID))
	}
	return res, nil
}

// PointerMove applies a drag frame. src is the dragged region's source.
func (c *Controller) PointerMove(x float64, src *region.Source) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, res, err := c.gesture.Move(x, src, c.cfg)
	if err != nil {
		c.reject(metrics.OpGestureMove, err)
		return Result{}, err
	}
	if c.gesture.State == Duplicating {
		c.recorder.RecordOperation(metrics.OpDuplicate, metrics.StatusSuccess)
		c.log.Debug("region duplicated by drag",
			logger.String("source_region_id", c.gesture.RegionID),
			logger.String("region_id", g.RegionID))
	}
	c.gesture = g
	c.recorder.RecordOperation(metrics.OpGestureMove, metrics.StatusSuccess)
	return res, nil
}

// PointerUp ends the active gesture.
func (c *Controller) PointerUp() (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.gesture
	g, res, err := prev.End()
	if err != nil {
		c.reject(metrics.OpGestureEnd, err)
		return Result{}, err
	}
	c.gesture = g
	c.finish(metrics.OpGestureEnd, prev)
	return res, nil
}

// Cancel abandons the active gesture and returns what the host must
// commit to restore the pre-gesture state.
func (c *Controller) Cancel() (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.gesture
	g, res, err := prev.Cancel()
	if err != nil {
		c.reject(metrics.OpGestureCancel, err)
		return Result{}, err
	}
	c.gesture = g
	c.finish(metrics.OpGestureCancel, prev)
	return res, nil
}

func (c *Controller) finish(op string, prev Gesture) {
	elapsed := time.Since(c.started)
	c.recorder.RecordOperation(op, metrics.StatusSuccess)
	c.recorder.RecordDuration(op, elapsed.Seconds())
	c.log.Debug("gesture finished",
		logger.String("operation", op),
		logger.String("region_id", prev.RegionID),
		logger.String("state", prev.State.String()),
		logger.Duration("elapsed", elapsed))
}

func (c *Controller) reject(op string, err error) {
	category := errors.CategoryGeneric
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		category = ee.Category
	}
	c.recorder.RecordOperation(op, metrics.StatusRejected)
	c.recorder.RecordError(op, string(category))

	fields := []logger.Field{logger.String("operation", op), logger.Error(err)}
	if category == errors.CategoryDataIntegrity {
		c.log.Error("gesture refused", fields...)
		return
	}
	c.log.Warn("gesture rejected", fields...)
}
