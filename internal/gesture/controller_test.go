package gesture

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/regionedit/internal/logger"
	"github.com/tphakala/regionedit/internal/observability/metrics"
	"github.com/tphakala/regionedit/internal/region"
)

func newTestController(t *testing.T) (*Controller, *metrics.TestRecorder, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	rec := metrics.NewTestRecorder()
	c := NewController(DefaultConfig(),
		WithLogger(logger.NewSlogLogger(buf, logger.LogLevelDebug, time.UTC)),
		WithRecorder(rec))
	return c, rec, buf
}

func TestControllerFullDrag(t *testing.T) {
	t.Parallel()

	c, rec, buf := newTestController(t)
	r := testRegion("r1", 2, 4)
	box := RegionBox(r, testViewport, 0, 100)

	res, err := c.PointerDown(Pointer{Tool: ToolSelect, Point: Point{400, 50}}, r, box, testViewport)
	require.NoError(t, err)
	assert.Equal(t, Moving, res.State)

	g, active := c.Active()
	require.True(t, active)
	assert.Equal(t, "r1", g.RegionID)

	res, err = c.PointerMove(500, nil)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, res.Updated.StartTime, 1e-12)

	res, err = c.PointerUp()
	require.NoError(t, err)
	assert.Equal(t, Idle, res.State)
	assert.InDelta(t, 3.0, res.Updated.StartTime, 1e-12)

	_, active = c.Active()
	assert.False(t, active)

	assert.Equal(t, 1, rec.GetOperationCount(metrics.OpGestureBegin, metrics.StatusSuccess))
	assert.Equal(t, 1, rec.GetOperationCount(metrics.OpGestureMove, metrics.StatusSuccess))
	assert.Equal(t, 1, rec.GetOperationCount(metrics.OpGestureEnd, metrics.StatusSuccess))
	assert.Len(t, rec.GetDurations(metrics.OpGestureEnd), 1)

	assert.Contains(t, buf.String(), `"msg":"gesture started"`)
	assert.Contains(t, buf.String(), `"state":"moving"`)
	assert.Contains(t, buf.String(), `"msg":"gesture finished"`)
}

func TestControllerOneGestureAtATime(t *testing.T) {
	t.Parallel()

	c, rec, _ := newTestController(t)
	r := testRegion("r1", 2, 4)
	other := testRegion("r2", 10, 1)

	_, err := c.PointerDown(Pointer{Tool: ToolSelect, Point: Point{400, 50}}, r, RegionBox(r, testViewport, 0, 100), testViewport)
	require.NoError(t, err)

	_, err = c.PointerDown(Pointer{Tool: ToolSelect, Point: Point{1050, 50}}, other, RegionBox(other, testViewport, 0, 100), testViewport)
	require.ErrorIs(t, err, ErrGestureActive)
	assert.Equal(t, 1, rec.GetOperationCount(metrics.OpGestureBegin, metrics.StatusRejected))
	assert.Equal(t, 1, rec.GetErrorCount(metrics.OpGestureBegin, "state"))

	g, active := c.Active()
	require.True(t, active)
	assert.Equal(t, "r1", g.RegionID, "first gesture still owns the controller")

	_, err = c.Cancel()
	require.NoError(t, err)

	_, err = c.PointerDown(Pointer{Tool: ToolSelect, Point: Point{1050, 50}}, other, RegionBox(other, testViewport, 0, 100), testViewport)
	require.NoError(t, err)
}

func TestControllerRejectsWithoutGesture(t *testing.T) {
	t.Parallel()

	c, rec, buf := newTestController(t)

	_, err := c.PointerMove(10, nil)
	require.ErrorIs(t, err, ErrNoActiveGesture)
	_, err = c.PointerUp()
	require.ErrorIs(t, err, ErrNoActiveGesture)
	_, err = c.Cancel()
	require.ErrorIs(t, err, ErrNoActiveGesture)

	assert.Equal(t, 1, rec.GetOperationCount(metrics.OpGestureMove, metrics.StatusRejected))
	assert.Equal(t, 1, rec.GetOperationCount(metrics.OpGestureEnd, metrics.StatusRejected))
	assert.Equal(t, 1, rec.GetOperationCount(metrics.OpGestureCancel, metrics.StatusRejected))
	assert.Contains(t, buf.String(), `"level":"WARN"`)
}

func TestControllerSplitAndDuplicateMetrics(t *testing.T) {
	t.Parallel()

	c, rec, _ := newTestController(t)
	r := testRegion("r1", 2, 4)
	box := RegionBox(r, testViewport, 0, 100)

	res, err := c.PointerDown(Pointer{Tool: ToolSplit, Point: Point{300, 50}}, r, box, testViewport)
	require.NoError(t, err)
	assert.Len(t, res.Created, 2)
	_, active := c.Active()
	assert.False(t, active, "split does not start a drag")
	assert.Equal(t, 1, rec.GetOperationCount(metrics.OpSplit, metrics.StatusSuccess))

	_, err = c.PointerDown(Pointer{Tool: ToolSelect, Mods: ModAlt, Point: Point{400, 50}}, r, box, testViewport)
	require.NoError(t, err)
	res, err = c.PointerMove(420, nil)
	require.NoError(t, err)
	require.Len(t, res.Created, 1)
	assert.Equal(t, 1, rec.GetOperationCount(metrics.OpDuplicate, metrics.StatusSuccess))

	g, _ := c.Active()
	assert.Equal(t, res.Created[0].ID, g.RegionID)
}

func TestControllerIntegrityErrorLogsAtError(t *testing.T) {
	t.Parallel()

	c, rec, buf := newTestController(t)
	r := testRegion("r1", 2, 4)
	box := RegionBox(r, testViewport, 0, 100)

	_, err := c.PointerDown(Pointer{Tool: ToolSelect, Mods: ModCtrl, Point: Point{400, 50}}, r, box, testViewport)
	require.NoError(t, err)

	_, err = c.PointerMove(450, nil)
	require.ErrorIs(t, err, region.ErrMissingSource)
	assert.Equal(t, 1, rec.GetErrorCount(metrics.OpGestureMove, "data-integrity"))
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}

func TestControllerConcurrentMoves(t *testing.T) {
	t.Parallel()

	c := NewController(DefaultConfig(), WithLogger(logger.NewDiscardLogger()))
	r := testRegion("r1", 50, 4)
	box := RegionBox(r, testViewport, 0, 100)

	_, err := c.PointerDown(Pointer{Tool: ToolSelect, Point: Point{5200, 50}}, r, box, testViewport)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Go(func() {
			for j := range 50 {
				_, _ = c.PointerMove(float64(5200+i*10+j), nil)
			}
		})
	}
	wg.Wait()

	res, err := c.PointerUp()
	require.NoError(t, err)
	// the final start is whatever the last x implies: deltas telescope
	g := res.Updated
	require.NotNil(t, g)
	assert.GreaterOrEqual(t, g.StartTime, 0.0)
}
