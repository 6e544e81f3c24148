package metrics

// Operation names used as metric labels.
const (
	OpSplit        = "split"
	OpDuplicate    = "duplicate"
	OpRippleDelete = "ripple_delete"
	OpCrossfades   = "crossfades"
	OpBatch        = "batch"
	OpCommit       = "commit"
	OpLoad         = "load"
	OpProbe        = "probe"

	// Gesture phases.
	OpGestureBegin  = "gesture_begin"
	OpGestureMove   = "gesture_move"
	OpGestureEnd    = "gesture_end"
	OpGestureCancel = "gesture_cancel"
)

// Status label values.
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusRejected = "rejected"
)

// Cache result label values.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Histogram bucket configuration: 10 µs up to roughly 5 s.
const (
	BucketStart10us = 0.00001
	BucketFactor2   = 2
	BucketCount20   = 20
)
