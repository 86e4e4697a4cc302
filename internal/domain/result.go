package domain

import "math"

// RetCode classifies the outcome of evaluating a design point.
type RetCode int

const (
	RetUnavailable RetCode = iota
	RetValid
	RetAnalyzeError
	RetTimeout
	RetEarlyReject
	// RetDuplicated marks a result whose generated artifact matched a
	// previously seen content hash. Duplicated results stay queryable but are
	// excluded from best-tracking and from the code hash index.
	RetDuplicated
)

// Result represents the outcome of evaluating a single design point. The
// store only inspects Key, Quality, RetCode and ContentHash; the remaining
// fields ride along through serialization untouched.
type Result struct {
	Key         string      `json:"key" db:"key"`
	Quality     float64     `json:"quality" db:"quality"`
	Perf        float64     `json:"perf"`
	RetCode     RetCode     `json:"ret_code"`
	Valid       bool        `json:"valid"`
	ContentHash string      `json:"content_hash,omitempty"`
	Point       DesignPoint `json:"point,omitempty"`
	EvalTimeSec float64     `json:"eval_time_sec"`
}

// NewResult returns an unscored result for the given design-point key.
// Quality defaults to the worst representable score so unscored results sink
// to the bottom of the best cache if they ever reach it.
func NewResult(key string) *Result {
	return &Result{
		Key:     key,
		Quality: math.MaxFloat64,
		RetCode: RetUnavailable,
	}
}
