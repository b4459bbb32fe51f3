package internaldefs

import (
	"github.com/MrEthical07/cookiejwt"
)

// CounterDef names one counter.
type CounterDef struct {
	ID   cookiejwt.MetricID
	Name string
	Help string
}

// HistogramDef names one latency histogram.
type HistogramDef struct {
	ID   cookiejwt.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: cookiejwt.MetricSessionLoaded, Name: "cookiejwt_session_loaded_total", Help: "Session cookies decoded into a session."},
	{ID: cookiejwt.MetricSessionAbsent, Name: "cookiejwt_session_absent_total", Help: "Requests without the session cookie."},
	{ID: cookiejwt.MetricSessionRejected, Name: "cookiejwt_session_rejected_total", Help: "Session cookies that failed to decode."},
	{ID: cookiejwt.MetricSessionCommitted, Name: "cookiejwt_session_committed_total", Help: "Set-Cookie values produced by commits."},
	{ID: cookiejwt.MetricSessionCommitOversize, Name: "cookiejwt_session_commit_oversize_total", Help: "Commits refused for exceeding the cookie size limit."},
	{ID: cookiejwt.MetricSessionCommitFailed, Name: "cookiejwt_session_commit_failed_total", Help: "Commits that failed to encode or serialize."},
	{ID: cookiejwt.MetricSessionDestroyed, Name: "cookiejwt_session_destroyed_total", Help: "Session destroy operations."},
}

// HistogramDefs lists the latency histograms.
var HistogramDefs = []HistogramDef{
	{ID: cookiejwt.MetricDecodeLatency, Name: "cookiejwt_decode_latency_seconds", Help: "Session token decode latency."},
	{ID: cookiejwt.MetricEncodeLatency, Name: "cookiejwt_encode_latency_seconds", Help: "Session token encode latency."},
}

// AuditDroppedName is the counter for audit events dropped under backpressure.
const (
	AuditDroppedName = "cookiejwt_audit_dropped_total"
	AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
)

// HistogramBounds are the bucket upper bounds in seconds, as exposition labels.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix renders HistogramBounds for use inside instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling short input.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}

// UpperBounds are the finite bucket bounds in seconds, matching HistogramBounds
// without +Inf.
var UpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}
