package proxy

import "strconv"

// Quality buckets a latency sample.
type Quality int

const (
	Fast Quality = iota
	Medium
	Slow
	NotConnected
	qualityCount
)

func (q Quality) String() string {
	switch q {
	case Fast:
		return "fast"
	case Medium:
		return "medium"
	case Slow:
		return "slow"
	case NotConnected:
		return "not connected"
	default:
		return "unknown"
	}
}

// Threshold splits delays into Fast (< Good), Medium (< Bad) and Slow.
type Threshold struct {
	Good int64
	Bad  int64
}

// DefaultThreshold is used until the user changes it.
var DefaultThreshold = Threshold{Good: 500, Bad: 1000}

// Latency is an optional delay in milliseconds.
type Latency struct {
	Delay int64
	Known bool
}

// Connected reports whether the sample is a real, positive delay.
func (l Latency) Connected() bool {
	return l.Known && l.Delay > 0
}

func (l Latency) String() string {
	if !l.Connected() {
		return "-"
	}
	return strconv.FormatInt(l.Delay, 10)
}

// Classify buckets l using t. Missing or non-positive samples are
// NotConnected.
func Classify(l Latency, t Threshold) Quality {
	switch {
	case !l.Connected():
		return NotConnected
	case l.Delay < t.Good:
		return Fast
	case l.Delay < t.Bad:
		return Medium
	default:
		return Slow
	}
}

// Histogram counts samples per Quality, indexed by the Quality value.
type Histogram [qualityCount]int

// Add tallies one sample.
func (h *Histogram) Add(q Quality) {
	if q >= 0 && q < qualityCount {
		h[q]++
	}
}

// Total is the number of tallied samples.
func (h Histogram) Total() int {
	n := 0
	for _, c := range h {
		n += c
	}
	return n
}
