// Package bytes formats byte counts, rates and timestamps for table cells.
package bytes

import (
	"time"

	"github.com/dustin/go-humanize"
)

// Size renders n with binary units, e.g. "1.5 KiB".
func Size(n uint64) string {
	return humanize.IBytes(n)
}

// Rate renders a per-second byte count.
func Rate(n uint64) string {
	return humanize.IBytes(n) + "/s"
}

// Ago renders t relative to now. The zero time renders as "-".
func Ago(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

// Percent renders a usage ratio with one decimal.
func Percent(p float64) string {
	return humanize.FtoaWithDigits(p, 1) + "%"
}
