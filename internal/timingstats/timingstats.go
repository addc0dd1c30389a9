// Package timingstats is a small harness for the constant-time sanity
// checks spec §9 asks of secret-dependent scalar arithmetic (grounded on
// the teacher's go.mod carrying github.com/montanaflynn/stats as a
// dependency, previously unused by any importable lattigo package in this
// pack — this module gives it its first concrete caller).
//
// This is not a rigorous side-channel certifier: it is a regression guard
// that flags gross timing variance (branchy code, data-dependent loop
// bounds) between two classes of secret input, the way a reviewer would
// eyeball a benchmark before trusting a constant-time claim.
package timingstats

import (
	"time"

	"github.com/montanaflynn/stats"

	"github.com/libtom/tomcrypt/tcerr"
)

// Samples holds wall-clock durations (in nanoseconds) for repeated runs of
// one operation under one input class.
type Samples struct {
	Durations []float64
}

// Measure runs f n times, timing each call individually.
func Measure(n int, f func()) Samples {
	d := make([]float64, n)
	for i := 0; i < n; i++ {
		start := time.Now()
		f()
		d[i] = float64(time.Since(start))
	}
	return Samples{Durations: d}
}

// Mean returns the arithmetic mean duration.
func (s Samples) Mean() (float64, error) {
	m, err := stats.Mean(s.Durations)
	if err != nil {
		return 0, tcerr.New(tcerr.ErrGeneric, "timingstats: computing mean: %w", err)
	}
	return m, nil
}

// StdDev returns the sample standard deviation.
func (s Samples) StdDev() (float64, error) {
	sd, err := stats.StandardDeviation(s.Durations)
	if err != nil {
		return 0, tcerr.New(tcerr.ErrGeneric, "timingstats: computing standard deviation: %w", err)
	}
	return sd, nil
}

// RelativeDifference compares two sample sets' means as a fraction of
// their pooled mean: (|meanA - meanB|) / ((meanA+meanB)/2). A constant-time
// operation run over two different secret-input classes should show a
// small relative difference; a branchy one driven by the secret's bit
// pattern tends to show a much larger one.
func RelativeDifference(a, b Samples) (float64, error) {
	meanA, err := a.Mean()
	if err != nil {
		return 0, err
	}
	meanB, err := b.Mean()
	if err != nil {
		return 0, err
	}
	pooled := (meanA + meanB) / 2
	if pooled == 0 {
		return 0, nil
	}
	diff := meanA - meanB
	if diff < 0 {
		diff = -diff
	}
	return diff / pooled, nil
}
