package detect

import (
	"log/slog"

	"github.com/chazu/jointscan/pkg/geom"
)

// Options configures a Detector.
type Options struct {
	// Tolerance is used by every geometric comparison. Zero or negative
	// means geom.Epsilon.
	Tolerance float64

	// Workers is the number of goroutines classifying pairs. Values below 2
	// run the sweep on the calling goroutine. Results are identical either
	// way.
	Workers int

	// Logger overrides the package logger for this detector.
	Logger *slog.Logger

	// OnPair, when set, is called once per pair in sweep order after all
	// pairs have been classified.
	OnPair func(PairEvent)
}

// DefaultOptions returns sequential detection at geom.Epsilon.
func DefaultOptions() Options {
	return Options{Tolerance: geom.Epsilon, Workers: 1}
}

func (o Options) normalized() Options {
	if o.Tolerance <= 0 {
		o.Tolerance = geom.Epsilon
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.Logger == nil {
		o.Logger = Logger()
	}
	return o
}
