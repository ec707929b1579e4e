package animate

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/rbfrig/internal/logger"
)

// Stats holds run timings.
type Stats struct {
	Precompute time.Duration // Correspondence and distance table
	Frames     int
	Solve      time.Duration // Total across frames
	Apply      time.Duration // Total time spent in the sink
}

func (s *Stats) add(solve, apply time.Duration) {
	s.Frames++
	s.Solve += solve
	s.Apply += apply
}

// AverageFrame returns the mean solve plus apply time per frame.
func (s Stats) AverageFrame() time.Duration {
	if s.Frames == 0 {
		return 0
	}
	return (s.Solve + s.Apply) / time.Duration(s.Frames)
}

// AverageApply returns the mean apply time per frame.
func (s Stats) AverageApply() time.Duration {
	if s.Frames == 0 {
		return 0
	}
	return s.Apply / time.Duration(s.Frames)
}

// Log writes the timing report.
func (s Stats) Log() {
	logger.Info("deformation finished",
		zap.Duration("precompute", s.Precompute),
		zap.Int("frames", s.Frames),
		zap.Duration("avg_frame", s.AverageFrame()),
		zap.Duration("avg_apply", s.AverageApply()))
}
