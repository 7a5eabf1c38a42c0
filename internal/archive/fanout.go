package archive

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/park285/cheese-match/internal/domain"
)

type namedRecorder struct {
	name string
	rec  Recorder
}

// Fanout forwards every record to each sink. One failing sink does not stop
// the others; all failures are joined.
type Fanout struct {
	sinks  []namedRecorder
	logger *zap.Logger
}

func NewFanout(logger *zap.Logger) *Fanout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fanout{logger: logger}
}

// Add registers a sink. Nil recorders are ignored.
func (f *Fanout) Add(name string, rec Recorder) *Fanout {
	if rec != nil {
		f.sinks = append(f.sinks, namedRecorder{name: name, rec: rec})
	}
	return f
}

func (f *Fanout) Len() int { return len(f.sinks) }

func (f *Fanout) Record(ctx context.Context, rec *domain.MatchRecord) error {
	if err := validate(rec); err != nil {
		return err
	}
	var errs []error
	for _, s := range f.sinks {
		err := s.rec.Record(ctx, rec)
		switch {
		case err == nil:
			f.logger.Debug("match_recorded", zap.String("sink", s.name), zap.String("match_id", rec.MatchID))
		case errors.Is(err, ErrDuplicateMatch):
			f.logger.Info("match_record_duplicate", zap.String("sink", s.name), zap.String("match_id", rec.MatchID))
		default:
			f.logger.Warn("match_record_sink_failed", zap.String("sink", s.name), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
