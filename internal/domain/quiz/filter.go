package quiz

import "go.uber.org/zap"

// Step describes the result of a filter run.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Filter normalizes every question and keeps, in order, the ones that can be
// scored. Malformed questions are dropped and logged, never returned as errors.
func Filter(raw []RawQuestion, logger *zap.Logger) ([]Question, Step) {
	if logger == nil {
		logger = zap.NewNop()
	}

	kept := make([]Question, 0, len(raw))
	for i, q := range raw {
		normalized, err := Normalize(q)
		if err != nil {
			logger.Debug("question dropped",
				zap.Int("index", i),
				zap.Int("question_id", q.ID),
				zap.String("type", string(q.Kind)),
				zap.Error(err),
			)
			continue
		}
		kept = append(kept, normalized)
	}

	step := Step{Initial: len(raw), Dropped: len(raw) - len(kept), Left: len(kept)}
	logger.Info("question filter",
		zap.Int("initial", step.Initial),
		zap.Int("dropped", step.Dropped),
		zap.Int("left", step.Left),
	)
	return kept, step
}

// Refilter runs already normalized questions through the filter again.
func Refilter(questions []Question, logger *zap.Logger) ([]Question, Step) {
	raw := make([]RawQuestion, len(questions))
	for i, q := range questions {
		raw[i] = q.Raw()
	}
	return Filter(raw, logger)
}
