package ensemble

// Option configures a Scorer.
type Option func(*Scorer)

// WithThresholds overrides the risk tier bounds. Ignored unless strictly
// decreasing within (0,1].
func WithThresholds(t Thresholds) Option {
	return func(s *Scorer) {
		if t.Critical > t.High && t.High > t.Moderate && t.Moderate > 0 && t.Critical <= 1 {
			s.thresholds = t
		}
	}
}

// WithModelWeight sets the combination weight for one model's verdicts.
func WithModelWeight(name string, weight float64) Option {
	return func(s *Scorer) {
		if weight >= 0 {
			s.modelWeights[name] = weight
		}
	}
}

// WithDefaultWeight sets the weight for models without an explicit one.
func WithDefaultWeight(weight float64) Option {
	return func(s *Scorer) {
		if weight > 0 {
			s.defaultWeight = weight
		}
	}
}
