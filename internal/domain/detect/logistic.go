package detect

import (
	"fmt"
	"math"
	"sort"

	"github.com/chessguard/chessguard/internal/domain/model"
)

// LogisticModel is a logistic regression over named features with
// per-feature contribution reporting. Missing features contribute zero.
type LogisticModel struct {
	weights map[string]float64
	bias    float64
}

// NewLogisticModel builds the model with pre-fit coefficients. Positive
// weights push toward assistance, negative weights toward human play.
func NewLogisticModel() *LogisticModel {
	return &LogisticModel{
		weights: map[string]float64{
			"adjusted_engine_agreement": 3.2,
			"engine_agreement":          1.6,
			"timing_suspicion":          2.4,
			"sniper_gap":                1.8,
			"streak_improbability":      1.5,
			"burstiness":                0.8,
			"mean_centipawn_loss":       -0.04,
			"time_entropy":              -1.2,
			"time_cv":                   -0.8,
			"complexity_correlation":    -1.0,
		},
		bias: -3.0,
	}
}

func (m *LogisticModel) Name() string { return "logistic" }

// Predict evaluates the regression and reports the strongest positive and
// negative contributions in the rationale.
func (m *LogisticModel) Predict(fv *model.FeatureVector) model.Verdict {
	type contribution struct {
		name  string
		value float64
	}

	total := m.bias
	var contribs []contribution
	for name, weight := range m.weights {
		v, ok := fv.Named(name)
		if !ok {
			continue
		}
		c := weight * v
		total += c
		contribs = append(contribs, contribution{name, c})
	}

	sort.Slice(contribs, func(i, j int) bool {
		if contribs[i].value != contribs[j].value {
			return contribs[i].value > contribs[j].value
		}
		return contribs[i].name < contribs[j].name
	})

	var rationale []string
	positives, negatives := 0, 0
	for _, c := range contribs {
		if c.value > 0 && positives < 3 {
			rationale = append(rationale, fmt.Sprintf("%s contributes +%.2f", c.name, c.value))
			positives++
		}
	}
	for i := len(contribs) - 1; i >= 0; i-- {
		if contribs[i].value < 0 && negatives < 2 {
			rationale = append(rationale, fmt.Sprintf("%s contributes %.2f", contribs[i].name, contribs[i].value))
			negatives++
		}
	}
	if len(rationale) == 0 {
		rationale = append(rationale, "no significant feature contributions")
	}

	return model.Verdict{
		Model:     m.Name(),
		Score:     sigmoid(total),
		Rationale: rationale,
	}
}

// Sample is one labeled training example: named feature values and a label
// of 1 (assisted) or 0 (clean).
type Sample struct {
	Features map[string]float64
	Label    float64
}

// Fit runs batch gradient descent over the samples, growing the weight set
// to cover every feature seen. A no-op on an empty set.
func (m *LogisticModel) Fit(samples []Sample, epochs int, learningRate float64) {
	if len(samples) == 0 {
		return
	}
	for _, s := range samples {
		for name := range s.Features {
			if _, ok := m.weights[name]; !ok {
				m.weights[name] = 0
			}
		}
	}

	n := float64(len(samples))
	for epoch := 0; epoch < epochs; epoch++ {
		gradBias := 0.0
		gradW := make(map[string]float64, len(m.weights))

		for _, s := range samples {
			linear := m.bias
			for name, w := range m.weights {
				linear += w * s.Features[name]
			}
			err := sigmoid(linear) - s.Label
			gradBias += err
			for name := range m.weights {
				gradW[name] += err * s.Features[name]
			}
		}

		m.bias -= learningRate * gradBias / n
		for name := range m.weights {
			m.weights[name] -= learningRate * gradW[name] / n
		}
	}
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
