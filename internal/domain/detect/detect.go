// Package detect holds the per-game detection models. Each model maps a
// feature vector to an independent 0-1 verdict with a human-readable
// rationale; the ensemble layer combines them.
package detect

import "github.com/chessguard/chessguard/internal/domain/model"

// Model scores one feature vector. Implementations must be safe for
// concurrent use and tolerate vectors with missing (nil) features.
type Model interface {
	Name() string
	Predict(fv *model.FeatureVector) model.Verdict
}
