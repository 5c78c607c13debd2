package core

import (
	"context"
)

// FeatureExtractor turns a parsed email into a feature bag. Extraction
// is a pure function: it never fails and has no side effects.
type FeatureExtractor interface {
	Extract(email *ParsedEmail) *FeatureBag
}

// RuleEngine evaluates the heuristic rule set against a parsed email and
// its feature bag. The returned score is the unclamped sum of all
// triggered rule deltas; findings and links are in rule evaluation order.
type RuleEngine interface {
	Evaluate(email *ParsedEmail, features *FeatureBag) (int, []HeuristicFinding, []string)
}

// Classifier wraps a pre-trained probabilistic model.
//
// Predict returns (nil, nil) when no model artifact is available; callers
// fall back to heuristics alone. A corrupt artifact is an error, never
// silent absence.
type Classifier interface {
	Predict(ctx context.Context, email *ParsedEmail, features *FeatureBag) (*Prediction, error)
}
