// Package classifier adapts an exported logistic-regression artifact to
// the core Classifier port.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mikey/phishing-analyzer/internal/core"
)

const defaultLabelThreshold = 0.5

var wordPattern = regexp.MustCompile(`[a-z0-9']+`)

// modelArtifact is the on-disk model: a logistic regression over the
// four numeric features plus a bag-of-words term weighting, exported
// from the training pipeline as JSON.
type modelArtifact struct {
	Algorithm   string             `json:"algorithm"`
	Bias        float64            `json:"bias"`
	Weights     modelWeights       `json:"weights"`
	TermWeights map[string]float64 `json:"term_weights"`
}

type modelWeights struct {
	EmailLength        float64 `json:"email_length"`
	NumLinks           float64 `json:"num_links"`
	NumSuspiciousWords float64 `json:"num_suspicious_words"`
	NumAttachments     float64 `json:"num_attachments"`
}

// modelMeta is the optional sidecar metadata record.
type modelMeta struct {
	LabelThreshold float64 `json:"label_threshold"`
}

// Adapter loads a model artifact lazily on first use and serves
// predictions from the immutable loaded model thereafter. A missing
// artifact is absence, not an error: Predict returns (nil, nil) and
// callers fall back to heuristics. A corrupt artifact is an error on
// every call, since it indicates misconfiguration rather than an
// expected absence.
type Adapter struct {
	modelPath string
	metaPath  string
	logger    *zap.Logger

	once      sync.Once
	model     *modelArtifact
	threshold float64
	loadErr   error
}

// NewAdapter creates a classifier adapter for the given artifact path.
// The meta path may be empty.
func NewAdapter(modelPath, metaPath string, logger *zap.Logger) *Adapter {
	return &Adapter{
		modelPath: modelPath,
		metaPath:  metaPath,
		logger:    logger,
	}
}

// Predict returns the probability of the malicious class for one email,
// (nil, nil) when no model artifact exists, or an error when the
// artifact is corrupt.
func (a *Adapter) Predict(_ context.Context, email *core.ParsedEmail, features *core.FeatureBag) (*core.Prediction, error) {
	a.once.Do(a.load)

	if a.loadErr != nil {
		return nil, a.loadErr
	}
	if a.model == nil {
		return nil, nil
	}

	z := a.model.Bias
	z += a.model.Weights.EmailLength * float64(features.EmailLength)
	z += a.model.Weights.NumLinks * float64(features.NumLinks)
	z += a.model.Weights.NumSuspiciousWords * float64(features.NumSuspiciousWords)
	z += a.model.Weights.NumAttachments * float64(features.NumAttachments)

	// Inference text row matches training: subject plus body.
	text := strings.ToLower(email.Subject + " " + email.PlainBody + " " + email.HTMLBody)
	for _, token := range wordPattern.FindAllString(text, -1) {
		if w, ok := a.model.TermWeights[token]; ok {
			z += w
		}
	}

	probability := 1.0 / (1.0 + math.Exp(-z))
	return &core.Prediction{
		Probability: probability,
		Label:       probability >= a.threshold,
	}, nil
}

// load reads the artifact once. On any failure the adapter keeps no
// partial model state: either a.model is a fully decoded artifact or it
// stays nil.
func (a *Adapter) load() {
	a.threshold = defaultLabelThreshold

	data, err := os.ReadFile(a.modelPath)
	if os.IsNotExist(err) {
		a.logger.Warn("Model artifact not found, heuristics-only analysis",
			zap.String("path", a.modelPath))
		return
	}
	if err != nil {
		a.loadErr = fmt.Errorf("failed to read model artifact %s: %w", a.modelPath, err)
		return
	}

	var model modelArtifact
	if err := json.Unmarshal(data, &model); err != nil {
		a.loadErr = fmt.Errorf("corrupt model artifact %s: %w", a.modelPath, err)
		return
	}
	if model.Algorithm != "" && model.Algorithm != "logistic_regression" {
		a.loadErr = fmt.Errorf("corrupt model artifact %s: unsupported algorithm %q", a.modelPath, model.Algorithm)
		return
	}

	a.threshold = a.loadMeta()
	a.model = &model
	a.logger.Info("Loaded model artifact",
		zap.String("path", a.modelPath),
		zap.Int("terms", len(model.TermWeights)),
		zap.Float64("label_threshold", a.threshold))
}

// loadMeta returns the configured label threshold, falling back to the
// default when the sidecar is missing or unreadable.
func (a *Adapter) loadMeta() float64 {
	if a.metaPath == "" {
		return defaultLabelThreshold
	}
	data, err := os.ReadFile(a.metaPath)
	if err != nil {
		return defaultLabelThreshold
	}
	var meta modelMeta
	if err := json.Unmarshal(data, &meta); err != nil || meta.LabelThreshold <= 0 {
		return defaultLabelThreshold
	}
	return meta.LabelThreshold
}
