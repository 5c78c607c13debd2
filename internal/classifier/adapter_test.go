package classifier

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/phishing-analyzer/internal/core"
)

func writeArtifact(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPredict_MissingArtifactIsAbsenceNotError(t *testing.T) {
	a := NewAdapter(filepath.Join(t.TempDir(), "missing.json"), "", zap.NewNop())

	prediction, err := a.Predict(context.Background(), &core.ParsedEmail{}, &core.FeatureBag{})

	assert.NoError(t, err)
	assert.Nil(t, prediction)
}

func TestPredict_CorruptArtifactIsFatal(t *testing.T) {
	path := writeArtifact(t, t.TempDir(), "model.json", "{not json")
	a := NewAdapter(path, "", zap.NewNop())

	prediction, err := a.Predict(context.Background(), &core.ParsedEmail{}, &core.FeatureBag{})

	assert.Error(t, err)
	assert.Nil(t, prediction)
	assert.Contains(t, err.Error(), "corrupt model artifact")

	// The failure is sticky: every call surfaces it, never absence.
	_, err2 := a.Predict(context.Background(), &core.ParsedEmail{}, &core.FeatureBag{})
	assert.Error(t, err2)
}

func TestPredict_UnsupportedAlgorithmIsFatal(t *testing.T) {
	path := writeArtifact(t, t.TempDir(), "model.json", `{"algorithm":"gradient_boosting","bias":0}`)
	a := NewAdapter(path, "", zap.NewNop())

	_, err := a.Predict(context.Background(), &core.ParsedEmail{}, &core.FeatureBag{})

	assert.Error(t, err)
}

func TestPredict_BiasOnlyModel(t *testing.T) {
	// Zero bias and no weights puts the logistic function at exactly 0.5.
	path := writeArtifact(t, t.TempDir(), "model.json", `{"algorithm":"logistic_regression","bias":0}`)
	a := NewAdapter(path, "", zap.NewNop())

	prediction, err := a.Predict(context.Background(), &core.ParsedEmail{}, &core.FeatureBag{})

	require.NoError(t, err)
	require.NotNil(t, prediction)
	assert.InDelta(t, 0.5, prediction.Probability, 1e-9)
	assert.True(t, prediction.Label)
}

func TestPredict_NumericFeatureWeights(t *testing.T) {
	path := writeArtifact(t, t.TempDir(), "model.json", `{
		"algorithm": "logistic_regression",
		"bias": -1.0,
		"weights": {"email_length": 0.0, "num_links": 0.5, "num_suspicious_words": 1.0, "num_attachments": 0.0}
	}`)
	a := NewAdapter(path, "", zap.NewNop())

	prediction, err := a.Predict(context.Background(), &core.ParsedEmail{}, &core.FeatureBag{
		NumLinks:           2,
		NumSuspiciousWords: 3,
	})

	require.NoError(t, err)
	require.NotNil(t, prediction)

	// z = -1.0 + 2*0.5 + 3*1.0 = 3.0
	want := 1.0 / (1.0 + math.Exp(-3.0))
	assert.InDelta(t, want, prediction.Probability, 1e-9)
}

func TestPredict_TermWeightsOverSubjectAndBody(t *testing.T) {
	path := writeArtifact(t, t.TempDir(), "model.json", `{
		"algorithm": "logistic_regression",
		"bias": 0,
		"term_weights": {"verify": 2.0, "urgent": 1.0}
	}`)
	a := NewAdapter(path, "", zap.NewNop())

	prediction, err := a.Predict(context.Background(), &core.ParsedEmail{
		Subject:   "Urgent notice",
		PlainBody: "Please verify. Then verify again.",
	}, &core.FeatureBag{})

	require.NoError(t, err)
	require.NotNil(t, prediction)

	// urgent once, verify twice: z = 1.0 + 2*2.0 = 5.0
	want := 1.0 / (1.0 + math.Exp(-5.0))
	assert.InDelta(t, want, prediction.Probability, 1e-9)
}

func TestPredict_MetaThresholdControlsLabelOnly(t *testing.T) {
	dir := t.TempDir()
	modelPath := writeArtifact(t, dir, "model.json", `{"algorithm":"logistic_regression","bias":0}`)
	metaPath := writeArtifact(t, dir, "model_meta.json", `{"label_threshold": 0.9}`)
	a := NewAdapter(modelPath, metaPath, zap.NewNop())

	prediction, err := a.Predict(context.Background(), &core.ParsedEmail{}, &core.FeatureBag{})

	require.NoError(t, err)
	require.NotNil(t, prediction)
	assert.InDelta(t, 0.5, prediction.Probability, 1e-9)
	assert.False(t, prediction.Label)
}

func TestPredict_MissingMetaFallsBackToDefaultThreshold(t *testing.T) {
	dir := t.TempDir()
	modelPath := writeArtifact(t, dir, "model.json", `{"algorithm":"logistic_regression","bias":1}`)
	a := NewAdapter(modelPath, filepath.Join(dir, "no-meta.json"), zap.NewNop())

	prediction, err := a.Predict(context.Background(), &core.ParsedEmail{}, &core.FeatureBag{})

	require.NoError(t, err)
	require.NotNil(t, prediction)
	assert.True(t, prediction.Label)
}

func TestPredict_Deterministic(t *testing.T) {
	path := writeArtifact(t, t.TempDir(), "model.json", `{
		"algorithm": "logistic_regression",
		"bias": -0.3,
		"weights": {"email_length": 0.001, "num_links": 0.2, "num_suspicious_words": 0.4, "num_attachments": 0.1},
		"term_weights": {"bank": 0.7}
	}`)
	a := NewAdapter(path, "", zap.NewNop())

	email := &core.ParsedEmail{Subject: "Bank notice", PlainBody: "your bank account"}
	bag := &core.FeatureBag{EmailLength: 29, NumLinks: 1, NumSuspiciousWords: 2}

	first, err := a.Predict(context.Background(), email, bag)
	require.NoError(t, err)
	second, err := a.Predict(context.Background(), email, bag)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
