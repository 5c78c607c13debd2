package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/phishing-analyzer/internal/core"
	"github.com/mikey/phishing-analyzer/internal/features"
	"github.com/mikey/phishing-analyzer/internal/heuristics"
)

// stubClassifier returns a fixed prediction (or its absence, or an
// error) regardless of input.
type stubClassifier struct {
	prediction *core.Prediction
	err        error
}

func (s *stubClassifier) Predict(_ context.Context, _ *core.ParsedEmail, _ *core.FeatureBag) (*core.Prediction, error) {
	return s.prediction, s.err
}

func newService(classifier core.Classifier) *core.AnalyzerService {
	return core.NewAnalyzerService(
		features.NewExtractor(features.DefaultConfig()),
		heuristics.NewEngine(heuristics.DefaultConfig(), nil),
		classifier,
		core.DefaultVerdictThresholds,
		zap.NewNop(),
	)
}

// phishingEmail returns an email that trips five heuristic rules for a
// raw score of 110.
func phishingEmail() *core.ParsedEmail {
	return &core.ParsedEmail{
		From:       "attacker@phish.xyz",
		ReturnPath: "attacker@other.com",
		Subject:    "Urgent: verify your account",
		Anchors: []core.Anchor{
			{Href: "http://evil.ru/login", Text: "mybank.com"},
		},
	}
}

func TestAnalyze_NoClassifierCleanEmail(t *testing.T) {
	result, err := newService(nil).Analyze(context.Background(), &core.ParsedEmail{
		From:      "alice@example.com",
		To:        "bob@example.com",
		Subject:   "Lunch tomorrow?",
		PlainBody: "See you at noon.",
	})

	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, core.VerdictSafe, result.Verdict)
	assert.Empty(t, result.Reasons)
	assert.Empty(t, result.SuspiciousWords)
	assert.Empty(t, result.SuspiciousLinks)
}

func TestAnalyze_HeuristicScoreClampedTo100(t *testing.T) {
	result, err := newService(nil).Analyze(context.Background(), phishingEmail())

	require.NoError(t, err)
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, core.VerdictMalicious, result.Verdict)
	assert.Len(t, result.Reasons, 5)
	assert.Equal(t, []string{"urgent", "verify"}, result.SuspiciousWords)
	assert.Equal(t, []string{"http://evil.ru/login"}, result.SuspiciousLinks)
}

func TestAnalyze_ClassifierScoreReplacesHeuristicScore(t *testing.T) {
	// Heuristics alone would score this at 100; a confident-safe
	// classifier must win outright, not blend.
	svc := newService(&stubClassifier{prediction: &core.Prediction{Probability: 0.1}})

	result, err := svc.Analyze(context.Background(), phishingEmail())

	require.NoError(t, err)
	assert.Equal(t, 10, result.Score)
	assert.Equal(t, core.VerdictSafe, result.Verdict)
}

func TestAnalyze_ClassifierContributesNoReason(t *testing.T) {
	svc := newService(&stubClassifier{prediction: &core.Prediction{Probability: 0.99}})

	result, err := svc.Analyze(context.Background(), phishingEmail())

	require.NoError(t, err)
	assert.Equal(t, 99, result.Score)
	// Reasons are the heuristic findings only; the classifier adds
	// score but no textual reason.
	assert.Len(t, result.Reasons, 5)
	for _, reason := range result.Reasons {
		assert.NotContains(t, reason, "classifier")
		assert.NotContains(t, reason, "model")
	}
}

func TestAnalyze_ClassifierProbabilityRounding(t *testing.T) {
	tests := []struct {
		probability float64
		wantScore   int
	}{
		{0.0, 0},
		{0.004, 0},
		{0.005, 1},
		{0.675, 68},
		{0.999, 100},
		{1.0, 100},
	}

	for _, tt := range tests {
		svc := newService(&stubClassifier{prediction: &core.Prediction{Probability: tt.probability}})
		result, err := svc.Analyze(context.Background(), &core.ParsedEmail{})
		require.NoError(t, err)
		assert.Equal(t, tt.wantScore, result.Score, "probability %v", tt.probability)
	}
}

func TestAnalyze_ClassifierAbsenceFallsBackToHeuristics(t *testing.T) {
	// A configured adapter with no artifact on disk reports absence;
	// the heuristic score must carry the result.
	svc := newService(&stubClassifier{prediction: nil})

	result, err := svc.Analyze(context.Background(), phishingEmail())

	require.NoError(t, err)
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, core.VerdictMalicious, result.Verdict)
}

func TestAnalyze_ClassifierErrorIsSurfaced(t *testing.T) {
	svc := newService(&stubClassifier{err: errors.New("corrupt model artifact")})

	result, err := svc.Analyze(context.Background(), phishingEmail())

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestAnalyze_Deterministic(t *testing.T) {
	svc := newService(nil)
	email := phishingEmail()

	first, err := svc.Analyze(context.Background(), email)
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), email)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestVerdictForScore_Bands(t *testing.T) {
	tests := []struct {
		score int
		want  core.Verdict
	}{
		{0, core.VerdictSafe},
		{29, core.VerdictSafe},
		{30, core.VerdictSuspicious},
		{69, core.VerdictSuspicious},
		{70, core.VerdictMalicious},
		{100, core.VerdictMalicious},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, core.DefaultVerdictThresholds.VerdictForScore(tt.score), "score %d", tt.score)
	}
}

func TestVerdictForScore_MonotonicOverFullRange(t *testing.T) {
	rank := map[core.Verdict]int{
		core.VerdictSafe:       0,
		core.VerdictSuspicious: 1,
		core.VerdictMalicious:  2,
	}

	prev := core.VerdictSafe
	for score := 0; score <= 100; score++ {
		verdict := core.DefaultVerdictThresholds.VerdictForScore(score)
		assert.GreaterOrEqual(t, rank[verdict], rank[prev], "score %d", score)
		prev = verdict
	}
}
