package reputation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestChecker_EmptyListIsInert(t *testing.T) {
	checker := NewChecker(nil, zap.NewNop())

	assert.Nil(t, checker.Flagged([]string{"203.0.113.5", "198.51.100.7"}))
}

func TestChecker_FlagsKnownIPs(t *testing.T) {
	checker := NewChecker([]string{"203.0.113.5", "192.0.2.1"}, zap.NewNop())

	hits := checker.Flagged([]string{"198.51.100.7", "203.0.113.5"})

	assert.Equal(t, []string{"203.0.113.5"}, hits)
}

func TestChecker_PreservesInputOrder(t *testing.T) {
	checker := NewChecker([]string{"192.0.2.1", "203.0.113.5"}, zap.NewNop())

	hits := checker.Flagged([]string{"203.0.113.5", "198.51.100.7", "192.0.2.1"})

	assert.Equal(t, []string{"203.0.113.5", "192.0.2.1"}, hits)
}

func TestChecker_NoMatches(t *testing.T) {
	checker := NewChecker([]string{"192.0.2.1"}, zap.NewNop())

	assert.Nil(t, checker.Flagged([]string{"203.0.113.5"}))
	assert.Nil(t, checker.Flagged(nil))
}

func TestChecker_TrimsAndSkipsBlankEntries(t *testing.T) {
	checker := NewChecker([]string{"  203.0.113.5 ", "", "   "}, zap.NewNop())

	hits := checker.Flagged([]string{"203.0.113.5"})

	assert.Equal(t, []string{"203.0.113.5"}, hits)
}

func TestChecker_NilLogger(t *testing.T) {
	checker := NewChecker([]string{"203.0.113.5"}, nil)

	assert.Equal(t, []string{"203.0.113.5"}, checker.Flagged([]string{"203.0.113.5"}))
}
