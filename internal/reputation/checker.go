// Package reputation resolves sending IPs against a pre-populated
// flagged list. The analysis core never performs live lookups; callers
// resolve reputation up front and attach the result to the email.
package reputation

import (
	"strings"

	"go.uber.org/zap"
)

// Checker checks sending IPs against a static flagged set.
type Checker struct {
	flagged map[string]struct{}
	logger  *zap.Logger
}

// NewChecker creates a checker over the given flagged IPs. An empty list
// makes the checker inert, which is the expected state when no
// reputation source is configured.
func NewChecker(flaggedIPs []string, logger *zap.Logger) *Checker {
	flagged := make(map[string]struct{}, len(flaggedIPs))
	for _, ip := range flaggedIPs {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			flagged[ip] = struct{}{}
		}
	}

	if len(flagged) > 0 && logger != nil {
		logger.Info("Initialized IP reputation checker", zap.Int("flagged_ips", len(flagged)))
	}

	return &Checker{flagged: flagged, logger: logger}
}

// Flagged returns the subset of ips on the flagged list, preserving
// input order.
func (c *Checker) Flagged(ips []string) []string {
	if len(c.flagged) == 0 {
		return nil
	}

	var hits []string
	for _, ip := range ips {
		if _, ok := c.flagged[ip]; ok {
			hits = append(hits, ip)
		}
	}

	if len(hits) > 0 && c.logger != nil {
		c.logger.Debug("Flagged sending IPs", zap.Strings("ips", hits))
	}
	return hits
}
