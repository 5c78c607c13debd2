package heuristics

import (
	"net/url"
	"strings"
)

// ExtractDomain returns the lowercased domain of an email address, URL
// or bare hostname.
//
// Strings containing "@" are treated as addresses and the part after the
// last "@" is returned. Anything else goes through URL-host parsing, with
// an implied http scheme as a second attempt for bare hosts. Inputs that
// still yield no host come back lowercased unchanged; empty input yields
// empty output.
func ExtractDomain(s string) string {
	if s == "" {
		return ""
	}
	if i := strings.LastIndex(s, "@"); i >= 0 {
		return strings.ToLower(s[i+1:])
	}
	if u, err := url.Parse(s); err == nil && u.Host != "" {
		return strings.ToLower(u.Hostname())
	}
	if u, err := url.Parse("http://" + s); err == nil && u.Host != "" {
		return strings.ToLower(u.Hostname())
	}
	return strings.ToLower(s)
}
