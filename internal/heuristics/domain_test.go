package heuristics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"email address", "alice@Example.COM", "example.com"},
		{"address with plus tag", "alice+tag@mail.example.org", "mail.example.org"},
		{"last at sign wins", `"weird@local"@real.example.com`, "real.example.com"},
		{"http url", "http://Evil.RU/login", "evil.ru"},
		{"https url with port", "https://example.com:8443/path", "example.com"},
		{"bare hostname", "MyBank.com", "mybank.com"},
		{"hostname with path", "mybank.com/login", "mybank.com"},
		{"plain word", "localhost", "localhost"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractDomain(tt.input))
		})
	}
}
