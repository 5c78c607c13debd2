// Package parser turns raw .eml files into the ParsedEmail record
// consumed by the analysis core.
package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/emersion/go-message"
	"github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"golang.org/x/text/encoding/charmap"

	"github.com/mikey/phishing-analyzer/internal/core"
)

func init() {
	// Register additional charsets that are commonly used in emails
	charset.RegisterEncoding("windows-1252", charmap.Windows1252)
	charset.RegisterEncoding("iso-8859-1", charmap.ISO8859_1)
	charset.RegisterEncoding("iso-8859-15", charmap.ISO8859_15)
}

// receivedIPPattern matches bracketed IPv4 addresses in Received
// headers, e.g. "from mx.example.com ([203.0.113.5])".
var receivedIPPattern = regexp.MustCompile(`\[([0-9]{1,3}(?:\.[0-9]{1,3}){3})\]`)

// ParseEMLFile parses an .eml file from disk.
func ParseEMLFile(filePath string) (*core.ParsedEmail, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return ParseEML(f)
}

// ParseEML parses an email from a reader. Whole-message parse failures
// are errors; a single part that fails to decode contributes nothing to
// the bodies or attachments rather than aborting the parse.
func ParseEML(r io.Reader) (*core.ParsedEmail, error) {
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, fmt.Errorf("failed to read email: %w", err)
	}

	mr, err := mail.CreateReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("failed to create mail reader: %w", err)
	}

	header := mr.Header
	parsed := &core.ParsedEmail{
		Subject:    header.Get("Subject"),
		Date:       header.Get("Date"),
		ReturnPath: strings.Trim(header.Get("Return-Path"), "<> \t"),
	}

	if fromAddrs, err := header.AddressList("From"); err == nil && len(fromAddrs) > 0 {
		parsed.From = fromAddrs[0].Address
	} else {
		parsed.From = strings.TrimSpace(header.Get("From"))
	}

	if toAddrs, err := header.AddressList("To"); err == nil && len(toAddrs) > 0 {
		addrs := make([]string, 0, len(toAddrs))
		for _, addr := range toAddrs {
			addrs = append(addrs, addr.Address)
		}
		parsed.To = strings.Join(addrs, ", ")
	} else {
		parsed.To = strings.TrimSpace(header.Get("To"))
	}

	parsed.ReceivedIPs = extractReceivedIPs(header)

	var plainParts, htmlParts []string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			if message.IsUnknownCharset(err) || message.IsUnknownEncoding(err) {
				// Undecodable part contributes nothing.
				continue
			}
			break
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			body, err := io.ReadAll(part.Body)
			if err != nil {
				continue
			}
			if strings.HasPrefix(contentType, "text/plain") {
				plainParts = append(plainParts, string(body))
			} else if strings.HasPrefix(contentType, "text/html") {
				htmlParts = append(htmlParts, string(body))
			}

		case *mail.AttachmentHeader:
			filename, _ := h.Filename()
			// Keep the partial read on error; the size still reflects
			// what was decodable.
			data, _ := io.ReadAll(part.Body)
			parsed.Attachments = append(parsed.Attachments, core.Attachment{
				Filename: filename,
				Size:     len(data),
			})
		}
	}

	parsed.PlainBody = strings.TrimSpace(strings.Join(plainParts, "\n"))
	parsed.HTMLBody = strings.TrimSpace(strings.Join(htmlParts, "\n"))
	parsed.Anchors = extractAnchors(parsed.HTMLBody)

	return parsed, nil
}

// extractAnchors pulls <a href> elements out of the HTML body. HTML that
// fails to parse yields no anchors; bare URLs in text are handled by
// feature extraction instead.
func extractAnchors(html string) []core.Anchor {
	if html == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var anchors []core.Anchor
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		anchors = append(anchors, core.Anchor{
			Href: strings.TrimSpace(href),
			Text: strings.TrimSpace(sel.Text()),
		})
	})
	return anchors
}

// extractReceivedIPs collects bracketed dotted-quad addresses from the
// Received header chain, validated, deduplicated and sorted.
func extractReceivedIPs(header mail.Header) []string {
	seen := make(map[string]struct{})
	fields := header.FieldsByKey("Received")
	for fields.Next() {
		for _, match := range receivedIPPattern.FindAllStringSubmatch(fields.Value(), -1) {
			ip := match[1]
			if validIPv4(ip) {
				seen[ip] = struct{}{}
			}
		}
	}
	if len(seen) == 0 {
		return nil
	}

	ips := make([]string, 0, len(seen))
	for ip := range seen {
		ips = append(ips, ip)
	}
	sort.Strings(ips)
	return ips
}

func validIPv4(ip string) bool {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		if len(p) == 0 || len(p) > 3 {
			return false
		}
		n := 0
		for _, c := range p {
			if c < '0' || c > '9' {
				return false
			}
			n = n*10 + int(c-'0')
		}
		if n > 255 {
			return false
		}
	}
	return true
}
