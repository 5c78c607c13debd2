package filter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mikey/phishing-analyzer/internal/core"
	"github.com/mikey/phishing-analyzer/internal/parser"
	"github.com/mikey/phishing-analyzer/internal/reputation"
)

// SMTPFilter implements a Postfix after-queue content filter that tags
// each message with the analysis verdict before re-injecting it.
type SMTPFilter struct {
	service        *core.AnalyzerService
	reputation     *reputation.Checker
	logger         *zap.Logger
	listenAddr     string
	server         *smtp.Server
	blockMalicious bool
	verdictHeader  string
	scoreHeader    string
	reasonHeader   string
	postfixAddr    string
	postfixPort    int
	postfixEnabled bool
	subjectPrefix  string
	modifySubject  bool
}

// NewSMTPFilter creates a new SMTP content filter
func NewSMTPFilter(
	service *core.AnalyzerService,
	reputation *reputation.Checker,
	logger *zap.Logger,
	listenAddr string,
	blockMalicious bool,
	verdictHeader string,
	scoreHeader string,
	reasonHeader string,
	postfixAddr string,
	postfixPort int,
	postfixEnabled bool,
	subjectPrefix string,
	modifySubject bool,
) *SMTPFilter {
	if subjectPrefix == "" && modifySubject {
		subjectPrefix = "[**PHISHING**] "
	}

	return &SMTPFilter{
		service:        service,
		reputation:     reputation,
		logger:         logger,
		listenAddr:     listenAddr,
		blockMalicious: blockMalicious,
		verdictHeader:  verdictHeader,
		scoreHeader:    scoreHeader,
		reasonHeader:   reasonHeader,
		postfixAddr:    postfixAddr,
		postfixPort:    postfixPort,
		postfixEnabled: postfixEnabled,
		subjectPrefix:  subjectPrefix,
		modifySubject:  modifySubject,
	}
}

// Start starts the SMTP filter service
func (f *SMTPFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.listenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("SMTP filter starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP filter service
func (f *SMTPFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail analyzes a parsed email directly. Used for testing and
// direct API calls; the SMTP session path goes through Data.
func (f *SMTPFilter) ProcessEmail(ctx context.Context, email *core.ParsedEmail) (*core.AnalysisResult, error) {
	email.FlaggedIPs = f.reputation.Flagged(email.ReceivedIPs)
	return f.service.Analyze(ctx, email)
}

// sendToPostfix re-injects the processed email into Postfix using go-smtp
func (f *SMTPFilter) sendToPostfix(sender string, recipients []string, emailData []byte) error {
	postfixAddr := fmt.Sprintf("%s:%d", f.postfixAddr, f.postfixPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", postfixAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to Postfix: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
		// The email has already been sent at this point
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *SMTPFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		filter:     b.filter,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *SMTPFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for the filter)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data analyzes the message, tags it with verdict headers and forwards
// it back to Postfix.
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	email, err := parser.ParseEML(bytes.NewReader(rawData))
	if err != nil {
		s.filter.logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}
	email.FlaggedIPs = s.filter.reputation.Flagged(email.ReceivedIPs)

	senderDomain := "unknown"
	if parts := strings.Split(email.From, "@"); len(parts) == 2 {
		senderDomain = parts[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Analyze the email, but handle errors gracefully: an analysis
	// failure must never lose mail.
	result, analysisErr := s.filter.service.Analyze(ctx, email)
	if analysisErr != nil {
		s.filter.logger.Error("Failed to analyze email",
			zap.Error(analysisErr),
			zap.String("sender", email.From),
			zap.String("sender_domain", senderDomain))

		result = &core.AnalysisResult{
			Score:   0,
			Verdict: core.VerdictSafe,
			Reasons: []string{fmt.Sprintf("Error during analysis: %v", analysisErr)},
		}
	}

	malicious := result.Verdict == core.VerdictMalicious
	if malicious && s.filter.blockMalicious && analysisErr == nil {
		s.filter.logger.Info("Rejecting malicious email",
			zap.String("from", email.From),
			zap.String("sender_domain", senderDomain),
			zap.Int("score", result.Score))
		return fmt.Errorf("550 Rejected as phishing (score: %d)", result.Score)
	}

	modifiedEmail := s.buildTaggedMessage(rawData, result, malicious)

	if s.filter.postfixEnabled {
		if err := s.filter.sendToPostfix(s.sender, s.recipients, modifiedEmail); err != nil {
			s.filter.logger.Error("Failed to send email back to Postfix",
				zap.Error(err),
				zap.String("sender", email.From))
			return err
		}
	} else {
		s.filter.logger.Warn("Postfix forwarding disabled, this is likely a misconfiguration")
	}

	s.filter.logger.Info("Processed email",
		zap.String("from", email.From),
		zap.String("sender_domain", senderDomain),
		zap.String("verdict", string(result.Verdict)),
		zap.Int("score", result.Score))

	return nil
}

// buildTaggedMessage prepends the verdict headers (and optionally a
// subject prefix) to the original message, preserving all MIME parts.
func (s *smtpSession) buildTaggedMessage(rawData []byte, result *core.AnalysisResult, malicious bool) []byte {
	var modified bytes.Buffer

	fmt.Fprintf(&modified, "%s: %s\r\n", s.filter.verdictHeader, result.Verdict)
	fmt.Fprintf(&modified, "%s: %d\r\n", s.filter.scoreHeader, result.Score)
	fmt.Fprintf(&modified, "%s: %s\r\n", s.filter.reasonHeader, strings.Join(result.Reasons, "; "))

	if malicious && s.filter.modifySubject && s.filter.subjectPrefix != "" {
		if tagged, ok := s.prefixSubject(rawData); ok {
			modified.Write(tagged)
			return modified.Bytes()
		}
	}

	modified.Write(rawData)
	return modified.Bytes()
}

// prefixSubject rewrites the message with the subject prefix prepended.
// Returns false when the message headers cannot be reconstructed, in
// which case the original bytes are kept untouched.
func (s *smtpSession) prefixSubject(rawData []byte) ([]byte, bool) {
	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		return nil, false
	}

	subject := msg.Header.Get("Subject")
	if strings.HasPrefix(subject, s.filter.subjectPrefix) {
		return nil, false
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "Subject: %s%s\r\n", s.filter.subjectPrefix, subject)
	for key, values := range msg.Header {
		if strings.EqualFold(key, "Subject") {
			continue
		}
		for _, value := range values {
			fmt.Fprintf(&out, "%s: %s\r\n", key, value)
		}
	}
	fmt.Fprintf(&out, "\r\n")

	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return nil, false
	}
	out.Write(body)

	return out.Bytes(), true
}

// Logout handles SMTP logout (not needed for the filter)
func (s *smtpSession) Logout() error {
	return nil
}
