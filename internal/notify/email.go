// Package notify sends transactional email through a hosted email API.
// Delivery is best-effort everywhere it is used: a receipt that fails to
// send must never fail the confirmation that triggered it.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/minsukang/paylink/internal/config"
	"github.com/minsukang/paylink/pkg/retry"
	"github.com/rs/zerolog"
)

// Receipt describes a payment receipt email.
type Receipt struct {
	To      string
	Name    string
	OrderID string
	Amount  int64
	Method  string
	PaidAt  time.Time
}

// Reminder describes a payment reminder email for a request nearing expiry.
type Reminder struct {
	To        string
	Name      string
	Token     string
	Amount    int64
	ExpiresAt time.Time
}

// EmailSender posts messages to a hosted transactional email API. Unlike the
// payment gateway call, email sends are safe to retry.
type EmailSender struct {
	apiKey     string
	baseURL    string
	from       string
	httpClient *http.Client
	retryCfg   retry.Config
	logger     zerolog.Logger
}

// NewEmailSender creates an EmailSender. An empty API key disables sending;
// Send* calls then succeed without doing anything.
func NewEmailSender(cfg config.EmailConfig, logger zerolog.Logger) *EmailSender {
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.resend.com"
	}

	return &EmailSender{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		from:       cfg.From,
		httpClient: &http.Client{Timeout: timeout},
		retryCfg:   retry.DefaultConfig(),
		logger:     logger,
	}
}

// Enabled reports whether an API key is configured.
func (s *EmailSender) Enabled() bool {
	return s.apiKey != ""
}

// SendReceipt mails a payment receipt.
func (s *EmailSender) SendReceipt(ctx context.Context, r Receipt) error {
	subject := "Payment received"
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>We received your payment of %d KRW (%s) for order %s on %s. Our team will be in touch shortly to kick things off.</p>",
		r.Name, r.Amount, r.Method, r.OrderID, r.PaidAt.Format("2006-01-02 15:04"),
	)
	return s.send(ctx, r.To, subject, html)
}

// SendReminder mails a payment reminder for a request nearing its deadline.
func (s *EmailSender) SendReminder(ctx context.Context, r Reminder) error {
	subject := "Your payment link expires soon"
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your payment link for %d KRW expires on %s. Complete the payment before then to keep your slot.</p>",
		r.Name, r.Amount, r.ExpiresAt.Format("2006-01-02 15:04"),
	)
	return s.send(ctx, r.To, subject, html)
}

type emailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (s *EmailSender) send(ctx context.Context, to, subject, html string) error {
	if !s.Enabled() {
		s.logger.Debug().Str("to", to).Str("subject", subject).Msg("email disabled, skipping send")
		return nil
	}

	body, err := json.Marshal(emailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	return retry.Do(ctx, s.retryCfg, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build email request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("send email: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("email API returned %d: %s", resp.StatusCode, msg)
		}
		return nil
	})
}
