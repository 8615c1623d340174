package mail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

const (
	HeaderNotificationID = "X-Notification-ID"

	defaultMailgunTimeout = 10 * time.Second
)

var (
	ErrNoRecipient          = errors.New("mail: message has no recipient")
	ErrMailgunNotConfigured = errors.New("mail: mailgun domain and api key are required")
)

// MailgunConfig configures delivery through the Mailgun messages API.
// BaseURL is the API host without the version path.
type MailgunConfig struct {
	Domain      string
	APIKey      string
	BaseURL     string
	FromAddress string
	FromName    string
	Timeout     time.Duration
}

// MailgunTransport sends messages with the Mailgun client.
type MailgunTransport struct {
	cfg    MailgunConfig
	client mailgun.Mailgun
}

// MailgunError carries the status and body of a rejected request.
type MailgunError struct {
	StatusCode int
	Body       string
}

func (e *MailgunError) Error() string {
	hint := ""
	switch e.StatusCode {
	case http.StatusUnauthorized:
		hint = " (check the API key)"
	case http.StatusBadRequest:
		hint = " (check the request parameters and domain)"
	}
	return fmt.Sprintf("mailgun: request failed with status %d%s: %s", e.StatusCode, hint, e.Body)
}

func NewMailgunTransport(cfg MailgunConfig) (*MailgunTransport, error) {
	if cfg.Domain == "" || cfg.APIKey == "" {
		return nil, ErrMailgunNotConfigured
	}
	if cfg.BaseURL == "" || cfg.BaseURL == "https://" {
		cfg.BaseURL = "https://api.mailgun.net"
	}
	if cfg.FromAddress == "" {
		cfg.FromAddress = "noreply@" + cfg.Domain
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultMailgunTimeout
	}

	mg := mailgun.NewMailgun(cfg.Domain, cfg.APIKey)
	mg.SetAPIBase(strings.TrimRight(cfg.BaseURL, "/") + "/v3")
	mg.SetClient(&http.Client{Timeout: cfg.Timeout})

	return &MailgunTransport{cfg: cfg, client: mg}, nil
}

func (t *MailgunTransport) from() string {
	if t.cfg.FromName == "" {
		return t.cfg.FromAddress
	}
	return fmt.Sprintf("%s <%s>", t.cfg.FromName, t.cfg.FromAddress)
}

func recipient(msg Message) string {
	if msg.ToName == "" {
		return msg.To
	}
	return fmt.Sprintf("%s <%s>", msg.ToName, msg.To)
}

// Send hands the message to Mailgun.
func (t *MailgunTransport) Send(ctx context.Context, msg Message) error {
	_, err := t.SendWithID(ctx, msg)
	return err
}

// SendWithID is Send, returning the id Mailgun assigned to the message.
func (t *MailgunTransport) SendWithID(ctx context.Context, msg Message) (string, error) {
	if msg.To == "" {
		return "", ErrNoRecipient
	}

	m := t.client.NewMessage(t.from(), msg.Subject, msg.Text, recipient(msg))
	if msg.HTML != "" {
		m.SetHtml(msg.HTML)
	}
	for name, value := range msg.Headers {
		m.AddHeader(name, value)
	}

	_, id, err := t.client.Send(ctx, m)
	if err != nil {
		var unexpected *mailgun.UnexpectedResponseError
		if errors.As(err, &unexpected) {
			return "", &MailgunError{
				StatusCode: unexpected.Actual,
				Body:       strings.TrimSpace(string(unexpected.Data)),
			}
		}
		return "", fmt.Errorf("mailgun: send failed: %w", err)
	}
	return id, nil
}
