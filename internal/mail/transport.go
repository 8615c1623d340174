// Package mail delivers composed e-mail messages.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Message is a fully composed e-mail ready for delivery.
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
	Headers map[string]string
}

// Transport sends a message. Errors are returned to the caller, which
// decides whether they matter.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// LogTransport writes messages to the log instead of sending them.
type LogTransport struct {
	logger *slog.Logger
}

func NewLogTransport(logger *slog.Logger) *LogTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogTransport{logger: logger}
}

func (t *LogTransport) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	t.logger.InfoContext(ctx, "mail sent to log",
		"to", msg.To,
		"subject", msg.Subject,
		"notification_id", msg.Headers[HeaderNotificationID],
	)
	return nil
}

// MemoryTransport keeps every message in memory. Set Err to make Send fail.
type MemoryTransport struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

func (t *MemoryTransport) Send(_ context.Context, msg Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return t.Err
	}
	if msg.To == "" {
		return ErrNoRecipient
	}
	t.messages = append(t.messages, msg)
	return nil
}

// Messages returns a copy of the delivered messages.
func (t *MemoryTransport) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Config selects and configures a transport.
type Config struct {
	Driver          string
	MailgunDomain   string
	MailgunSecret   string
	MailgunEndpoint string
	FromAddress     string
	FromName        string
}

// NewTransport builds the transport named by cfg.Driver.
func NewTransport(cfg Config, logger *slog.Logger) (Transport, error) {
	switch cfg.Driver {
	case "", "log":
		return NewLogTransport(logger), nil
	case "mailgun":
		return NewMailgunTransport(MailgunConfig{
			Domain:      cfg.MailgunDomain,
			APIKey:      cfg.MailgunSecret,
			BaseURL:     "https://" + cfg.MailgunEndpoint,
			FromAddress: cfg.FromAddress,
			FromName:    cfg.FromName,
		})
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Driver)
	}
}
