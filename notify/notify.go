package notify

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gregdel/pushover"

	"github.com/marcus-crane/curator/config"
)

type Notifier interface {
	Notify(title, message string) error
}

// New returns a Pushover notifier when credentials are configured and a
// notifier that drops everything otherwise
func New(cfg config.PushoverConfig) Notifier {
	if cfg.Token == "" || cfg.Recipient == "" {
		slog.Debug("Pushover credentials not set, notifications disabled")
		return Noop{}
	}
	return NewPushoverNotifier(cfg.Token, cfg.Recipient)
}

type Noop struct{}

func (Noop) Notify(title, message string) error {
	return nil
}

type PushoverNotifier struct {
	App       *pushover.Pushover
	Recipient *pushover.Recipient
	Now       func() time.Time
}

func NewPushoverNotifier(token, recipient string) *PushoverNotifier {
	return &PushoverNotifier{
		App:       pushover.New(token),
		Recipient: pushover.NewRecipient(recipient),
		Now:       time.Now,
	}
}

func (p *PushoverNotifier) Notify(title, message string) error {
	msg := &pushover.Message{
		Message:    message,
		Title:      title,
		Priority:   pushover.PriorityLow,
		Timestamp:  p.Now().Unix(),
		DeviceName: "curator",
	}
	if _, err := p.App.SendMessage(msg, p.Recipient); err != nil {
		return fmt.Errorf("failed to send pushover notification: %w", err)
	}
	return nil
}
