package email

import (
	"context"
	"log/slog"
	"time"

	"communityhub/internal/domain/donation"
)

// sendTimeout caps a single best-effort delivery.
const sendTimeout = 10 * time.Second

// Notifier sends the application's transactional emails. Delivery is best-effort:
// failures are logged and never returned to the caller.
type Notifier struct {
	sender Sender
}

// NewNotifier wraps sender.
func NewNotifier(sender Sender) *Notifier {
	return &Notifier{sender: sender}
}

// Welcome emails a newly registered volunteer.
func (n *Notifier) Welcome(ctx context.Context, to, name string) {
	req, err := WelcomeMessage(to, name)
	n.deliver(ctx, "welcome", req, err)
}

// Receipt emails the donor a summary of a committed donation.
func (n *Notifier) Receipt(ctx context.Context, d donation.Donation) {
	req, err := ReceiptMessage(d)
	n.deliver(ctx, "receipt", req, err)
}

func (n *Notifier) deliver(ctx context.Context, kind string, req SendRequest, err error) {
	if err != nil {
		slog.Error("email_render_failed", "kind", kind, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()
	if _, err := n.sender.Send(ctx, req); err != nil {
		slog.Warn("email_send_failed", "kind", kind, "error", err)
	}
}
