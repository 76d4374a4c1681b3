package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"physiohub/clinic-app/internal/config"
	"physiohub/clinic-app/internal/repository"

	"gopkg.in/gomail.v2"
)

// Notifier is the notification collaborator: best-effort confirmation after a
// successful assignment. Callers log failures and never propagate them.
type Notifier interface {
	SendConfirmation(ctx context.Context, accountID uint) error
}

// New selects the SMTP notifier when email is enabled, otherwise the
// simulated (log-only) notifier.
func New(cfg config.EmailConfig, basePath string, accounts repository.AccountRepository, logger *slog.Logger) Notifier {
	if cfg.Enabled {
		return &smtpNotifier{cfg: cfg, basePath: basePath, accounts: accounts}
	}
	return &simulatedNotifier{basePath: basePath, accounts: accounts, logger: logger}
}

// confirmationBody renders the assignment confirmation text.
func confirmationBody(patientName, basePath string) string {
	dashboardURL := basePath + "/patient/dashboard"
	if basePath == "" {
		dashboardURL = "/patient/dashboard"
	}
	return strings.TrimSpace(fmt.Sprintf(`Dear %s,

Your physiotherapy treatment has been successfully assigned!

Please log in to your dashboard to view your new exercises.

Go to Dashboard: %s

Best regards,
PhysioHUB Team`, patientName, dashboardURL))
}

// simulatedNotifier writes the would-be email to the log.
type simulatedNotifier struct {
	basePath string
	accounts repository.AccountRepository
	logger   *slog.Logger
}

func (n *simulatedNotifier) SendConfirmation(ctx context.Context, accountID uint) error {
	account, err := n.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	name := account.Name
	if name == "" {
		name = "Client"
	}
	n.logger.Info("simulated confirmation email",
		"to", account.Email,
		"accountId", accountID,
		"subject", "New Treatment Plan Assigned",
		"body", confirmationBody(name, n.basePath),
	)
	return nil
}

// smtpNotifier delivers the confirmation over SMTP.
type smtpNotifier struct {
	cfg      config.EmailConfig
	basePath string
	accounts repository.AccountRepository
}

func (n *smtpNotifier) SendConfirmation(ctx context.Context, accountID uint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	account, err := n.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.Email == "" {
		return fmt.Errorf("account %d has no email address", accountID)
	}
	name := account.Name
	if name == "" {
		name = "Client"
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", n.cfg.From)
	msg.SetHeader("To", account.Email)
	msg.SetHeader("Subject", "New Treatment Plan Assigned")
	msg.SetBody("text/plain", confirmationBody(name, n.basePath))

	d := gomail.NewDialer(n.cfg.SMTPHost, n.cfg.SMTPPort, n.cfg.SMTPUsername, n.cfg.SMTPPassword)

	// gomail has no context support; run the send aside and stop waiting
	// when the caller's deadline passes. An abandoned dial times out on its
	// own inside gomail.
	done := make(chan error, 1)
	go func() { done <- d.DialAndSend(msg) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
