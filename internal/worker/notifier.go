package worker

import (
	"context"
	"log/slog"

	"agencycms/internal/database"
)

// Notifier delivers staff notifications after public intake writes.
type Notifier interface {
	NotifyLeadCreated(ctx context.Context, lead database.Lead) error
	NotifyApplicationReceived(ctx context.Context, application database.JobApplication, job database.Job) error
}

// LogNotifier records notifications without delivering them. It stands
// in until an email provider is wired up.
// TODO: replace with an SMTP/SES-backed notifier once credentials exist.
type LogNotifier struct {
	Logger *slog.Logger
}

// NewLogNotifier builds the logging notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) NotifyLeadCreated(_ context.Context, lead database.Lead) error {
	n.logger().Info("lead notification",
		slog.Uint64("lead_id", uint64(lead.ID)),
		slog.String("name", lead.Name),
		slog.String("email", lead.Email),
	)
	return nil
}

func (n *LogNotifier) NotifyApplicationReceived(_ context.Context, application database.JobApplication, job database.Job) error {
	n.logger().Info("application notification",
		slog.Uint64("application_id", uint64(application.ID)),
		slog.String("job_title", job.Title),
		slog.String("email", application.Email),
	)
	return nil
}

func (n *LogNotifier) logger() *slog.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return slog.Default()
}
