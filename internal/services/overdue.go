package services

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"gorm.io/datatypes"

	"github.com/openshelf/openshelf-backend/internal/data/repos"
	types "github.com/openshelf/openshelf-backend/internal/domain"
	"github.com/openshelf/openshelf-backend/internal/platform/logger"
)

// OverdueNotifier is the job body behind the recurring overdue check: fetch
// overdue loans, project customer emails, hand the batch to the mail sender.
// It is trigger-agnostic; the scheduler owns when Run fires.
type OverdueNotifier struct {
	log           *logger.Logger
	loans         LoanService
	mailer        MailSender
	runs          repos.NotificationRunRepo
	thresholdDays int
	message       string

	running atomic.Bool
	now     func() time.Time
}

func NewOverdueNotifier(
	baseLog *logger.Logger,
	loans LoanService,
	mailer MailSender,
	runs repos.NotificationRunRepo,
	thresholdDays int,
	message string,
) *OverdueNotifier {
	return &OverdueNotifier{
		log:           baseLog.With("service", "OverdueNotifier"),
		loans:         loans,
		mailer:        mailer,
		runs:          runs,
		thresholdDays: thresholdDays,
		message:       message,
		now:           time.Now,
	}
}

// Run executes one notification pass. Overlapping triggers are dropped: when
// a previous pass is still in flight the call returns immediately, and the
// next scheduled run re-includes any loan still overdue.
func (n *OverdueNotifier) Run(ctx context.Context) error {
	if !n.running.CompareAndSwap(false, true) {
		n.log.Warn("overdue run skipped, previous run still in progress")
		return nil
	}
	defer n.running.Store(false)

	ctx, span := otel.Tracer("openshelf/overdue-notifier").Start(ctx, "overdue_notifier.run")
	defer span.End()

	started := n.now().UTC()

	loans, err := n.loans.AllOverdue(ctx, n.thresholdDays)
	if err != nil {
		n.log.Error("overdue query failed", "error", err)
		n.record(ctx, started, types.NotificationRunStatusFailed, 0, nil, err)
		return err
	}

	recipients := make([]string, 0, len(loans))
	seen := map[string]struct{}{}
	for _, loan := range loans {
		email := loan.CustomerEmail
		if email == "" {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		recipients = append(recipients, email)
	}

	if len(recipients) == 0 {
		n.log.Info("no overdue loans to notify", "threshold_days", n.thresholdDays)
		n.record(ctx, started, types.NotificationRunStatusEmpty, len(loans), recipients, nil)
		return nil
	}

	n.log.Info("notifying overdue loans",
		"threshold_days", n.thresholdDays,
		"overdue_count", len(loans),
		"recipient_count", len(recipients),
	)

	// Best effort: a failed batch is logged and recorded but not retried
	// here; loans still overdue show up again on the next run.
	if err := n.mailer.SendMail(ctx, n.message, recipients); err != nil {
		n.log.Error("overdue mail delivery failed", "error", err, "recipient_count", len(recipients))
		n.record(ctx, started, types.NotificationRunStatusFailed, len(loans), recipients, err)
		return err
	}

	n.record(ctx, started, types.NotificationRunStatusSent, len(loans), recipients, nil)
	return nil
}

func (n *OverdueNotifier) record(ctx context.Context, started time.Time, status string, overdueCount int, recipients []string, runErr error) {
	if n.runs == nil {
		return
	}

	run := &types.NotificationRun{
		Status:        status,
		ThresholdDays: n.thresholdDays,
		OverdueCount:  overdueCount,
		StartedAt:     started,
		FinishedAt:    n.now().UTC(),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if len(recipients) > 0 {
		if raw, err := json.Marshal(recipients); err == nil {
			run.Recipients = datatypes.JSON(raw)
		}
	}

	// Bookkeeping only; a failed insert never fails the run itself.
	if _, err := n.runs.Create(ctx, nil, run); err != nil {
		n.log.Warn("failed to record notification run", "error", err)
	}
}
