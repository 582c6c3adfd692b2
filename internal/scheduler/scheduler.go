package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/atriumhq/atrium/internal/audit/domain"
	auditcontext "github.com/atriumhq/atrium/internal/auditcontext"
	authdomain "github.com/atriumhq/atrium/internal/auth/domain"
	"github.com/atriumhq/atrium/internal/clock"
	invoicedomain "github.com/atriumhq/atrium/internal/invoice/domain"
	notifdomain "github.com/atriumhq/atrium/internal/notification/domain"
	obsmetrics "github.com/atriumhq/atrium/internal/observability/metrics"
	"github.com/atriumhq/atrium/internal/overdue"
	"github.com/atriumhq/atrium/internal/ratelimit"
	rentaldomain "github.com/atriumhq/atrium/internal/rental/domain"
	utilitydomain "github.com/atriumhq/atrium/internal/utility/domain"
)

var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Scanner     *overdue.Scanner
	UtilitySvc  utilitydomain.Service
	InvoiceRepo invoicedomain.Repository
	RentalRepo  rentaldomain.Repository

	NotificationSvc notifdomain.Service `optional:"true"`
	Locker          *ratelimit.Locker   `optional:"true"`
	Config          Config              `optional:"true"`
}

type Scheduler struct {
	db          *gorm.DB
	log         *zap.Logger
	cfg         Config
	genID       *snowflake.Node
	clock       clock.Clock
	scanner     *overdue.Scanner
	utilitySvc  utilitydomain.Service
	invoiceRepo invoicedomain.Repository
	rentalRepo  rentaldomain.Repository
	notifSvc    notifdomain.Service
	locker      *ratelimit.Locker

	mu      sync.Mutex
	lastRun map[string]time.Time
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.GenID == nil || p.Clock == nil || p.Scanner == nil || p.UtilitySvc == nil || p.InvoiceRepo == nil || p.RentalRepo == nil {
		return nil, ErrInvalidConfig
	}
	cfg := p.Config.withDefaults()
	return &Scheduler{
		db:          p.DB,
		log:         p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:         cfg,
		genID:       p.GenID,
		clock:       p.Clock,
		scanner:     p.Scanner,
		utilitySvc:  p.UtilitySvc,
		invoiceRepo: p.InvoiceRepo,
		rentalRepo:  p.RentalRepo,
		notifSvc:    p.NotificationSvc,
		locker:      p.Locker,
		lastRun:     make(map[string]time.Time),
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	batchSize int,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	ctx = auditcontext.WithActor(ctx, string(auditdomain.ActorTypeSystem), "scheduler")
	ctx, run, owner := s.ensureJobRun(ctx, name, batchSize)
	if owner {
		s.logJobStart(ctx, run)
	}
	log := s.logger(ctx).With(
		zap.String("job", name),
		zap.String("run_id", run.runID),
	)
	schedMetrics := obsmetrics.Scheduler()
	schedMetrics.IncJobRun(name)

	err := fn(ctx)
	schedMetrics.ObserveJobDuration(name, time.Since(start))
	if owner {
		if err != nil && run != nil && run.errorCount == 0 {
			run.IncError()
		}
		s.logJobFinish(ctx, run)
	}
	if err == nil {
		return nil
	}

	isTimeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
	if isTimeout {
		schedMetrics.IncJobTimeout(name)
	}
	schedMetrics.IncJobError(name, err)
	if isTimeout {
		log.Warn("job timed out",
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	release, owner, err := s.acquireLeaderLock(parent)
	if err != nil {
		s.log.Warn("leader lock check failed", zap.Error(err))
	}
	if !owner {
		return nil
	}
	defer release()

	jobs := []struct {
		Name     string
		Enabled  bool
		Interval time.Duration
		Run      func(context.Context) error
	}{
		{"overdue_scan", s.isJobEnabled("overdue_scan"), s.cfg.OverdueScanInterval, func(ctx context.Context) error {
			return s.runJob(ctx, "overdue_scan", s.cfg.BatchSize, 30*time.Second, s.OverdueScanJob)
		}},
		{"utility_invoices", s.isJobEnabled("utility_invoices"), s.cfg.OverdueScanInterval, func(ctx context.Context) error {
			return s.runJob(ctx, "utility_invoices", s.cfg.BatchSize, 60*time.Second, s.UtilityInvoicesJob)
		}},
		{"payment_reminders", s.isJobEnabled("payment_reminders"), s.cfg.ReminderInterval, func(ctx context.Context) error {
			return s.runJob(ctx, "payment_reminders", s.cfg.BatchSize, 30*time.Second, s.PaymentRemindersJob)
		}},
		{"renewal_reminders", s.isJobEnabled("renewal_reminders"), s.cfg.ReminderInterval, func(ctx context.Context) error {
			return s.runJob(ctx, "renewal_reminders", s.cfg.BatchSize, 30*time.Second, s.RenewalRemindersJob)
		}},
	}

	var runErr error
	for _, job := range jobs {
		if !job.Enabled || !s.jobDue(job.Name, job.Interval) {
			continue
		}
		runErr = errors.Join(runErr, job.Run(parent))
	}
	return runErr
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()
	nextRun := s.clock.Now().Add(s.cfg.RunInterval)
	schedMetrics := obsmetrics.Scheduler()

	for {
		runLag := time.Since(nextRun)
		if runLag > 0 {
			schedMetrics.ObserveRunLoopLag(runLag)
		}
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}
		nextRun = nextRun.Add(s.cfg.RunInterval)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	// If EnabledJobs is empty, all jobs are enabled by default.
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}

// jobDue gates jobs that run far less often than the run loop ticks.
func (s *Scheduler) jobDue(name string, interval time.Duration) bool {
	if interval <= 0 {
		return true
	}
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.lastRun[name]; ok && now.Sub(last) < interval {
		return false
	}
	s.lastRun[name] = now
	return true
}

// OverdueScanJob sweeps unpaid invoices past their due date, marking them
// overdue, settling fully paid ones and sending staged warnings.
func (s *Scheduler) OverdueScanJob(ctx context.Context) error {
	ctx, run, owner := s.ensureJobRun(ctx, "overdue_scan", s.cfg.BatchSize)
	if owner {
		s.logJobStart(ctx, run)
		defer s.logJobFinish(ctx, run)
	}

	result, err := s.scanner.Scan(ctx, s.cfg.BatchSize)
	run.AddProcessed(result.Scanned)
	obsmetrics.Scheduler().AddBatchProcessed("overdue_scan", obsmetrics.LockResourceUnpaidInvoices, result.Scanned)
	if err != nil {
		s.logSchedulerError(ctx, run, "scheduler.overdue_scan.failed", "overdue_scan", err)
		return err
	}
	if result.Scanned > 0 {
		s.logger(ctx).Info("scheduler.overdue_scan.done",
			zap.Int("scanned", result.Scanned),
			zap.Int("marked_overdue", result.MarkedOverdue),
			zap.Int("marked_paid", result.MarkedPaid),
			zap.Int("warnings_sent", result.WarningsSent),
			zap.Int("tenants_updated", result.TenantsUpdated),
		)
	}
	return nil
}

// UtilityInvoicesJob bills the previous month's utility expenses once the
// grace window for entering expenses has passed. BillMonth is idempotent,
// so repeated runs only fill gaps.
func (s *Scheduler) UtilityInvoicesJob(ctx context.Context) error {
	ctx, run, owner := s.ensureJobRun(ctx, "utility_invoices", s.cfg.BatchSize)
	if owner {
		s.logJobStart(ctx, run)
		defer s.logJobFinish(ctx, run)
	}

	now := s.clock.Now()
	if now.Day() < s.cfg.UtilityBillDay {
		return nil
	}
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	month := firstOfMonth.AddDate(0, 0, -1).Format("2006-01")

	result, err := s.utilitySvc.BillMonth(ctx, month)
	run.AddProcessed(result.InvoicesCreated)
	if err != nil {
		s.logSchedulerError(ctx, run, "scheduler.utility_invoices.failed", "utility_invoices", err,
			zap.String("month", month),
		)
		return err
	}
	if result.ChargesCreated > 0 || result.InvoicesCreated > 0 {
		s.logger(ctx).Info("scheduler.utility_invoices.done",
			zap.String("month", month),
			zap.Int("charges_created", result.ChargesCreated),
			zap.Int("invoices_created", result.InvoicesCreated),
		)
	}
	return nil
}

// PaymentRemindersJob notifies tenants about unpaid invoices coming due.
func (s *Scheduler) PaymentRemindersJob(ctx context.Context) error {
	ctx, run, owner := s.ensureJobRun(ctx, "payment_reminders", s.cfg.BatchSize)
	if owner {
		s.logJobStart(ctx, run)
		defer s.logJobFinish(ctx, run)
	}
	if s.notifSvc == nil {
		return nil
	}

	now := s.clock.Now()
	invoices, err := s.invoiceRepo.DueWithin(ctx, s.db, now, s.cfg.ReminderWindow)
	if err != nil {
		s.logSchedulerError(ctx, run, "scheduler.payment_reminders.failed", "payment_reminders", err)
		return err
	}

	var jobErr error
	for _, inv := range invoices {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		tenantID := inv.TenantID
		err := s.notifSvc.Publish(ctx, notifdomain.PublishRequest{
			TenantID: &tenantID,
			Title:    "Rent invoice due soon",
			Body:     fmt.Sprintf("Invoice %s for %.2f is due on %s.", inv.ID, float64(inv.TotalAmount)/100, inv.DueDate.Format("2006-01-02")),
			Email:    true,
			Metadata: map[string]any{
				"invoice_id": inv.ID.String(),
				"due_date":   inv.DueDate.Format(time.RFC3339),
			},
		})
		if err != nil {
			jobErr = errors.Join(jobErr, err)
			s.logSchedulerError(ctx, run, "scheduler.reminder.publish.failed", "payment_reminders", err,
				zap.String("invoice_id", inv.ID.String()),
			)
			continue
		}
		run.AddProcessed(1)
	}
	return jobErr
}

// RenewalRemindersJob notifies tenants and staff about rentals nearing
// their end date so renewals get negotiated in time.
func (s *Scheduler) RenewalRemindersJob(ctx context.Context) error {
	ctx, run, owner := s.ensureJobRun(ctx, "renewal_reminders", s.cfg.BatchSize)
	if owner {
		s.logJobStart(ctx, run)
		defer s.logJobFinish(ctx, run)
	}
	if s.notifSvc == nil {
		return nil
	}

	now := s.clock.Now()
	rentals, err := s.rentalRepo.EndingBetween(ctx, s.db, now, now.Add(s.cfg.RenewalWindow))
	if err != nil {
		s.logSchedulerError(ctx, run, "scheduler.renewal_reminders.failed", "renewal_reminders", err)
		return err
	}

	var jobErr error
	for _, rental := range rentals {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		tenantID := rental.TenantID
		body := fmt.Sprintf("Rental %s ends on %s. Contact management to renew.", rental.ID, rental.EndDate.Format("2006-01-02"))
		metadata := map[string]any{
			"rental_id": rental.ID.String(),
			"end_date":  rental.EndDate.Format(time.RFC3339),
		}

		err := s.notifSvc.Publish(ctx, notifdomain.PublishRequest{
			TenantID: &tenantID,
			Title:    "Rental ending soon",
			Body:     body,
			Email:    true,
			Metadata: metadata,
		})
		if err == nil {
			err = s.notifSvc.Publish(ctx, notifdomain.PublishRequest{
				Roles:    []string{string(authdomain.RoleAdmin), string(authdomain.RoleSuperadmin)},
				Title:    "Rental ending soon",
				Body:     body,
				Metadata: metadata,
			})
		}
		if err != nil {
			jobErr = errors.Join(jobErr, err)
			s.logSchedulerError(ctx, run, "scheduler.reminder.publish.failed", "renewal_reminders", err,
				zap.String("rental_id", rental.ID.String()),
			)
			continue
		}
		run.AddProcessed(1)
	}
	return jobErr
}
