// Package overdue implements the invoice overdue scanner: it sweeps
// unpaid invoices past their due date, maintains their overdue state,
// issues staged warnings and rebuilds each touched tenant's overdue
// aggregates from scratch.
package overdue

import (
	"context"
	"errors"
	"fmt"
	"time"

	auditdomain "github.com/atriumhq/atrium/internal/audit/domain"
	"github.com/atriumhq/atrium/internal/clock"
	"github.com/atriumhq/atrium/internal/config"
	invoicedomain "github.com/atriumhq/atrium/internal/invoice/domain"
	notifdomain "github.com/atriumhq/atrium/internal/notification/domain"
	obsmetrics "github.com/atriumhq/atrium/internal/observability/metrics"
	tenantdomain "github.com/atriumhq/atrium/internal/tenant/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Result summarizes one scan pass.
type Result struct {
	Scanned        int `json:"scanned"`
	MarkedOverdue  int `json:"marked_overdue"`
	MarkedPaid     int `json:"marked_paid"`
	WarningsSent   int `json:"warnings_sent"`
	TenantsUpdated int `json:"tenants_updated"`
}

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	InvoiceRepo invoicedomain.Repository
	TenantRepo  tenantdomain.Repository
	Policy      *config.OverduePolicyHolder `optional:"true"`
	AuditSvc    auditdomain.Service         `optional:"true"`
	NotifSvc    notifdomain.Service         `optional:"true"`
	ObsMetrics  *obsmetrics.Metrics         `optional:"true"`
}

type Scanner struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	invoiceRepo invoicedomain.Repository
	tenantRepo  tenantdomain.Repository
	policy      *config.OverduePolicyHolder
	auditSvc    auditdomain.Service
	notifSvc    notifdomain.Service
	obsMetrics  *obsmetrics.Metrics
}

func New(p Params) *Scanner {
	return &Scanner{
		db:          p.DB,
		log:         p.Log.Named("overdue.scanner"),
		clock:       p.Clock,
		invoiceRepo: p.InvoiceRepo,
		tenantRepo:  p.TenantRepo,
		policy:      p.Policy,
		auditSvc:    p.AuditSvc,
		notifSvc:    p.NotifSvc,
		obsMetrics:  p.ObsMetrics,
	}
}

var Module = fx.Module("overdue", fx.Provide(New))

// Scan drains due invoices in batches. One invoice's failure is joined
// into the returned error but never aborts the rest of the sweep.
func (s *Scanner) Scan(ctx context.Context, batchSize int) (Result, error) {
	if batchSize <= 0 {
		batchSize = 50
	}
	now := s.clock.Now()

	var result Result
	var scanErr error
	touched := map[snowflake.ID]bool{}

	for {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		processed, batchErr := s.scanBatch(ctx, now, batchSize, &result, touched)
		if batchErr != nil {
			scanErr = errors.Join(scanErr, batchErr)
		}
		if processed == 0 {
			break
		}
	}

	for tenantID := range touched {
		if err := s.rebuildTenantAggregate(ctx, tenantID); err != nil {
			scanErr = errors.Join(scanErr, fmt.Errorf("tenant %s: %w", tenantID, err))
			continue
		}
		result.TenantsUpdated++
	}

	s.log.Info("overdue scan finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("marked_overdue", result.MarkedOverdue),
		zap.Int("marked_paid", result.MarkedPaid),
		zap.Int("warnings_sent", result.WarningsSent),
		zap.Int("tenants_updated", result.TenantsUpdated),
	)
	return result, scanErr
}

func (s *Scanner) scanBatch(ctx context.Context, now time.Time, batchSize int, result *Result, touched map[snowflake.ID]bool) (int, error) {
	var processed int
	var batchErr error

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoices, err := s.invoiceRepo.ClaimUnpaidBatch(ctx, tx, now, batchSize)
		if err != nil {
			return err
		}
		processed = len(invoices)

		for _, invoice := range invoices {
			if err := s.checkInvoice(ctx, tx, invoice, now, result); err != nil {
				batchErr = errors.Join(batchErr, fmt.Errorf("invoice %s: %w", invoice.ID, err))
				continue
			}
			touched[invoice.TenantID] = true
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return processed, batchErr
}

// checkInvoice applies the overdue rules for one claimed invoice. A
// fully covered invoice is settled even past its due date; payment wins
// over overdue.
func (s *Scanner) checkInvoice(ctx context.Context, tx *gorm.DB, invoice *invoicedomain.Invoice, now time.Time, result *Result) error {
	result.Scanned++

	paid, err := s.invoiceRepo.ConfirmedPaymentTotal(ctx, tx, invoice.ID)
	if err != nil {
		return err
	}
	if paid >= invoice.TotalAmount {
		err := s.invoiceRepo.UpdateFields(ctx, tx, invoice.ID, map[string]any{
			"status":          invoicedomain.InvoiceStatusPaid,
			"paid_at":         now,
			"is_overdue":      false,
			"overdue_days":    0,
			"last_checked_at": now,
			"updated_at":      now,
		})
		if err != nil {
			return err
		}
		result.MarkedPaid++
		s.audit(ctx, "invoice.settled", invoice.ID, nil)
		return nil
	}

	overdueDays := int(now.Sub(invoice.DueDate).Hours() / 24)
	if overdueDays < 0 {
		overdueDays = 0
	}

	fields := map[string]any{
		"status":          invoicedomain.InvoiceStatusOverdue,
		"is_overdue":      true,
		"overdue_days":    overdueDays,
		"last_checked_at": now,
		"updated_at":      now,
	}
	if invoice.OverdueSince == nil {
		fields["overdue_since"] = now
	}

	warn := !invoice.WarningSent && s.policy.Get().IsWarningDay(overdueDays)
	if warn {
		fields["warning_sent"] = true
	}

	if err := s.invoiceRepo.UpdateFields(ctx, tx, invoice.ID, fields); err != nil {
		return err
	}
	result.MarkedOverdue++

	if warn {
		result.WarningsSent++
		s.obsMetrics.RecordOverdueWarning(ctx)
		s.audit(ctx, "invoice.overdue_warning", invoice.ID, map[string]any{
			"overdue_days": overdueDays,
			"outstanding":  invoice.TotalAmount - paid,
		})
		s.sendWarning(ctx, invoice, overdueDays, invoice.TotalAmount-paid)
	}
	return nil
}

func (s *Scanner) sendWarning(ctx context.Context, invoice *invoicedomain.Invoice, overdueDays int, outstanding int64) {
	if s.notifSvc == nil {
		return
	}
	tenantID := invoice.TenantID
	body := fmt.Sprintf("Rent invoice %s is %d day(s) overdue. Outstanding amount: %.2f.",
		invoice.ID, overdueDays, float64(outstanding)/100)

	err := s.notifSvc.Publish(ctx, notifdomain.PublishRequest{
		TenantID: &tenantID,
		Title:    "Overdue rent warning",
		Body:     body,
		Email:    true,
		Metadata: map[string]any{
			"invoice_id":   invoice.ID.String(),
			"overdue_days": overdueDays,
			"outstanding":  outstanding,
		},
	})
	if err != nil {
		s.log.Warn("overdue warning notification failed",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err),
		)
	}

	err = s.notifSvc.Publish(ctx, notifdomain.PublishRequest{
		Roles: []string{"ADMIN", "SUPERADMIN"},
		Title: "Tenant rent overdue",
		Body:  body,
		Metadata: map[string]any{
			"invoice_id": invoice.ID.String(),
			"tenant_id":  tenantID.String(),
		},
	})
	if err != nil {
		s.log.Warn("overdue admin notification failed", zap.Error(err))
	}
}

// rebuildTenantAggregate recomputes the tenant's overdue snapshot from
// the currently overdue invoices instead of adjusting counters.
func (s *Scanner) rebuildTenantAggregate(ctx context.Context, tenantID snowflake.ID) error {
	invoices, err := s.invoiceRepo.OverdueByTenant(ctx, s.db, tenantID)
	if err != nil {
		return err
	}

	var agg tenantdomain.OverdueAggregate
	for _, invoice := range invoices {
		paid, err := s.invoiceRepo.ConfirmedPaymentTotal(ctx, s.db, invoice.ID)
		if err != nil {
			return err
		}
		outstanding := invoice.TotalAmount - paid
		if outstanding <= 0 {
			continue
		}
		agg.OverdueCount++
		agg.TotalOverdue += outstanding
		if agg.LastOverdueDate == nil || invoice.DueDate.After(*agg.LastOverdueDate) {
			due := invoice.DueDate
			agg.LastOverdueDate = &due
		}
	}
	agg.HasOverdueRent = agg.OverdueCount > 0

	return s.tenantRepo.UpdateOverdueAggregate(ctx, s.db, tenantID, agg)
}

func (s *Scanner) audit(ctx context.Context, action string, id snowflake.ID, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	targetID := id.String()
	_ = s.auditSvc.AuditLog(ctx, "", nil, action, "invoice", &targetID, metadata)
}
