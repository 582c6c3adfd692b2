package service

import (
	"context"
	"strings"
	"time"

	auditdomain "github.com/atriumhq/atrium/internal/audit/domain"
	invoicedomain "github.com/atriumhq/atrium/internal/invoice/domain"
	notifdomain "github.com/atriumhq/atrium/internal/notification/domain"
	obsmetrics "github.com/atriumhq/atrium/internal/observability/metrics"
	"github.com/atriumhq/atrium/internal/payment/domain"
	utilitydomain "github.com/atriumhq/atrium/internal/utility/domain"
	"github.com/atriumhq/atrium/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	InvoiceRepo invoicedomain.Repository
	UtilityRepo utilitydomain.Repository
	AuditSvc    auditdomain.Service `optional:"true"`
	NotifSvc    notifdomain.Service `optional:"true"`
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	invoiceRepo invoicedomain.Repository
	utilityRepo utilitydomain.Repository
	auditSvc    auditdomain.Service
	notifSvc    notifdomain.Service
	obsMetrics  *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("payment.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		invoiceRepo: p.InvoiceRepo,
		utilityRepo: p.UtilityRepo,
		auditSvc:    p.AuditSvc,
		notifSvc:    p.NotifSvc,
		obsMetrics:  p.ObsMetrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePaymentRequest) (domain.Payment, error) {
	invoiceRaw := strings.TrimSpace(req.InvoiceID)
	utilityRaw := strings.TrimSpace(req.UtilityInvoiceID)
	if (invoiceRaw == "") == (utilityRaw == "") {
		return domain.Payment{}, domain.ErrInvalidTarget
	}
	if req.Amount <= 0 {
		return domain.Payment{}, domain.ErrInvalidAmount
	}
	method := domain.Method(strings.ToUpper(strings.TrimSpace(req.Method)))
	if !method.Valid() {
		return domain.Payment{}, domain.ErrInvalidMethod
	}
	tenantID, err := snowflake.ParseString(strings.TrimSpace(req.TenantID))
	if err != nil || tenantID == 0 {
		return domain.Payment{}, domain.ErrInvalidTenant
	}

	now := time.Now().UTC()
	payment := domain.Payment{
		ID:          s.genID.Generate(),
		TenantID:    tenantID,
		Amount:      req.Amount,
		Method:      method,
		Reference:   strings.TrimSpace(req.Reference),
		Status:      domain.StatusPending,
		ReceiptPath: strings.TrimSpace(req.ReceiptPath),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if invoiceRaw != "" {
		invoiceID, err := snowflake.ParseString(invoiceRaw)
		if err != nil || invoiceID == 0 {
			return domain.Payment{}, domain.ErrInvalidTarget
		}
		invoice, err := s.invoiceRepo.FindByID(ctx, s.db, invoiceID)
		if err != nil {
			return domain.Payment{}, err
		}
		if invoice == nil {
			return domain.Payment{}, domain.ErrInvoiceUnknown
		}
		payment.InvoiceID = &invoiceID
	} else {
		utilityID, err := snowflake.ParseString(utilityRaw)
		if err != nil || utilityID == 0 {
			return domain.Payment{}, domain.ErrInvalidTarget
		}
		invoice, err := s.utilityRepo.FindInvoiceByID(ctx, s.db, utilityID)
		if err != nil {
			return domain.Payment{}, err
		}
		if invoice == nil {
			return domain.Payment{}, domain.ErrInvoiceUnknown
		}
		payment.UtilityInvoiceID = &utilityID
	}

	if err := s.repo.Insert(ctx, s.db, &payment); err != nil {
		return domain.Payment{}, err
	}

	s.obsMetrics.RecordPaymentEvent(ctx, string(payment.Method), string(payment.Status))
	s.audit(ctx, "payment.created", payment.ID, map[string]any{
		"tenant_id": payment.TenantID.String(),
		"amount":    payment.Amount,
		"method":    string(payment.Method),
	})
	return payment, nil
}

func (s *Service) Confirm(ctx context.Context, req domain.ConfirmPaymentRequest) (domain.Payment, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Payment{}, err
	}

	payment, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Payment{}, err
	}
	if payment == nil {
		return domain.Payment{}, domain.ErrNotFound
	}
	if payment.Status != domain.StatusPending {
		return domain.Payment{}, domain.ErrNotPending
	}

	now := time.Now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]any{
			"status":       domain.StatusConfirmed,
			"confirmed_by": req.ConfirmedBy,
			"confirmed_at": now,
			"updated_at":   now,
		}
		if err := s.repo.TransitionStatus(ctx, tx, id, domain.StatusPending, fields); err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.ErrNotPending
			}
			return err
		}
		if payment.InvoiceID != nil {
			return s.settleRentInvoice(ctx, tx, *payment.InvoiceID, now)
		}
		if payment.UtilityInvoiceID != nil {
			return s.settleUtilityInvoice(ctx, tx, *payment.UtilityInvoiceID, now)
		}
		return nil
	})
	if err != nil {
		return domain.Payment{}, err
	}

	confirmed, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Payment{}, err
	}
	if confirmed == nil {
		return domain.Payment{}, domain.ErrNotFound
	}

	s.obsMetrics.RecordPaymentEvent(ctx, string(confirmed.Method), string(confirmed.Status))
	s.audit(ctx, "payment.confirmed", id, map[string]any{
		"amount":       confirmed.Amount,
		"confirmed_by": req.ConfirmedBy.String(),
	})
	s.notifyTenant(ctx, confirmed, "Payment confirmed",
		"Your payment has been confirmed. Thank you.")
	return *confirmed, nil
}

// settleRentInvoice marks the rent invoice PAID once confirmed payments
// cover its total. A fully paid invoice also sheds its overdue flags.
func (s *Service) settleRentInvoice(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID, now time.Time) error {
	invoice, err := s.invoiceRepo.FindByID(ctx, tx, invoiceID)
	if err != nil {
		return err
	}
	if invoice == nil {
		return domain.ErrInvoiceUnknown
	}
	if invoice.Status == invoicedomain.InvoiceStatusPaid {
		return nil
	}

	total, err := s.invoiceRepo.ConfirmedPaymentTotal(ctx, tx, invoiceID)
	if err != nil {
		return err
	}
	if total < invoice.TotalAmount {
		return nil
	}

	return s.invoiceRepo.UpdateFields(ctx, tx, invoiceID, map[string]any{
		"status":       invoicedomain.InvoiceStatusPaid,
		"paid_at":      now,
		"is_overdue":   false,
		"overdue_days": 0,
		"updated_at":   now,
	})
}

func (s *Service) settleUtilityInvoice(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID, now time.Time) error {
	invoice, err := s.utilityRepo.FindInvoiceByID(ctx, tx, invoiceID)
	if err != nil {
		return err
	}
	if invoice == nil {
		return domain.ErrInvoiceUnknown
	}
	if invoice.Status == utilitydomain.UtilityInvoicePaid {
		return nil
	}

	total, err := s.utilityRepo.ConfirmedPaymentTotal(ctx, tx, invoiceID)
	if err != nil {
		return err
	}
	if total < invoice.Amount {
		return nil
	}

	return s.utilityRepo.UpdateInvoiceFields(ctx, tx, invoiceID, map[string]any{
		"status":     utilitydomain.UtilityInvoicePaid,
		"paid_at":    now,
		"updated_at": now,
	})
}

func (s *Service) Reject(ctx context.Context, req domain.RejectPaymentRequest) (domain.Payment, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Payment{}, err
	}

	now := time.Now().UTC()
	fields := map[string]any{
		"status":        domain.StatusRejected,
		"reject_reason": strings.TrimSpace(req.Reason),
		"updated_at":    now,
	}
	if err := s.repo.TransitionStatus(ctx, s.db, id, domain.StatusPending, fields); err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Payment{}, domain.ErrNotPending
		}
		return domain.Payment{}, err
	}

	rejected, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Payment{}, err
	}
	if rejected == nil {
		return domain.Payment{}, domain.ErrNotFound
	}

	s.obsMetrics.RecordPaymentEvent(ctx, string(rejected.Method), string(rejected.Status))
	s.audit(ctx, "payment.rejected", id, map[string]any{
		"reason":      rejected.RejectReason,
		"rejected_by": req.RejectedBy.String(),
	})
	s.notifyTenant(ctx, rejected, "Payment rejected",
		"Your payment could not be confirmed: "+rejected.RejectReason)
	return *rejected, nil
}

func (s *Service) List(ctx context.Context, req domain.ListPaymentRequest) (domain.ListPaymentResponse, error) {
	filter := domain.ListPaymentFilter{
		TenantID:         strings.TrimSpace(req.TenantID),
		InvoiceID:        strings.TrimSpace(req.InvoiceID),
		UtilityInvoiceID: strings.TrimSpace(req.UtilityInvoiceID),
		Status:           strings.ToUpper(strings.TrimSpace(req.Status)),
		Method:           strings.ToUpper(strings.TrimSpace(req.Method)),
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListPaymentResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(payment *domain.Payment) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        payment.ID.String(),
			CreatedAt: payment.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	payments := make([]domain.Payment, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		payments = append(payments, *item)
	}

	resp := domain.ListPaymentResponse{Payments: payments}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Payment, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return domain.Payment{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Payment{}, err
	}
	if item == nil {
		return domain.Payment{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) notifyTenant(ctx context.Context, payment *domain.Payment, title, body string) {
	if s.notifSvc == nil {
		return
	}
	tenantID := payment.TenantID
	err := s.notifSvc.Publish(ctx, notifdomain.PublishRequest{
		TenantID: &tenantID,
		Title:    title,
		Body:     body,
		Metadata: map[string]any{
			"payment_id": payment.ID.String(),
			"amount":     payment.Amount,
		},
	})
	if err != nil {
		s.log.Warn("payment notification failed",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) audit(ctx context.Context, action string, id snowflake.ID, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	targetID := id.String()
	_ = s.auditSvc.AuditLog(ctx, "", nil, action, "payment", &targetID, metadata)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
