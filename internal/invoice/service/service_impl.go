package service

import (
	"context"
	"strings"
	"time"

	auditdomain "github.com/atriumhq/atrium/internal/audit/domain"
	"github.com/atriumhq/atrium/internal/invoice/domain"
	rentaldomain "github.com/atriumhq/atrium/internal/rental/domain"
	"github.com/atriumhq/atrium/pkg/db"
	"github.com/atriumhq/atrium/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultDueInDays = 14

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	RentalRepo rentaldomain.Repository
	AuditSvc   auditdomain.Service `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	rentalRepo rentaldomain.Repository
	auditSvc   auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("invoice.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		rentalRepo: p.RentalRepo,
		auditSvc:   p.AuditSvc,
	}
}

func (s *Service) Generate(ctx context.Context, req domain.GenerateInvoiceRequest) (domain.Invoice, error) {
	rentalID, err := snowflake.ParseString(strings.TrimSpace(req.RentalID))
	if err != nil || rentalID == 0 {
		return domain.Invoice{}, domain.ErrInvalidRental
	}
	if req.PeriodStart.IsZero() {
		return domain.Invoice{}, domain.ErrInvalidPeriod
	}

	rental, err := s.rentalRepo.FindByID(ctx, s.db, rentalID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if rental == nil {
		return domain.Invoice{}, domain.ErrInvalidRental
	}
	if rental.Status != rentaldomain.RentalStatusActive {
		return domain.Invoice{}, domain.ErrRentalNotActive
	}

	months := rental.PaymentInterval.Months()
	calc := domain.Calculate(domain.CalcInput{
		RentAmount: rental.RentAmount,
		Months:     months,
		IncludeTax: rental.IncludeTax,
		TaxPercent: rental.TaxPercent,
	})

	dueInDays := req.DueInDays
	if dueInDays <= 0 {
		dueInDays = defaultDueInDays
	}

	now := time.Now().UTC()
	periodStart := req.PeriodStart.UTC()
	invoice := domain.Invoice{
		ID:                 s.genID.Generate(),
		RentalID:           rental.ID,
		TenantID:           rental.TenantID,
		PaperInvoiceNumber: strings.TrimSpace(req.PaperInvoiceNumber),
		InvoiceDate:        now,
		PeriodStart:        periodStart,
		PeriodEnd:          periodStart.AddDate(0, months, 0),
		DueDate:            now.AddDate(0, 0, dueInDays),
		BaseRent:           calc.BaseRent,
		TaxPercent:         rental.TaxPercent,
		TaxAmount:          calc.TaxAmount,
		WithholdingRate:    calc.WithholdingRate,
		WithholdingAmount:  calc.WithholdingAmount,
		TotalAmount:        calc.TotalAmount,
		Status:             domain.InvoiceStatusUnpaid,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if !rental.IncludeTax {
		invoice.TaxPercent = 0
	}

	if err := s.repo.Insert(ctx, s.db, &invoice); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Invoice{}, domain.ErrDuplicatePeriod
		}
		return domain.Invoice{}, err
	}

	s.audit(ctx, "invoice.generated", invoice.ID, map[string]any{
		"rental_id":    invoice.RentalID.String(),
		"period_start": invoice.PeriodStart.Format("2006-01-02"),
		"total_amount": invoice.TotalAmount,
	})
	return invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	filter := domain.ListInvoiceFilter{
		RentalID: strings.TrimSpace(req.RentalID),
		TenantID: strings.TrimSpace(req.TenantID),
		Status:   strings.ToUpper(strings.TrimSpace(req.Status)),
		DueFrom:  req.DueFrom,
		DueTo:    req.DueTo,
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
		return domain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(inv *domain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        inv.ID.String(),
			CreatedAt: inv.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	resp := domain.ListInvoiceResponse{Invoices: invoices}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Invoice, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return domain.Invoice{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if item == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) audit(ctx context.Context, action string, id snowflake.ID, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	targetID := id.String()
	_ = s.auditSvc.AuditLog(ctx, "", nil, action, "invoice", &targetID, metadata)
}
