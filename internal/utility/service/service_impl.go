package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	auditdomain "github.com/atriumhq/atrium/internal/audit/domain"
	notifdomain "github.com/atriumhq/atrium/internal/notification/domain"
	rentaldomain "github.com/atriumhq/atrium/internal/rental/domain"
	"github.com/atriumhq/atrium/internal/utility/domain"
	"github.com/atriumhq/atrium/pkg/db"
	"github.com/atriumhq/atrium/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	RentalRepo rentaldomain.Repository
	AuditSvc   auditdomain.Service  `optional:"true"`
	NotifSvc   notifdomain.Service  `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	rentalRepo rentaldomain.Repository
	auditSvc   auditdomain.Service
	notifSvc   notifdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("utility.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		rentalRepo: p.RentalRepo,
		auditSvc:   p.AuditSvc,
		notifSvc:   p.NotifSvc,
	}
}

func (s *Service) CreateExpense(ctx context.Context, req domain.CreateExpenseRequest) (domain.UtilityExpense, error) {
	utilityType := domain.UtilityType(strings.ToUpper(strings.TrimSpace(req.Type)))
	if !utilityType.Valid() {
		return domain.UtilityExpense{}, domain.ErrInvalidType
	}
	if req.Amount <= 0 {
		return domain.UtilityExpense{}, domain.ErrInvalidAmount
	}

	now := time.Now().UTC()
	expenseDate := req.ExpenseDate
	if expenseDate.IsZero() {
		expenseDate = now
	}

	expense := domain.UtilityExpense{
		ID:          s.genID.Generate(),
		Type:        utilityType,
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		ExpenseDate: expenseDate.UTC(),
		InvoicePath: strings.TrimSpace(req.InvoicePath),
		CreatedBy:   strings.TrimSpace(req.CreatedBy),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.InsertExpense(ctx, s.db, &expense); err != nil {
		return domain.UtilityExpense{}, err
	}

	s.audit(ctx, "utility.expense_created", "utility_expense", expense.ID, map[string]any{
		"type":   string(expense.Type),
		"amount": expense.Amount,
	})
	return expense, nil
}

func (s *Service) UpdateExpense(ctx context.Context, req domain.UpdateExpenseRequest) (domain.UtilityExpense, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.UtilityExpense{}, err
	}

	existing, err := s.repo.FindExpenseByID(ctx, s.db, id)
	if err != nil {
		return domain.UtilityExpense{}, err
	}
	if existing == nil {
		return domain.UtilityExpense{}, domain.ErrNotFound
	}
	if existing.BankTransactionID != nil {
		return domain.UtilityExpense{}, domain.ErrExpenseLocked
	}

	fields := map[string]any{"updated_at": time.Now().UTC()}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return domain.UtilityExpense{}, domain.ErrInvalidAmount
		}
		fields["amount"] = *req.Amount
	}
	if req.ExpenseDate != nil {
		fields["expense_date"] = req.ExpenseDate.UTC()
	}
	if req.InvoicePath != nil {
		fields["invoice_path"] = strings.TrimSpace(*req.InvoicePath)
	}

	if err := s.repo.UpdateExpenseFields(ctx, s.db, id, fields); err != nil {
		return domain.UtilityExpense{}, err
	}

	updated, err := s.repo.FindExpenseByID(ctx, s.db, id)
	if err != nil {
		return domain.UtilityExpense{}, err
	}
	if updated == nil {
		return domain.UtilityExpense{}, domain.ErrNotFound
	}

	s.audit(ctx, "utility.expense_updated", "utility_expense", id, nil)
	return *updated, nil
}

func (s *Service) DeleteExpense(ctx context.Context, rawID string) error {
	id, err := s.parseID(rawID)
	if err != nil {
		return err
	}

	existing, err := s.repo.FindExpenseByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}
	if existing.BankTransactionID != nil {
		return domain.ErrExpenseLocked
	}

	if err := s.repo.DeleteExpense(ctx, s.db, id); err != nil {
		return err
	}

	s.audit(ctx, "utility.expense_deleted", "utility_expense", id, nil)
	return nil
}

func (s *Service) ListExpenses(ctx context.Context, req domain.ListExpenseRequest) (domain.ListExpenseResponse, error) {
	filter := domain.ListExpenseFilter{
		Type: strings.ToUpper(strings.TrimSpace(req.Type)),
		From: req.From,
		To:   req.To,
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.ListExpenses(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListExpenseResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(expense *domain.UtilityExpense) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        expense.ID.String(),
			CreatedAt: expense.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	expenses := make([]domain.UtilityExpense, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		expenses = append(expenses, *item)
	}

	resp := domain.ListExpenseResponse{Expenses: expenses}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) CreateCharge(ctx context.Context, req domain.CreateChargeRequest) (domain.UtilityCharge, error) {
	utilityType := domain.UtilityType(strings.ToUpper(strings.TrimSpace(req.Type)))
	if !utilityType.Valid() {
		return domain.UtilityCharge{}, domain.ErrInvalidType
	}
	month, err := normalizeMonth(req.Month)
	if err != nil {
		return domain.UtilityCharge{}, err
	}
	if req.TotalCost <= 0 {
		return domain.UtilityCharge{}, domain.ErrInvalidAmount
	}

	now := time.Now().UTC()
	charge := domain.UtilityCharge{
		ID:          s.genID.Generate(),
		Type:        utilityType,
		Month:       month,
		TotalCost:   req.TotalCost,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.InsertCharge(ctx, s.db, &charge); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.UtilityCharge{}, domain.ErrDuplicateCharge
		}
		return domain.UtilityCharge{}, err
	}

	s.audit(ctx, "utility.charge_created", "utility_charge", charge.ID, map[string]any{
		"type":       string(charge.Type),
		"month":      charge.Month,
		"total_cost": charge.TotalCost,
	})
	return charge, nil
}

func (s *Service) ListCharges(ctx context.Context, req domain.ListChargeRequest) (domain.ListChargeResponse, error) {
	filter := domain.ListChargeFilter{
		Type:  strings.ToUpper(strings.TrimSpace(req.Type)),
		Month: strings.TrimSpace(req.Month),
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.ListCharges(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListChargeResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(charge *domain.UtilityCharge) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        charge.ID.String(),
			CreatedAt: charge.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	charges := make([]domain.UtilityCharge, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		charges = append(charges, *item)
	}

	resp := domain.ListChargeResponse{Charges: charges}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) ListInvoices(ctx context.Context, req domain.ListUtilityInvoiceRequest) (domain.ListUtilityInvoiceResponse, error) {
	filter := domain.ListUtilityInvoiceFilter{
		ChargeID: strings.TrimSpace(req.ChargeID),
		RentalID: strings.TrimSpace(req.RentalID),
		TenantID: strings.TrimSpace(req.TenantID),
		Status:   strings.ToUpper(strings.TrimSpace(req.Status)),
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.ListInvoices(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListUtilityInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(invoice *domain.UtilityInvoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        invoice.ID.String(),
			CreatedAt: invoice.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	invoices := make([]domain.UtilityInvoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	resp := domain.ListUtilityInvoiceResponse{Invoices: invoices}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

// BillMonth runs the proration pass for one calendar month. Each utility
// type is billed independently so one failure does not abort the rest.
func (s *Service) BillMonth(ctx context.Context, month string) (domain.BillingResult, error) {
	month, err := normalizeMonth(month)
	if err != nil {
		return domain.BillingResult{}, err
	}
	from, _ := time.Parse("2006-01", month)
	to := from.AddDate(0, 1, 0)

	result := domain.BillingResult{
		Month:  month,
		Totals: map[domain.UtilityType]int64{},
	}
	var billErr error

	for _, utilityType := range domain.AllUtilityTypes {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if err := s.billType(ctx, utilityType, month, from, to, &result); err != nil {
			s.log.Warn("utility billing failed for type",
				zap.String("type", string(utilityType)),
				zap.String("month", month),
				zap.Error(err),
			)
			billErr = fmt.Errorf("%s: %w", utilityType, err)
		}
	}

	s.audit(ctx, "utility.month_billed", "utility_charge", 0, map[string]any{
		"month":            month,
		"charges_created":  result.ChargesCreated,
		"invoices_created": result.InvoicesCreated,
	})
	return result, billErr
}

func (s *Service) billType(ctx context.Context, utilityType domain.UtilityType, month string, from, to time.Time, result *domain.BillingResult) error {
	total, err := s.repo.SumExpenses(ctx, s.db, utilityType, from, to)
	if err != nil {
		return err
	}
	if total <= 0 {
		result.SkippedTypes = append(result.SkippedTypes, utilityType)
		return nil
	}

	eligible, err := s.rentalRepo.ActiveWithUtility(ctx, s.db, utilityType.IncludeColumn())
	if err != nil {
		return err
	}
	if len(eligible) == 0 {
		result.SkippedTypes = append(result.SkippedTypes, utilityType)
		return nil
	}

	now := time.Now().UTC()
	charge := &domain.UtilityCharge{
		ID:        s.genID.Generate(),
		Type:      utilityType,
		Month:     month,
		TotalCost: total,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertCharge(ctx, s.db, charge); err != nil {
		if !db.IsDuplicateKeyErr(err) {
			return err
		}
		// Month already billed for this type; reuse the charge so a
		// partial earlier run can still fill missing invoices.
		existing, findErr := s.repo.FindChargeByTypeMonth(ctx, s.db, utilityType, month)
		if findErr != nil {
			return findErr
		}
		if existing == nil {
			return err
		}
		charge = existing
	} else {
		result.ChargesCreated++
	}
	result.Totals[utilityType] = charge.TotalCost

	shares := domain.Prorate(charge.TotalCost, len(eligible))
	var typeErr error
	for i, rental := range eligible {
		invoice := &domain.UtilityInvoice{
			ID:        s.genID.Generate(),
			ChargeID:  charge.ID,
			RentalID:  rental.ID,
			TenantID:  rental.TenantID,
			Amount:    shares[i],
			Status:    domain.UtilityInvoiceUnpaid,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.InsertInvoice(ctx, s.db, invoice); err != nil {
			if db.IsDuplicateKeyErr(err) {
				continue
			}
			typeErr = err
			continue
		}
		result.InvoicesCreated++
		s.notifyTenant(ctx, rental.TenantID, charge, invoice)
	}
	return typeErr
}

func (s *Service) notifyTenant(ctx context.Context, tenantID snowflake.ID, charge *domain.UtilityCharge, invoice *domain.UtilityInvoice) {
	if s.notifSvc == nil {
		return
	}
	err := s.notifSvc.Publish(ctx, notifdomain.PublishRequest{
		TenantID: &tenantID,
		Title:    fmt.Sprintf("%s charge for %s", charge.Type, charge.Month),
		Body:     fmt.Sprintf("Your share of the %s %s cost is %.2f.", charge.Month, strings.ToLower(string(charge.Type)), float64(invoice.Amount)/100),
		Metadata: map[string]any{
			"utility_invoice_id": invoice.ID.String(),
			"charge_id":          charge.ID.String(),
			"amount":             invoice.Amount,
		},
	})
	if err != nil {
		s.log.Warn("utility notification failed",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) audit(ctx context.Context, action, targetType string, id snowflake.ID, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	var targetID *string
	if id != 0 {
		v := id.String()
		targetID = &v
	}
	_ = s.auditSvc.AuditLog(ctx, "", nil, action, targetType, targetID, metadata)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func normalizeMonth(value string) (string, error) {
	month := strings.TrimSpace(value)
	if _, err := time.Parse("2006-01", month); err != nil {
		return "", domain.ErrInvalidMonth
	}
	return month, nil
}
