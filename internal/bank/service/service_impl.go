package service

import (
	"context"
	"strings"
	"time"

	auditdomain "github.com/atriumhq/atrium/internal/audit/domain"
	"github.com/atriumhq/atrium/internal/bank/domain"
	utilitydomain "github.com/atriumhq/atrium/internal/utility/domain"
	"github.com/atriumhq/atrium/pkg/db"
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
	UtilityRepo utilitydomain.Repository
	AuditSvc    auditdomain.Service `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	utilityRepo utilitydomain.Repository
	auditSvc    auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("bank.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		utilityRepo: p.UtilityRepo,
		auditSvc:    p.AuditSvc,
	}
}

func (s *Service) CreateAccount(ctx context.Context, req domain.CreateAccountRequest) (domain.BankAccount, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.BankAccount{}, domain.ErrInvalidName
	}
	accountNumber := strings.TrimSpace(req.AccountNumber)
	if accountNumber == "" {
		return domain.BankAccount{}, domain.ErrInvalidAccount
	}
	if req.OpeningBalance < 0 {
		return domain.BankAccount{}, domain.ErrInvalidAmount
	}

	now := time.Now().UTC()
	account := domain.BankAccount{
		ID:            s.genID.Generate(),
		Name:          name,
		AccountNumber: accountNumber,
		BankName:      strings.TrimSpace(req.BankName),
		Balance:       req.OpeningBalance,
		Status:        domain.AccountActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.InsertAccount(ctx, s.db, &account); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.BankAccount{}, domain.ErrDuplicateAccount
		}
		return domain.BankAccount{}, err
	}

	s.audit(ctx, "bank.account_created", "bank_account", account.ID, map[string]any{
		"name": account.Name,
	})
	return account, nil
}

func (s *Service) UpdateAccount(ctx context.Context, req domain.UpdateAccountRequest) (domain.BankAccount, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.BankAccount{}, err
	}

	existing, err := s.repo.FindAccountByID(ctx, s.db, id)
	if err != nil {
		return domain.BankAccount{}, err
	}
	if existing == nil {
		return domain.BankAccount{}, domain.ErrNotFound
	}

	fields := map[string]any{"updated_at": time.Now().UTC()}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.BankAccount{}, domain.ErrInvalidName
		}
		fields["name"] = name
	}
	if req.BankName != nil {
		fields["bank_name"] = strings.TrimSpace(*req.BankName)
	}
	if req.Status != nil {
		status := domain.AccountStatus(strings.ToUpper(strings.TrimSpace(*req.Status)))
		if status != domain.AccountActive && status != domain.AccountInactive {
			return domain.BankAccount{}, domain.ErrInvalidStatus
		}
		if status == domain.AccountInactive && existing.Balance != 0 {
			return domain.BankAccount{}, domain.ErrNonzeroBalance
		}
		fields["status"] = status
	}

	if err := s.repo.UpdateAccountFields(ctx, s.db, id, fields); err != nil {
		return domain.BankAccount{}, err
	}

	updated, err := s.repo.FindAccountByID(ctx, s.db, id)
	if err != nil {
		return domain.BankAccount{}, err
	}
	if updated == nil {
		return domain.BankAccount{}, domain.ErrNotFound
	}

	s.audit(ctx, "bank.account_updated", "bank_account", id, nil)
	return *updated, nil
}

func (s *Service) ListAccounts(ctx context.Context, req domain.ListAccountRequest) (domain.ListAccountResponse, error) {
	filter := domain.ListAccountFilter{
		Status: strings.ToUpper(strings.TrimSpace(req.Status)),
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.ListAccounts(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListAccountResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(account *domain.BankAccount) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        account.ID.String(),
			CreatedAt: account.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	accounts := make([]domain.BankAccount, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		accounts = append(accounts, *item)
	}

	resp := domain.ListAccountResponse{Accounts: accounts}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetAccount(ctx context.Context, rawID string) (domain.BankAccount, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return domain.BankAccount{}, err
	}

	item, err := s.repo.FindAccountByID(ctx, s.db, id)
	if err != nil {
		return domain.BankAccount{}, err
	}
	if item == nil {
		return domain.BankAccount{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) RecordTransaction(ctx context.Context, req domain.RecordTransactionRequest) (domain.BankTransaction, error) {
	accountID, err := s.parseID(req.AccountID)
	if err != nil {
		return domain.BankTransaction{}, err
	}
	direction := domain.Direction(strings.ToUpper(strings.TrimSpace(req.Direction)))
	if !direction.Valid() {
		return domain.BankTransaction{}, domain.ErrInvalidDirection
	}
	if req.Amount <= 0 {
		return domain.BankTransaction{}, domain.ErrInvalidAmount
	}

	account, err := s.repo.FindAccountByID(ctx, s.db, accountID)
	if err != nil {
		return domain.BankTransaction{}, err
	}
	if account == nil {
		return domain.BankTransaction{}, domain.ErrNotFound
	}
	if account.Status != domain.AccountActive {
		return domain.BankTransaction{}, domain.ErrAccountInactive
	}

	var expenseID *snowflake.ID
	if raw := strings.TrimSpace(req.UtilityExpenseID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil || parsed == 0 {
			return domain.BankTransaction{}, domain.ErrInvalidID
		}
		expense, err := s.utilityRepo.FindExpenseByID(ctx, s.db, parsed)
		if err != nil {
			return domain.BankTransaction{}, err
		}
		if expense == nil {
			return domain.BankTransaction{}, domain.ErrExpenseUnknown
		}
		expenseID = &parsed
	}

	now := time.Now().UTC()
	recordedBy := req.RecordedBy
	transaction := domain.BankTransaction{
		ID:               s.genID.Generate(),
		AccountID:        accountID,
		Direction:        direction,
		Amount:           req.Amount,
		Purpose:          strings.TrimSpace(req.Purpose),
		UtilityExpenseID: expenseID,
		CreatedAt:        now,
	}
	if recordedBy != 0 {
		transaction.RecordedBy = &recordedBy
	}

	delta := req.Amount
	if direction == domain.DirectionWithdrawal {
		delta = -delta
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.AdjustBalance(ctx, tx, accountID, delta); err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.ErrInsufficientFunds
			}
			return err
		}
		if err := s.repo.InsertTransaction(ctx, tx, &transaction); err != nil {
			return err
		}
		if expenseID != nil {
			return s.utilityRepo.UpdateExpenseFields(ctx, tx, *expenseID, map[string]any{
				"bank_transaction_id": transaction.ID,
				"updated_at":          now,
			})
		}
		return nil
	})
	if err != nil {
		return domain.BankTransaction{}, err
	}

	s.audit(ctx, "bank.transaction_recorded", "bank_transaction", transaction.ID, map[string]any{
		"account_id": accountID.String(),
		"direction":  string(direction),
		"amount":     req.Amount,
	})
	return transaction, nil
}

func (s *Service) ListTransactions(ctx context.Context, req domain.ListTransactionRequest) (domain.ListTransactionResponse, error) {
	filter := domain.ListTransactionFilter{
		AccountID: strings.TrimSpace(req.AccountID),
		Direction: strings.ToUpper(strings.TrimSpace(req.Direction)),
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.ListTransactions(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListTransactionResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(transaction *domain.BankTransaction) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        transaction.ID.String(),
			CreatedAt: transaction.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	transactions := make([]domain.BankTransaction, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		transactions = append(transactions, *item)
	}

	resp := domain.ListTransactionResponse{Transactions: transactions}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) audit(ctx context.Context, action, targetType string, id snowflake.ID, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	targetID := id.String()
	_ = s.auditSvc.AuditLog(ctx, "", nil, action, targetType, &targetID, metadata)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
