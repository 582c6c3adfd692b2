package service

import (
	"context"
	"testing"

	"github.com/atriumhq/atrium/internal/bank/domain"
	"github.com/atriumhq/atrium/internal/bank/repository"
	utilitydomain "github.com/atriumhq/atrium/internal/utility/domain"
	utilityrepo "github.com/atriumhq/atrium/internal/utility/repository"
	"github.com/atriumhq/atrium/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	err = dbConn.AutoMigrate(
		&domain.BankAccount{},
		&domain.BankTransaction{},
		&utilitydomain.UtilityExpense{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	svc := New(Params{
		DB:          dbConn,
		Log:         zap.NewNop(),
		GenID:       node,
		Repo:        repository.Provide(),
		UtilityRepo: utilityrepo.Provide(),
	})
	return svc, dbConn
}

func TestWithdrawalCannotOverdraw(t *testing.T) {
	svc, _ := newTestService(t)

	account, err := svc.CreateAccount(context.Background(), domain.CreateAccountRequest{
		Name:           "Operations",
		AccountNumber:  "111-222",
		BankName:       "First National",
		OpeningBalance: 50_000,
	})
	if err != nil {
		t.Fatalf("failed to create account: %v", err)
	}

	_, err = svc.RecordTransaction(context.Background(), domain.RecordTransactionRequest{
		AccountID: account.ID.String(),
		Direction: "WITHDRAWAL",
		Amount:    60_000,
	})
	if err != domain.ErrInsufficientFunds {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	reloaded, err := svc.GetAccount(context.Background(), account.ID.String())
	if err != nil {
		t.Fatalf("failed to reload account: %v", err)
	}
	if reloaded.Balance != 50_000 {
		t.Fatalf("balance = %d, want unchanged 50000", reloaded.Balance)
	}
}

func TestTransactionsAdjustBalance(t *testing.T) {
	svc, _ := newTestService(t)

	account, err := svc.CreateAccount(context.Background(), domain.CreateAccountRequest{
		Name:          "Operations",
		AccountNumber: "111-333",
		BankName:      "First National",
	})
	if err != nil {
		t.Fatalf("failed to create account: %v", err)
	}

	if _, err := svc.RecordTransaction(context.Background(), domain.RecordTransactionRequest{
		AccountID: account.ID.String(),
		Direction: "DEPOSIT",
		Amount:    100_000,
		Purpose:   "rent collection",
	}); err != nil {
		t.Fatalf("failed to record deposit: %v", err)
	}
	if _, err := svc.RecordTransaction(context.Background(), domain.RecordTransactionRequest{
		AccountID: account.ID.String(),
		Direction: "WITHDRAWAL",
		Amount:    25_000,
		Purpose:   "supplies",
	}); err != nil {
		t.Fatalf("failed to record withdrawal: %v", err)
	}

	reloaded, err := svc.GetAccount(context.Background(), account.ID.String())
	if err != nil {
		t.Fatalf("failed to reload account: %v", err)
	}
	if reloaded.Balance != 75_000 {
		t.Fatalf("balance = %d, want 75000", reloaded.Balance)
	}
}

func TestDeactivateWithBalanceFails(t *testing.T) {
	svc, _ := newTestService(t)

	account, err := svc.CreateAccount(context.Background(), domain.CreateAccountRequest{
		Name:           "Reserve",
		AccountNumber:  "111-444",
		BankName:       "First National",
		OpeningBalance: 10_000,
	})
	if err != nil {
		t.Fatalf("failed to create account: %v", err)
	}

	status := "INACTIVE"
	_, err = svc.UpdateAccount(context.Background(), domain.UpdateAccountRequest{
		ID:     account.ID.String(),
		Status: &status,
	})
	if err != domain.ErrNonzeroBalance {
		t.Fatalf("expected ErrNonzeroBalance, got %v", err)
	}
}

func TestExpenseLinkedTransactionLocksExpense(t *testing.T) {
	svc, dbConn := newTestService(t)

	account, err := svc.CreateAccount(context.Background(), domain.CreateAccountRequest{
		Name:           "Operations",
		AccountNumber:  "111-555",
		BankName:       "First National",
		OpeningBalance: 500_000,
	})
	if err != nil {
		t.Fatalf("failed to create account: %v", err)
	}

	node, err := snowflake.NewNode(2)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}
	expense := utilitydomain.UtilityExpense{
		ID:     node.Generate(),
		Type:   utilitydomain.UtilityWater,
		Amount: 80_000,
	}
	if err := dbConn.Create(&expense).Error; err != nil {
		t.Fatalf("failed to seed expense: %v", err)
	}

	transaction, err := svc.RecordTransaction(context.Background(), domain.RecordTransactionRequest{
		AccountID:        account.ID.String(),
		Direction:        "WITHDRAWAL",
		Amount:           80_000,
		Purpose:          "water bill",
		UtilityExpenseID: expense.ID.String(),
	})
	if err != nil {
		t.Fatalf("failed to record transaction: %v", err)
	}

	var reloaded utilitydomain.UtilityExpense
	if err := dbConn.First(&reloaded, "id = ?", expense.ID).Error; err != nil {
		t.Fatalf("failed to reload expense: %v", err)
	}
	if reloaded.BankTransactionID == nil || *reloaded.BankTransactionID != transaction.ID {
		t.Fatal("expected expense to reference the bank transaction")
	}
}
