package service

import (
	"context"
	"testing"
	"time"

	invoicedomain "github.com/atriumhq/atrium/internal/invoice/domain"
	invoicerepo "github.com/atriumhq/atrium/internal/invoice/repository"
	"github.com/atriumhq/atrium/internal/payment/domain"
	"github.com/atriumhq/atrium/internal/payment/repository"
	utilitydomain "github.com/atriumhq/atrium/internal/utility/domain"
	utilityrepo "github.com/atriumhq/atrium/internal/utility/repository"
	"github.com/atriumhq/atrium/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	err = dbConn.AutoMigrate(
		&invoicedomain.Invoice{},
		&utilitydomain.UtilityInvoice{},
		&domain.Payment{},
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
		InvoiceRepo: invoicerepo.Provide(),
		UtilityRepo: utilityrepo.Provide(),
	})
	return svc, dbConn, node
}

func seedInvoice(t *testing.T, dbConn *gorm.DB, node *snowflake.Node, total int64) invoicedomain.Invoice {
	t.Helper()

	now := time.Now().UTC()
	invoice := invoicedomain.Invoice{
		ID:          node.Generate(),
		RentalID:    node.Generate(),
		TenantID:    node.Generate(),
		InvoiceDate: now,
		PeriodStart: now,
		PeriodEnd:   now.AddDate(0, 1, 0),
		DueDate:     now.AddDate(0, 0, 14),
		BaseRent:    total,
		TotalAmount: total,
		Status:      invoicedomain.InvoiceStatusUnpaid,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := dbConn.Create(&invoice).Error; err != nil {
		t.Fatalf("failed to seed invoice: %v", err)
	}
	return invoice
}

func TestConfirmMarksInvoicePaid(t *testing.T) {
	svc, dbConn, node := newTestService(t)
	invoice := seedInvoice(t, dbConn, node, 1_120_000)

	payment, err := svc.Create(context.Background(), domain.CreatePaymentRequest{
		InvoiceID: invoice.ID.String(),
		TenantID:  invoice.TenantID.String(),
		Amount:    1_120_000,
		Method:    "TRANSFER",
		Reference: "TRX-001",
	})
	if err != nil {
		t.Fatalf("failed to create payment: %v", err)
	}
	if payment.Status != domain.StatusPending {
		t.Fatalf("expected PENDING, got %s", payment.Status)
	}

	confirmed, err := svc.Confirm(context.Background(), domain.ConfirmPaymentRequest{
		ID:          payment.ID.String(),
		ConfirmedBy: node.Generate(),
	})
	if err != nil {
		t.Fatalf("failed to confirm payment: %v", err)
	}
	if confirmed.Status != domain.StatusConfirmed {
		t.Fatalf("expected CONFIRMED, got %s", confirmed.Status)
	}
	if confirmed.ConfirmedAt == nil {
		t.Fatal("expected confirmed_at to be set")
	}

	var updated invoicedomain.Invoice
	if err := dbConn.First(&updated, "id = ?", invoice.ID).Error; err != nil {
		t.Fatalf("failed to reload invoice: %v", err)
	}
	if updated.Status != invoicedomain.InvoiceStatusPaid {
		t.Fatalf("expected invoice PAID, got %s", updated.Status)
	}
	if updated.PaidAt == nil {
		t.Fatal("expected paid_at to be set")
	}
}

func TestConfirmPartialPaymentKeepsInvoiceUnpaid(t *testing.T) {
	svc, dbConn, node := newTestService(t)
	invoice := seedInvoice(t, dbConn, node, 1_120_000)

	payment, err := svc.Create(context.Background(), domain.CreatePaymentRequest{
		InvoiceID: invoice.ID.String(),
		TenantID:  invoice.TenantID.String(),
		Amount:    500_000,
		Method:    "CASH",
	})
	if err != nil {
		t.Fatalf("failed to create payment: %v", err)
	}

	if _, err := svc.Confirm(context.Background(), domain.ConfirmPaymentRequest{
		ID:          payment.ID.String(),
		ConfirmedBy: node.Generate(),
	}); err != nil {
		t.Fatalf("failed to confirm payment: %v", err)
	}

	var updated invoicedomain.Invoice
	if err := dbConn.First(&updated, "id = ?", invoice.ID).Error; err != nil {
		t.Fatalf("failed to reload invoice: %v", err)
	}
	if updated.Status != invoicedomain.InvoiceStatusUnpaid {
		t.Fatalf("expected invoice UNPAID after partial payment, got %s", updated.Status)
	}
}

func TestConfirmTwiceFails(t *testing.T) {
	svc, dbConn, node := newTestService(t)
	invoice := seedInvoice(t, dbConn, node, 100_000)

	payment, err := svc.Create(context.Background(), domain.CreatePaymentRequest{
		InvoiceID: invoice.ID.String(),
		TenantID:  invoice.TenantID.String(),
		Amount:    100_000,
		Method:    "CASH",
	})
	if err != nil {
		t.Fatalf("failed to create payment: %v", err)
	}

	if _, err := svc.Confirm(context.Background(), domain.ConfirmPaymentRequest{
		ID:          payment.ID.String(),
		ConfirmedBy: node.Generate(),
	}); err != nil {
		t.Fatalf("failed to confirm payment: %v", err)
	}

	_, err = svc.Confirm(context.Background(), domain.ConfirmPaymentRequest{
		ID:          payment.ID.String(),
		ConfirmedBy: node.Generate(),
	})
	if err != domain.ErrNotPending {
		t.Fatalf("expected ErrNotPending, got %v", err)
	}
}

func TestCreateRequiresExactlyOneTarget(t *testing.T) {
	svc, _, node := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreatePaymentRequest{
		TenantID: node.Generate().String(),
		Amount:   100,
		Method:   "CASH",
	})
	if err != domain.ErrInvalidTarget {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}

	_, err = svc.Create(context.Background(), domain.CreatePaymentRequest{
		InvoiceID:        node.Generate().String(),
		UtilityInvoiceID: node.Generate().String(),
		TenantID:         node.Generate().String(),
		Amount:           100,
		Method:           "CASH",
	})
	if err != domain.ErrInvalidTarget {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
}
