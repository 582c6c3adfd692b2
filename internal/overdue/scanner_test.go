package overdue

import (
	"context"
	"strings"
	"testing"
	"time"

	invoicedomain "github.com/atriumhq/atrium/internal/invoice/domain"
	invoicerepo "github.com/atriumhq/atrium/internal/invoice/repository"
	paymentdomain "github.com/atriumhq/atrium/internal/payment/domain"
	tenantdomain "github.com/atriumhq/atrium/internal/tenant/domain"
	tenantrepo "github.com/atriumhq/atrium/internal/tenant/repository"
	"github.com/atriumhq/atrium/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestScanner(t *testing.T) (*Scanner, *gorm.DB, *snowflake.Node, *fakeClock) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}

	// SQLite support hack: remove FOR UPDATE clauses
	stripForUpdate := func(d *gorm.DB) {
		sql := d.Statement.SQL.String()
		if strings.Contains(sql, "FOR UPDATE") {
			newSQL := strings.ReplaceAll(sql, "FOR UPDATE SKIP LOCKED", "")
			newSQL = strings.ReplaceAll(newSQL, "FOR UPDATE", "")
			d.Statement.SQL.Reset()
			d.Statement.SQL.WriteString(newSQL)
		}
	}
	dbConn.Callback().Query().Before("gorm:query").Register("sqlite_skip_locked", stripForUpdate)
	dbConn.Callback().Row().Before("gorm:row").Register("sqlite_skip_locked_row", stripForUpdate)

	err = dbConn.AutoMigrate(
		&invoicedomain.Invoice{},
		&tenantdomain.Tenant{},
		&paymentdomain.Payment{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	clk := &fakeClock{now: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)}
	scanner := New(Params{
		DB:          dbConn,
		Log:         zap.NewNop(),
		Clock:       clk,
		InvoiceRepo: invoicerepo.Provide(),
		TenantRepo:  tenantrepo.Provide(),
	})
	return scanner, dbConn, node, clk
}

func seedTenant(t *testing.T, dbConn *gorm.DB, node *snowflake.Node) tenantdomain.Tenant {
	t.Helper()

	tenant := tenantdomain.Tenant{
		ID:     node.Generate(),
		Name:   "Corner Cafe",
		Email:  "cafe@example.com",
		Status: tenantdomain.TenantStatusActive,
	}
	if err := dbConn.Create(&tenant).Error; err != nil {
		t.Fatalf("failed to seed tenant: %v", err)
	}
	return tenant
}

func seedDueInvoice(t *testing.T, dbConn *gorm.DB, node *snowflake.Node, tenantID snowflake.ID, due time.Time, total int64) invoicedomain.Invoice {
	t.Helper()

	invoice := invoicedomain.Invoice{
		ID:          node.Generate(),
		RentalID:    node.Generate(),
		TenantID:    tenantID,
		InvoiceDate: due.AddDate(0, 0, -14),
		PeriodStart: due.AddDate(0, -1, 0),
		PeriodEnd:   due,
		DueDate:     due,
		BaseRent:    total,
		TotalAmount: total,
		Status:      invoicedomain.InvoiceStatusUnpaid,
		CreatedAt:   due.AddDate(0, 0, -14),
		UpdatedAt:   due.AddDate(0, 0, -14),
	}
	if err := dbConn.Create(&invoice).Error; err != nil {
		t.Fatalf("failed to seed invoice: %v", err)
	}
	return invoice
}

func TestScanMarksOverdueWithoutWarningOffThreshold(t *testing.T) {
	scanner, dbConn, node, clk := newTestScanner(t)
	tenant := seedTenant(t, dbConn, node)

	// Due 10 days ago: overdue, but day 10 is not a warning threshold.
	invoice := seedDueInvoice(t, dbConn, node, tenant.ID, clk.now.AddDate(0, 0, -10), 1_120_000)

	result, err := scanner.Scan(context.Background(), 10)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if result.MarkedOverdue != 1 {
		t.Fatalf("marked overdue = %d, want 1", result.MarkedOverdue)
	}
	if result.WarningsSent != 0 {
		t.Fatalf("warnings sent = %d, want 0", result.WarningsSent)
	}

	var updated invoicedomain.Invoice
	if err := dbConn.First(&updated, "id = ?", invoice.ID).Error; err != nil {
		t.Fatalf("failed to reload invoice: %v", err)
	}
	if updated.Status != invoicedomain.InvoiceStatusOverdue {
		t.Fatalf("status = %s, want OVERDUE", updated.Status)
	}
	if updated.OverdueDays != 10 {
		t.Fatalf("overdue_days = %d, want 10", updated.OverdueDays)
	}
	if updated.WarningSent {
		t.Fatal("expected warning_sent to stay false on day 10")
	}
	if updated.OverdueSince == nil {
		t.Fatal("expected overdue_since to be set")
	}
}

func TestScanWarnsOnceAtThreshold(t *testing.T) {
	scanner, dbConn, node, clk := newTestScanner(t)
	tenant := seedTenant(t, dbConn, node)
	invoice := seedDueInvoice(t, dbConn, node, tenant.ID, clk.now.AddDate(0, 0, -7), 500_000)

	result, err := scanner.Scan(context.Background(), 10)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if result.WarningsSent != 1 {
		t.Fatalf("warnings sent = %d, want 1", result.WarningsSent)
	}

	// A later scan on the same day must not warn again.
	clk.now = clk.now.Add(2 * time.Hour)
	result, err = scanner.Scan(context.Background(), 10)
	if err != nil {
		t.Fatalf("second scan failed: %v", err)
	}
	if result.WarningsSent != 0 {
		t.Fatalf("second scan warnings = %d, want 0", result.WarningsSent)
	}

	var updated invoicedomain.Invoice
	if err := dbConn.First(&updated, "id = ?", invoice.ID).Error; err != nil {
		t.Fatalf("failed to reload invoice: %v", err)
	}
	if !updated.WarningSent {
		t.Fatal("expected warning_sent after threshold scan")
	}
}

func TestScanSettlesFullyPaidInvoice(t *testing.T) {
	scanner, dbConn, node, clk := newTestScanner(t)
	tenant := seedTenant(t, dbConn, node)
	invoice := seedDueInvoice(t, dbConn, node, tenant.ID, clk.now.AddDate(0, 0, -3), 800_000)

	invoiceID := invoice.ID
	payment := paymentdomain.Payment{
		ID:        node.Generate(),
		InvoiceID: &invoiceID,
		TenantID:  tenant.ID,
		Amount:    800_000,
		Method:    paymentdomain.MethodTransfer,
		Status:    paymentdomain.StatusConfirmed,
	}
	if err := dbConn.Create(&payment).Error; err != nil {
		t.Fatalf("failed to seed payment: %v", err)
	}

	result, err := scanner.Scan(context.Background(), 10)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if result.MarkedPaid != 1 {
		t.Fatalf("marked paid = %d, want 1", result.MarkedPaid)
	}
	if result.MarkedOverdue != 0 {
		t.Fatalf("marked overdue = %d, want 0", result.MarkedOverdue)
	}

	var updated invoicedomain.Invoice
	if err := dbConn.First(&updated, "id = ?", invoice.ID).Error; err != nil {
		t.Fatalf("failed to reload invoice: %v", err)
	}
	if updated.Status != invoicedomain.InvoiceStatusPaid {
		t.Fatalf("status = %s, want PAID", updated.Status)
	}
	if updated.IsOverdue {
		t.Fatal("expected is_overdue false on settled invoice")
	}
}

func TestScanRebuildsTenantAggregates(t *testing.T) {
	scanner, dbConn, node, clk := newTestScanner(t)
	tenant := seedTenant(t, dbConn, node)
	seedDueInvoice(t, dbConn, node, tenant.ID, clk.now.AddDate(0, 0, -10), 300_000)
	seedDueInvoice(t, dbConn, node, tenant.ID, clk.now.AddDate(0, 0, -40), 200_000)

	result, err := scanner.Scan(context.Background(), 10)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if result.TenantsUpdated != 1 {
		t.Fatalf("tenants updated = %d, want 1", result.TenantsUpdated)
	}

	var updated tenantdomain.Tenant
	if err := dbConn.First(&updated, "id = ?", tenant.ID).Error; err != nil {
		t.Fatalf("failed to reload tenant: %v", err)
	}
	if !updated.HasOverdueRent {
		t.Fatal("expected has_overdue_rent true")
	}
	if updated.OverdueCount != 2 {
		t.Fatalf("overdue_count = %d, want 2", updated.OverdueCount)
	}
	if updated.TotalOverdue != 500_000 {
		t.Fatalf("total_overdue_amount = %d, want 500000", updated.TotalOverdue)
	}
}
