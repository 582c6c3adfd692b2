package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"

	invoicedomain "github.com/atriumhq/atrium/internal/invoice/domain"
	invoicerepo "github.com/atriumhq/atrium/internal/invoice/repository"
	notifdomain "github.com/atriumhq/atrium/internal/notification/domain"
	"github.com/atriumhq/atrium/internal/overdue"
	paymentdomain "github.com/atriumhq/atrium/internal/payment/domain"
	rentaldomain "github.com/atriumhq/atrium/internal/rental/domain"
	rentalrepo "github.com/atriumhq/atrium/internal/rental/repository"
	tenantdomain "github.com/atriumhq/atrium/internal/tenant/domain"
	tenantrepo "github.com/atriumhq/atrium/internal/tenant/repository"
	utilitydomain "github.com/atriumhq/atrium/internal/utility/domain"
	"github.com/atriumhq/atrium/pkg/db"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type fakeUtilityService struct {
	utilitydomain.Service
	billedMonths []string
}

func (s *fakeUtilityService) BillMonth(_ context.Context, month string) (utilitydomain.BillingResult, error) {
	s.billedMonths = append(s.billedMonths, month)
	return utilitydomain.BillingResult{Month: month}, nil
}

type fakeNotificationService struct {
	published []notifdomain.PublishRequest
}

func (s *fakeNotificationService) Publish(_ context.Context, req notifdomain.PublishRequest) error {
	s.published = append(s.published, req)
	return nil
}

func (s *fakeNotificationService) List(context.Context, notifdomain.ListNotificationRequest) (notifdomain.ListNotificationResponse, error) {
	return notifdomain.ListNotificationResponse{}, nil
}

func (s *fakeNotificationService) MarkRead(context.Context, snowflake.ID, string) error {
	return nil
}

func (s *fakeNotificationService) MarkAllRead(context.Context, snowflake.ID) error {
	return nil
}

func newTestScheduler(t *testing.T) (*Scheduler, *gorm.DB, *fakeClock, *fakeUtilityService, *fakeNotificationService) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	err = dbConn.AutoMigrate(
		&invoicedomain.Invoice{},
		&rentaldomain.Rental{},
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

	clk := &fakeClock{now: time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)}
	utilitySvc := &fakeUtilityService{}
	notifSvc := &fakeNotificationService{}

	invoiceRepo := invoicerepo.Provide()
	scanner := overdue.New(overdue.Params{
		DB:          dbConn,
		Log:         zap.NewNop(),
		Clock:       clk,
		InvoiceRepo: invoiceRepo,
		TenantRepo:  tenantrepo.Provide(),
	})

	sched, err := New(Params{
		DB:              dbConn,
		Log:             zap.NewNop(),
		GenID:           node,
		Clock:           clk,
		Scanner:         scanner,
		UtilitySvc:      utilitySvc,
		InvoiceRepo:     invoiceRepo,
		RentalRepo:      rentalrepo.Provide(),
		NotificationSvc: notifSvc,
	})
	if err != nil {
		t.Fatalf("failed to build scheduler: %v", err)
	}
	return sched, dbConn, clk, utilitySvc, notifSvc
}

func TestUtilityInvoicesJobBillsPreviousMonth(t *testing.T) {
	sched, _, clk, utilitySvc, _ := newTestScheduler(t)
	clk.now = time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)

	if err := sched.UtilityInvoicesJob(context.Background()); err != nil {
		t.Fatalf("job failed: %v", err)
	}

	if len(utilitySvc.billedMonths) != 1 {
		t.Fatalf("expected one billed month, got %d", len(utilitySvc.billedMonths))
	}
	if utilitySvc.billedMonths[0] != "2025-02" {
		t.Fatalf("expected month 2025-02, got %s", utilitySvc.billedMonths[0])
	}
}

func TestUtilityInvoicesJobWaitsForBillDay(t *testing.T) {
	sched, _, clk, utilitySvc, _ := newTestScheduler(t)
	clk.now = time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)

	if err := sched.UtilityInvoicesJob(context.Background()); err != nil {
		t.Fatalf("job failed: %v", err)
	}

	if len(utilitySvc.billedMonths) != 0 {
		t.Fatalf("expected no billing before bill day, got %v", utilitySvc.billedMonths)
	}
}

func TestPaymentRemindersJobNotifiesUpcomingInvoices(t *testing.T) {
	sched, dbConn, clk, _, notifSvc := newTestScheduler(t)
	now := clk.now

	node, err := snowflake.NewNode(2)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}
	tenantID := node.Generate()
	dueSoon := &invoicedomain.Invoice{
		ID:          node.Generate(),
		RentalID:    node.Generate(),
		TenantID:    tenantID,
		PeriodStart: now.AddDate(0, -1, 0),
		PeriodEnd:   now,
		DueDate:     now.Add(48 * time.Hour),
		TotalAmount: 1_000_000,
		Status:      invoicedomain.InvoiceStatusUnpaid,
	}
	dueLater := &invoicedomain.Invoice{
		ID:          node.Generate(),
		RentalID:    node.Generate(),
		TenantID:    tenantID,
		PeriodStart: now.AddDate(0, -1, 0),
		PeriodEnd:   now,
		DueDate:     now.Add(10 * 24 * time.Hour),
		TotalAmount: 1_000_000,
		Status:      invoicedomain.InvoiceStatusUnpaid,
	}
	if err := dbConn.Create(dueSoon).Error; err != nil {
		t.Fatalf("failed to insert invoice: %v", err)
	}
	if err := dbConn.Create(dueLater).Error; err != nil {
		t.Fatalf("failed to insert invoice: %v", err)
	}

	if err := sched.PaymentRemindersJob(context.Background()); err != nil {
		t.Fatalf("job failed: %v", err)
	}

	if len(notifSvc.published) != 1 {
		t.Fatalf("expected one reminder, got %d", len(notifSvc.published))
	}
	req := notifSvc.published[0]
	if req.TenantID == nil || *req.TenantID != tenantID {
		t.Fatalf("expected reminder targeted at tenant %s", tenantID)
	}
	if req.Metadata["invoice_id"] != dueSoon.ID.String() {
		t.Fatalf("expected reminder for invoice %s, got %v", dueSoon.ID, req.Metadata["invoice_id"])
	}
}

func TestRenewalRemindersJobNotifiesTenantAndStaff(t *testing.T) {
	sched, dbConn, clk, _, notifSvc := newTestScheduler(t)
	now := clk.now

	node, err := snowflake.NewNode(3)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}
	rental := &rentaldomain.Rental{
		ID:        node.Generate(),
		TenantID:  node.Generate(),
		RoomID:    node.Generate(),
		StartDate: now.AddDate(-1, 0, 0),
		EndDate:   now.AddDate(0, 0, 14),
		Status:    rentaldomain.RentalStatusActive,
	}
	if err := dbConn.Create(rental).Error; err != nil {
		t.Fatalf("failed to insert rental: %v", err)
	}

	if err := sched.RenewalRemindersJob(context.Background()); err != nil {
		t.Fatalf("job failed: %v", err)
	}

	if len(notifSvc.published) != 2 {
		t.Fatalf("expected tenant and staff notifications, got %d", len(notifSvc.published))
	}
	if notifSvc.published[0].TenantID == nil || *notifSvc.published[0].TenantID != rental.TenantID {
		t.Fatalf("expected first notification targeted at tenant %s", rental.TenantID)
	}
	if len(notifSvc.published[1].Roles) == 0 {
		t.Fatalf("expected second notification targeted at staff roles")
	}
}

func TestJobDueGating(t *testing.T) {
	sched, _, clk, _, _ := newTestScheduler(t)

	if !sched.jobDue("overdue_scan", 12*time.Hour) {
		t.Fatalf("expected first run to be due")
	}
	if sched.jobDue("overdue_scan", 12*time.Hour) {
		t.Fatalf("expected second run within interval to be skipped")
	}

	clk.now = clk.now.Add(13 * time.Hour)
	if !sched.jobDue("overdue_scan", 12*time.Hour) {
		t.Fatalf("expected run after interval to be due")
	}
}
