package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	auditdomain "github.com/atriumhq/atrium/internal/audit/domain"
	authdomain "github.com/atriumhq/atrium/internal/auth/domain"
	"github.com/atriumhq/atrium/internal/auth/session"
	"github.com/atriumhq/atrium/internal/authorization"
	bankdomain "github.com/atriumhq/atrium/internal/bank/domain"
	"github.com/atriumhq/atrium/internal/config"
	invoicedomain "github.com/atriumhq/atrium/internal/invoice/domain"
	maintenancedomain "github.com/atriumhq/atrium/internal/maintenance/domain"
	notifdomain "github.com/atriumhq/atrium/internal/notification/domain"
	notifhub "github.com/atriumhq/atrium/internal/notification/hub"
	"github.com/atriumhq/atrium/internal/observability"
	obslogger "github.com/atriumhq/atrium/internal/observability/logger"
	obsmetrics "github.com/atriumhq/atrium/internal/observability/metrics"
	obstracing "github.com/atriumhq/atrium/internal/observability/tracing"
	"github.com/atriumhq/atrium/internal/overdue"
	paymentdomain "github.com/atriumhq/atrium/internal/payment/domain"
	"github.com/atriumhq/atrium/internal/providers/pdf"
	"github.com/atriumhq/atrium/internal/ratelimit"
	rentaldomain "github.com/atriumhq/atrium/internal/rental/domain"
	roomdomain "github.com/atriumhq/atrium/internal/room/domain"
	tenantdomain "github.com/atriumhq/atrium/internal/tenant/domain"
	utilitydomain "github.com/atriumhq/atrium/internal/utility/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	db             *gorm.DB
	genID          *snowflake.Node
	sessions       *session.Manager
	authsvc        authdomain.Service
	authzSvc       authorization.Service
	auditSvc       auditdomain.Service
	tenantSvc      tenantdomain.Service
	roomSvc        roomdomain.Service
	rentalSvc      rentaldomain.Service
	invoiceSvc     invoicedomain.Service
	paymentSvc     paymentdomain.Service
	utilitySvc     utilitydomain.Service
	bankSvc        bankdomain.Service
	maintenanceSvc maintenancedomain.Service
	notifSvc       notifdomain.Service
	notifHub       *notifhub.Hub
	scanner        *overdue.Scanner
	pdfProvider    pdf.Provider
	loginLimiter   *ratelimit.LoginLimiter
	obsMetrics     *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	DB             *gorm.DB
	GenID          *snowflake.Node
	Sessions       *session.Manager
	Authsvc        authdomain.Service
	AuthzSvc       authorization.Service
	AuditSvc       auditdomain.Service
	TenantSvc      tenantdomain.Service
	RoomSvc        roomdomain.Service
	RentalSvc      rentaldomain.Service
	InvoiceSvc     invoicedomain.Service
	PaymentSvc     paymentdomain.Service
	UtilitySvc     utilitydomain.Service
	BankSvc        bankdomain.Service
	MaintenanceSvc maintenancedomain.Service
	NotifSvc       notifdomain.Service
	NotifHub       *notifhub.Hub              `optional:"true"`
	Scanner        *overdue.Scanner           `optional:"true"`
	PDFProvider    pdf.Provider               `optional:"true"`
	LoginLimiter   *ratelimit.LoginLimiter    `optional:"true"`
	ObsMetrics     *obsmetrics.Metrics        `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		db:             p.DB,
		genID:          p.GenID,
		sessions:       p.Sessions,
		authsvc:        p.Authsvc,
		authzSvc:       p.AuthzSvc,
		auditSvc:       p.AuditSvc,
		tenantSvc:      p.TenantSvc,
		roomSvc:        p.RoomSvc,
		rentalSvc:      p.RentalSvc,
		invoiceSvc:     p.InvoiceSvc,
		paymentSvc:     p.PaymentSvc,
		utilitySvc:     p.UtilitySvc,
		bankSvc:        p.BankSvc,
		maintenanceSvc: p.MaintenanceSvc,
		notifSvc:       p.NotifSvc,
		notifHub:       p.NotifHub,
		scanner:        p.Scanner,
		pdfProvider:    p.PDFProvider,
		loginLimiter:   p.LoginLimiter,
		obsMetrics:     p.ObsMetrics,
	}
}

func registerRoutes(s *Server) {
	s.registerAuthRoutes()
	s.registerAPIRoutes()
	s.registerAdminRoutes()
	s.registerUploadRoutes()
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.AuthRequired(), s.Me)
	auth.POST("/change-password", s.AuthRequired(), s.ChangePassword)
	auth.POST("/users", s.AuthRequired(), s.authorize(authorization.ObjectUser, authorization.ActionUserManage), s.CreateUser)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	// -------- Tenants --------
	api.GET("/tenants", s.authorize(authorization.ObjectTenant, authorization.ActionView), s.ListTenants)
	api.POST("/tenants", s.authorize(authorization.ObjectTenant, authorization.ActionCreate), s.CreateTenant)
	api.GET("/tenants/:id", s.authorize(authorization.ObjectTenant, authorization.ActionView), s.GetTenantByID)
	api.PATCH("/tenants/:id", s.authorize(authorization.ObjectTenant, authorization.ActionUpdate), s.UpdateTenant)
	api.DELETE("/tenants/:id", s.authorize(authorization.ObjectTenant, authorization.ActionDelete), s.DeleteTenant)

	// -------- Rooms --------
	api.GET("/rooms", s.authorize(authorization.ObjectRoom, authorization.ActionView), s.ListRooms)
	api.POST("/rooms", s.authorize(authorization.ObjectRoom, authorization.ActionCreate), s.CreateRoom)
	api.GET("/rooms/:id", s.authorize(authorization.ObjectRoom, authorization.ActionView), s.GetRoomByID)
	api.PATCH("/rooms/:id", s.authorize(authorization.ObjectRoom, authorization.ActionUpdate), s.UpdateRoom)
	api.DELETE("/rooms/:id", s.authorize(authorization.ObjectRoom, authorization.ActionDelete), s.DeleteRoom)

	// -------- Rentals --------
	api.GET("/rentals", s.authorize(authorization.ObjectRental, authorization.ActionView), s.ListRentals)
	api.POST("/rentals", s.authorize(authorization.ObjectRental, authorization.ActionCreate), s.CreateRental)
	api.GET("/rentals/:id", s.authorize(authorization.ObjectRental, authorization.ActionView), s.GetRentalByID)
	api.PATCH("/rentals/:id", s.authorize(authorization.ObjectRental, authorization.ActionUpdate), s.UpdateRental)
	api.POST("/rentals/:id/terminate", s.authorize(authorization.ObjectRental, authorization.ActionRentalTerminate), s.TerminateRental)

	// -------- Invoices --------
	api.GET("/invoices", s.authorize(authorization.ObjectInvoice, authorization.ActionView), s.ListInvoices)
	api.POST("/invoices", s.authorize(authorization.ObjectInvoice, authorization.ActionCreate), s.GenerateInvoice)
	api.GET("/invoices/:id", s.authorize(authorization.ObjectInvoice, authorization.ActionView), s.GetInvoiceByID)
	api.GET("/invoices/:id/pdf", s.authorize(authorization.ObjectInvoice, authorization.ActionView), s.RenderInvoicePDF)

	// -------- Payments --------
	api.GET("/payments", s.authorize(authorization.ObjectPayment, authorization.ActionView), s.ListPayments)
	api.POST("/payments", s.authorize(authorization.ObjectPayment, authorization.ActionCreate), s.CreatePayment)
	api.GET("/payments/:id", s.authorize(authorization.ObjectPayment, authorization.ActionView), s.GetPaymentByID)
	api.POST("/payments/:id/confirm", s.authorize(authorization.ObjectPayment, authorization.ActionPaymentConfirm), s.ConfirmPayment)
	api.POST("/payments/:id/reject", s.authorize(authorization.ObjectPayment, authorization.ActionPaymentReject), s.RejectPayment)

	// -------- Utilities --------
	api.GET("/utilities/expenses", s.authorize(authorization.ObjectUtility, authorization.ActionView), s.ListUtilityExpenses)
	api.POST("/utilities/expenses", s.authorize(authorization.ObjectUtility, authorization.ActionCreate), s.CreateUtilityExpense)
	api.PATCH("/utilities/expenses/:id", s.authorize(authorization.ObjectUtility, authorization.ActionUpdate), s.UpdateUtilityExpense)
	api.DELETE("/utilities/expenses/:id", s.authorize(authorization.ObjectUtility, authorization.ActionUpdate), s.DeleteUtilityExpense)
	api.GET("/utilities/charges", s.authorize(authorization.ObjectUtility, authorization.ActionView), s.ListUtilityCharges)
	api.POST("/utilities/charges", s.authorize(authorization.ObjectUtility, authorization.ActionCreate), s.CreateUtilityCharge)
	api.GET("/utilities/invoices", s.authorize(authorization.ObjectUtility, authorization.ActionView), s.ListUtilityInvoices)

	// -------- Bank --------
	api.GET("/bank/accounts", s.authorize(authorization.ObjectBankAccount, authorization.ActionView), s.ListBankAccounts)
	api.POST("/bank/accounts", s.authorize(authorization.ObjectBankAccount, authorization.ActionCreate), s.CreateBankAccount)
	api.GET("/bank/accounts/:id", s.authorize(authorization.ObjectBankAccount, authorization.ActionView), s.GetBankAccountByID)
	api.PATCH("/bank/accounts/:id", s.authorize(authorization.ObjectBankAccount, authorization.ActionUpdate), s.UpdateBankAccount)
	api.GET("/bank/transactions", s.authorize(authorization.ObjectBankAccount, authorization.ActionView), s.ListBankTransactions)
	api.POST("/bank/transactions", s.authorize(authorization.ObjectBankAccount, authorization.ActionCreate), s.RecordBankTransaction)

	// -------- Maintenance --------
	api.GET("/maintenance", s.authorize(authorization.ObjectMaintenance, authorization.ActionView), s.ListMaintenanceRequests)
	api.POST("/maintenance", s.authorize(authorization.ObjectMaintenance, authorization.ActionCreate), s.CreateMaintenanceRequest)
	api.GET("/maintenance/:id", s.authorize(authorization.ObjectMaintenance, authorization.ActionView), s.GetMaintenanceRequestByID)
	api.PATCH("/maintenance/:id", s.authorize(authorization.ObjectMaintenance, authorization.ActionUpdate), s.UpdateMaintenanceRequest)

	// -------- Notifications --------
	api.GET("/notifications", s.authorize(authorization.ObjectNotification, authorization.ActionView), s.ListNotifications)
	api.GET("/notifications/stream", s.authorize(authorization.ObjectNotification, authorization.ActionView), s.StreamNotifications)
	api.POST("/notifications/:id/read", s.authorize(authorization.ObjectNotification, authorization.ActionUpdate), s.MarkNotificationRead)
	api.POST("/notifications/read-all", s.authorize(authorization.ObjectNotification, authorization.ActionUpdate), s.MarkAllNotificationsRead)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin", s.AuthRequired())

	admin.GET("/audit-logs", s.authorize(authorization.ObjectAuditLog, authorization.ActionView), s.ListAuditLogs)

	jobs := admin.Group("/jobs", s.authorize(authorization.ObjectJob, authorization.ActionJobTrigger))
	{
		jobs.POST("/overdue-scan", s.TriggerOverdueScan)
		jobs.POST("/utility-invoices", s.TriggerUtilityInvoices)
	}
}

func (s *Server) registerUploadRoutes() {
	s.engine.POST("/api/uploads", s.AuthRequired(), s.UploadFile)
	s.engine.Static("/uploads", s.cfg.UploadDir)
}
