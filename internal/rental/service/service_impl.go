package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/atriumhq/atrium/internal/audit/domain"
	"github.com/atriumhq/atrium/internal/rental/domain"
	roomdomain "github.com/atriumhq/atrium/internal/room/domain"
	tenantdomain "github.com/atriumhq/atrium/internal/tenant/domain"
	"github.com/atriumhq/atrium/pkg/db/pagination"
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
	RoomRepo   roomdomain.Repository
	TenantRepo tenantdomain.Repository
	AuditSvc   auditdomain.Service `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	roomRepo   roomdomain.Repository
	tenantRepo tenantdomain.Repository
	auditSvc   auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("rental.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		roomRepo:   p.RoomRepo,
		tenantRepo: p.TenantRepo,
		auditSvc:   p.AuditSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRentalRequest) (domain.Rental, error) {
	tenantID, err := snowflake.ParseString(strings.TrimSpace(req.TenantID))
	if err != nil || tenantID == 0 {
		return domain.Rental{}, domain.ErrInvalidTenant
	}
	roomID, err := snowflake.ParseString(strings.TrimSpace(req.RoomID))
	if err != nil || roomID == 0 {
		return domain.Rental{}, domain.ErrInvalidRoom
	}
	if req.RentAmount <= 0 {
		return domain.Rental{}, domain.ErrInvalidAmount
	}

	interval := domain.PaymentInterval(strings.ToUpper(strings.TrimSpace(req.PaymentInterval)))
	if interval == "" {
		interval = domain.IntervalMonthly
	}
	if !interval.Valid() {
		return domain.Rental{}, domain.ErrInvalidInterval
	}

	if req.EndDate.Before(req.StartDate.Add(domain.MinRentalDays * 24 * time.Hour)) {
		return domain.Rental{}, domain.ErrInvalidPeriod
	}

	includeElectricity := req.IncludeElectricity
	if req.SelfManagedElectricity {
		// A rental with its own meter is never prorated for electricity.
		includeElectricity = false
	}

	includeTax := true
	if req.IncludeTax != nil {
		includeTax = *req.IncludeTax
	}
	taxPercent := 15.0
	if req.TaxPercent != nil {
		taxPercent = *req.TaxPercent
	}
	if taxPercent < 0 || taxPercent > 100 {
		return domain.Rental{}, domain.ErrInvalidAmount
	}

	tenant, err := s.tenantRepo.FindByID(ctx, s.db, tenantID)
	if err != nil {
		return domain.Rental{}, err
	}
	if tenant == nil || tenant.Status != tenantdomain.TenantStatusActive {
		return domain.Rental{}, domain.ErrInvalidTenant
	}

	now := time.Now().UTC()
	rental := domain.Rental{
		ID:                     s.genID.Generate(),
		TenantID:               tenantID,
		RoomID:                 roomID,
		RentAmount:             req.RentAmount,
		PaymentInterval:        interval,
		IncludeTax:             includeTax,
		TaxPercent:             taxPercent,
		IncludeWater:           req.IncludeWater,
		IncludeElectricity:     includeElectricity,
		IncludeGenerator:       req.IncludeGenerator,
		IncludeService:         req.IncludeService,
		SelfManagedElectricity: req.SelfManagedElectricity,
		StartDate:              req.StartDate.UTC(),
		EndDate:                req.EndDate.UTC(),
		Status:                 domain.RentalStatusActive,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.roomRepo.Claim(ctx, tx, roomID); err != nil {
			if errors.Is(err, roomdomain.ErrRoomNotVacant) {
				return domain.ErrRoomNotAvailable
			}
			return err
		}
		return s.repo.Insert(ctx, tx, &rental)
	})
	if err != nil {
		return domain.Rental{}, err
	}

	s.audit(ctx, "rental.created", rental.ID, map[string]any{
		"tenant_id": tenantID.String(),
		"room_id":   roomID.String(),
	})
	return rental, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRentalRequest) (domain.Rental, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Rental{}, err
	}

	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Rental{}, err
	}
	if existing == nil {
		return domain.Rental{}, domain.ErrNotFound
	}
	if existing.Status != domain.RentalStatusActive {
		return domain.Rental{}, domain.ErrNotActive
	}

	fields := map[string]any{"updated_at": time.Now().UTC()}
	if req.RentAmount != nil {
		if *req.RentAmount <= 0 {
			return domain.Rental{}, domain.ErrInvalidAmount
		}
		fields["rent_amount"] = *req.RentAmount
	}
	if req.PaymentInterval != nil {
		interval := domain.PaymentInterval(strings.ToUpper(strings.TrimSpace(*req.PaymentInterval)))
		if !interval.Valid() {
			return domain.Rental{}, domain.ErrInvalidInterval
		}
		fields["payment_interval"] = interval
	}
	if req.IncludeTax != nil {
		fields["include_tax"] = *req.IncludeTax
	}
	if req.TaxPercent != nil {
		if *req.TaxPercent < 0 || *req.TaxPercent > 100 {
			return domain.Rental{}, domain.ErrInvalidAmount
		}
		fields["tax_percent"] = *req.TaxPercent
	}
	if req.IncludeWater != nil {
		fields["include_water"] = *req.IncludeWater
	}
	if req.IncludeGenerator != nil {
		fields["include_generator"] = *req.IncludeGenerator
	}
	if req.IncludeService != nil {
		fields["include_service"] = *req.IncludeService
	}
	if req.EndDate != nil {
		if req.EndDate.Before(existing.StartDate.Add(domain.MinRentalDays * 24 * time.Hour)) {
			return domain.Rental{}, domain.ErrInvalidPeriod
		}
		fields["end_date"] = req.EndDate.UTC()
	}

	// The invariant holds on update too: a self-managed meter forces the
	// electricity opt-in off, whichever of the two flags moved.
	selfManaged := existing.SelfManagedElectricity
	if req.SelfManagedElectricity != nil {
		selfManaged = *req.SelfManagedElectricity
		fields["self_managed_electricity"] = selfManaged
	}
	if req.IncludeElectricity != nil {
		if selfManaged && *req.IncludeElectricity {
			return domain.Rental{}, domain.ErrElectricityOptIn
		}
		fields["include_electricity"] = *req.IncludeElectricity
	}
	if selfManaged {
		fields["include_electricity"] = false
	}

	if err := s.repo.UpdateFields(ctx, s.db, id, fields); err != nil {
		return domain.Rental{}, err
	}

	updated, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Rental{}, err
	}
	if updated == nil {
		return domain.Rental{}, domain.ErrNotFound
	}

	s.audit(ctx, "rental.updated", id, nil)
	return *updated, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRentalRequest) (domain.ListRentalResponse, error) {
	filter := domain.ListRentalFilter{
		TenantID:     strings.TrimSpace(req.TenantID),
		RoomID:       strings.TrimSpace(req.RoomID),
		Status:       strings.ToUpper(strings.TrimSpace(req.Status)),
		EndingBefore: req.EndingBefore,
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
		return domain.ListRentalResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(rental *domain.Rental) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        rental.ID.String(),
			CreatedAt: rental.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	rentals := make([]domain.Rental, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		rentals = append(rentals, *item)
	}

	resp := domain.ListRentalResponse{Rentals: rentals}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Rental, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return domain.Rental{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Rental{}, err
	}
	if item == nil {
		return domain.Rental{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Terminate(ctx context.Context, rawID string) (domain.Rental, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return domain.Rental{}, err
	}

	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Rental{}, err
	}
	if existing == nil {
		return domain.Rental{}, domain.ErrNotFound
	}
	if existing.Status != domain.RentalStatusActive {
		return domain.Rental{}, domain.ErrNotActive
	}

	now := time.Now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.UpdateFields(ctx, tx, id, map[string]any{
			"status":        domain.RentalStatusTerminated,
			"terminated_at": now,
			"updated_at":    now,
		}); err != nil {
			return err
		}
		if err := s.roomRepo.Release(ctx, tx, existing.RoomID); err != nil {
			// The room may already be vacant if it was freed manually.
			if !errors.Is(err, roomdomain.ErrNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Rental{}, err
	}

	updated, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Rental{}, err
	}

	s.audit(ctx, "rental.terminated", id, map[string]any{"room_id": existing.RoomID.String()})
	return *updated, nil
}

func (s *Service) audit(ctx context.Context, action string, id snowflake.ID, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	targetID := id.String()
	_ = s.auditSvc.AuditLog(ctx, "", nil, action, "rental", &targetID, metadata)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
