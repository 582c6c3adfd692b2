package payment

import (
	"github.com/atriumhq/atrium/internal/payment/repository"
	"github.com/atriumhq/atrium/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
