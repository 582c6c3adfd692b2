package bank

import (
	"github.com/atriumhq/atrium/internal/bank/repository"
	"github.com/atriumhq/atrium/internal/bank/service"
	"go.uber.org/fx"
)

var Module = fx.Module("bank.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
