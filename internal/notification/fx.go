package notification

import (
	"github.com/atriumhq/atrium/internal/notification/hub"
	"github.com/atriumhq/atrium/internal/notification/repository"
	"github.com/atriumhq/atrium/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(hub.NewHub),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
