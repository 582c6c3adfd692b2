package room

import (
	"github.com/atriumhq/atrium/internal/room/repository"
	"github.com/atriumhq/atrium/internal/room/service"
	"go.uber.org/fx"
)

var Module = fx.Module("room.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
