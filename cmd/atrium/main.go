package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/atriumhq/atrium/internal/audit"
	"github.com/atriumhq/atrium/internal/auth"
	"github.com/atriumhq/atrium/internal/auth/session"
	"github.com/atriumhq/atrium/internal/authorization"
	"github.com/atriumhq/atrium/internal/bank"
	"github.com/atriumhq/atrium/internal/clock"
	"github.com/atriumhq/atrium/internal/config"
	"github.com/atriumhq/atrium/internal/invoice"
	"github.com/atriumhq/atrium/internal/maintenance"
	"github.com/atriumhq/atrium/internal/migration"
	"github.com/atriumhq/atrium/internal/notification"
	"github.com/atriumhq/atrium/internal/observability"
	"github.com/atriumhq/atrium/internal/overdue"
	"github.com/atriumhq/atrium/internal/payment"
	"github.com/atriumhq/atrium/internal/providers"
	"github.com/atriumhq/atrium/internal/ratelimit"
	"github.com/atriumhq/atrium/internal/rental"
	"github.com/atriumhq/atrium/internal/room"
	"github.com/atriumhq/atrium/internal/scheduler"
	"github.com/atriumhq/atrium/internal/server"
	"github.com/atriumhq/atrium/internal/tenant"
	"github.com/atriumhq/atrium/internal/utility"
	"github.com/atriumhq/atrium/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		ratelimit.Module,
		providers.Module,

		// Domain modules
		audit.Module,
		auth.Module,
		session.Module,
		authorization.Module,
		tenant.Module,
		room.Module,
		rental.Module,
		invoice.Module,
		utility.Module,
		payment.Module,
		bank.Module,
		maintenance.Module,
		notification.Module,
		overdue.Module,
		scheduler.Module,

		// HTTP surface
		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
