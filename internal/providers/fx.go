package providers

import (
	"github.com/atriumhq/atrium/internal/providers/email"
	"github.com/atriumhq/atrium/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
)
