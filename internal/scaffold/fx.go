package scaffold

import (
	"github.com/launchforge/launchforge/internal/scaffold/repository"
	"github.com/launchforge/launchforge/internal/scaffold/service"
	"go.uber.org/fx"
)

var Module = fx.Module("scaffold.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
