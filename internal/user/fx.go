package user

import (
	"github.com/launchforge/launchforge/internal/user/repository"
	"github.com/launchforge/launchforge/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
