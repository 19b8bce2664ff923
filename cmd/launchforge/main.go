package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/launchforge/launchforge/internal/config"
	"github.com/launchforge/launchforge/internal/migration"
	"github.com/launchforge/launchforge/internal/observability"
	"github.com/launchforge/launchforge/internal/server"
	"github.com/launchforge/launchforge/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,
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
