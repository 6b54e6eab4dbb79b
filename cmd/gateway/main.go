package main

import (
	"github.com/unigrievance/gateway/config"
	"github.com/unigrievance/gateway/database"
	"github.com/unigrievance/gateway/server"
	"github.com/unigrievance/gateway/services/auth"
	"github.com/unigrievance/gateway/services/identity"
	"github.com/unigrievance/gateway/services/logging"
	"github.com/unigrievance/gateway/services/mail"
	"github.com/unigrievance/gateway/services/otp"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.NewProvider(nil),
		logging.Module,
		fx.Provide(func() *database.ModelsOption {
			return database.WithModels(identity.Models()...)
		}),
		database.Module,
		mail.Module,
		identity.Module,
		otp.Module,
		auth.Module,
		server.Module,
	)

	app.Run()
}
