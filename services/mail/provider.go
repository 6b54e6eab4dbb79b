package mail

import (
	"github.com/unigrievance/gateway/config"
	"github.com/unigrievance/gateway/services/logging"
	"go.uber.org/fx"
)

func ProvideMailService(cfg *config.Config, logger *logging.Service) (Sender, error) {
	service, err := NewService(&cfg.Mail, logger)
	if err != nil {
		return nil, err
	}
	return service, nil
}

var Module = fx.Options(
	fx.Provide(ProvideMailService),
)
