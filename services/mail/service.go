package mail

import (
	"fmt"
	"time"

	"github.com/unigrievance/gateway/config"
	"github.com/unigrievance/gateway/services/logging"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Sender is the narrow outbound-notification contract the registration flow
// depends on. Transport, retries, and credentials live behind it.
type Sender interface {
	Send(to, subject, body string) error
	Enabled() bool
}

type Service struct {
	config  *config.MailConfig
	client  *mail.Client
	logger  *logging.Service
	enabled bool
}

// NewService builds the SMTP client. An empty host means no channel is
// configured: the service still constructs, but reports Enabled() == false
// and the gateway falls back to simulation mode.
func NewService(cfg *config.MailConfig, logger *logging.Service) (*Service, error) {
	if cfg.Host == "" {
		logger.Warn("no SMTP host configured, mail dispatch disabled")
		return &Service{config: cfg, logger: logger}, nil
	}

	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("MAIL_FROM_ADDRESS is required")
	}

	clientOpts := []mail.Option{
		mail.WithPort(cfg.Port),
	}

	switch cfg.Encryption {
	case "tls", "starttls":
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	case "ssl":
		clientOpts = append(clientOpts, mail.WithSSL())
	case "none":
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.NoTLS))
	default:
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	if cfg.Username != "" {
		clientOpts = append(clientOpts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username))
	}
	if cfg.Password != "" {
		clientOpts = append(clientOpts, mail.WithPassword(cfg.Password))
	}

	client, err := mail.NewClient(cfg.Host, clientOpts...)
	if err != nil {
		logger.Error("failed to create mail client",
			zap.Error(err),
			zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port))
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	logger.Info("mail service initialized",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("from_address", cfg.FromAddress))

	return &Service{
		config:  cfg,
		client:  client,
		logger:  logger,
		enabled: true,
	}, nil
}

func (s *Service) Enabled() bool {
	return s.enabled
}

func (s *Service) Send(to, subject, body string) error {
	if !s.enabled {
		return fmt.Errorf("mail service is not configured")
	}

	message := mail.NewMsg()

	fromAddr := s.config.FromAddress
	if s.config.FromName != "" {
		fromAddr = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress)
	}
	if err := message.From(fromAddr); err != nil {
		return fmt.Errorf("failed to set FROM address: %w", err)
	}
	if err := message.To(to); err != nil {
		return fmt.Errorf("failed to set TO address: %w", err)
	}

	message.Subject(subject)
	message.SetBodyString(mail.TypeTextPlain, body)

	startTime := time.Now()
	err := s.client.DialAndSend(message)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("failed to send email",
			zap.Error(err),
			zap.Duration("attempt_duration", duration))
		return err
	}

	s.logger.Info("email sent",
		zap.String("subject", subject),
		zap.Duration("send_duration", duration))
	return nil
}
