package email

import "fmt"

// Drivers accepted by New.
const (
	DriverPostmark = "postmark"
	DriverDev      = "dev"
)

// Config is loaded from the environment by pkg/config.
type Config struct {
	Driver               string `env:"EMAIL_DRIVER" envDefault:"dev"`
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"noreply@gemsimce.cl"`
	SupportEmail         string `env:"SUPPORT_EMAIL" envDefault:"support@gemsimce.cl"`
	DevDir               string `env:"EMAIL_DEV_DIR" envDefault:".emails"`
}

// New builds the Sender selected by cfg.Driver.
func New(cfg Config) (Sender, error) {
	switch cfg.Driver {
	case DriverPostmark:
		return NewPostmarkSender(cfg)
	case DriverDev, "":
		return NewDevSender(cfg.DevDir), nil
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrInvalidConfig, cfg.Driver)
	}
}
