package notify

// Mode is derived from configuration alone; exactly one mode is active per
// dispatch call.
type Mode string

const (
	// ModeDelegated forwards both sends to a separate backend in one call.
	ModeDelegated Mode = "delegated"
	// ModeLocal renders and sends the emails directly over SMTP.
	ModeLocal Mode = "local"
	// ModeOff means notifications are disabled; a valid operating mode.
	ModeOff Mode = "off"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	UseTLS   bool
	Sender   string
}

// Config is an immutable view of the notification settings. The dispatcher
// asks its ConfigSource for a fresh value on every call, so operators can
// reconfigure between requests.
type Config struct {
	DelegatedEnabled bool
	DelegatedBaseURL string
	SMTP             SMTPConfig
	AdminEmail       string
}

func (c Config) Mode() Mode {
	if c.DelegatedEnabled && c.DelegatedBaseURL != "" {
		return ModeDelegated
	}
	if c.SMTP.Host != "" && c.SMTP.Sender != "" {
		return ModeLocal
	}
	return ModeOff
}

type ConfigSource interface {
	NotifyConfig() Config
}

// ConfigSourceFunc adapts a plain function to a ConfigSource.
type ConfigSourceFunc func() Config

func (f ConfigSourceFunc) NotifyConfig() Config { return f() }

// StaticConfig is a ConfigSource that always returns the same value.
func StaticConfig(c Config) ConfigSource {
	return ConfigSourceFunc(func() Config { return c })
}
