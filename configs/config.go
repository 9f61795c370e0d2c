package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogLevel string `koanf:"log_level"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout  time.Duration `koanf:"read_timeout"`
		WriteTimeout time.Duration `koanf:"write_timeout"`
		IdleTimeout  time.Duration `koanf:"idle_timeout"`
	} `koanf:"http"`

	Postgres struct {
		DSN      string `koanf:"dsn"`
		MaxConns int32  `koanf:"max_conns"`
	} `koanf:"postgres"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
	} `koanf:"redis"`

	Idempotency struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"idempotency"`

	Mail struct {
		Host       string `koanf:"host"`
		Port       int    `koanf:"port"`
		Username   string `koanf:"username"`
		Password   string `koanf:"password"`
		UseTLS     bool   `koanf:"use_tls"`
		Sender     string `koanf:"sender"`
		AdminEmail string `koanf:"admin_email"`
	} `koanf:"mail"`

	Notify struct {
		DelegatedEnabled bool   `koanf:"delegated_enabled"`
		DelegatedURL     string `koanf:"delegated_url"`
	} `koanf:"notify"`

	Uploads struct {
		Dir          string   `koanf:"dir"`
		MaxSizeBytes int64    `koanf:"max_size_bytes"`
		AllowedExts  []string `koanf:"allowed_exts"`
	} `koanf:"uploads"`
}

func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env override (dev/staging/prod). Optional: allow missing for local runs.
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	// 3) environment variables override (prefix YOGHURT_, nested with __)
	// e.g. YOGHURT_POSTGRES__DSN, YOGHURT_MAIL__PASSWORD
	if err := k.Load(env.Provider("YOGHURT_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "YOGHURT_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn required")
	}
	if c.Uploads.Dir == "" {
		return fmt.Errorf("uploads.dir required")
	}
	if c.Notify.DelegatedEnabled && c.Notify.DelegatedURL == "" {
		return fmt.Errorf("notify.delegated_url required when delegated mode is enabled")
	}
	return nil
}
