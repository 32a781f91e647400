package config

import (
	"errors"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	DB struct {
		DSN string `yaml:"dsn"`
	} `yaml:"db"`
	Gateway struct {
		BaseURL        string `yaml:"base_url"`
		ClientID       string `yaml:"client_id"`
		APIKey         string `yaml:"api_key"`
		ChecksumKey    string `yaml:"checksum_key"`
		ReturnURL      string `yaml:"return_url"`
		CancelURL      string `yaml:"cancel_url"`
		LinkTTLMinutes int    `yaml:"link_ttl_minutes"`
	} `yaml:"gateway"`
	Commission struct {
		RatePercent int64 `yaml:"rate_percent"`
	} `yaml:"commission"`
	Admin struct {
		TokenBcryptHash string `yaml:"token_bcrypt_hash"`
	} `yaml:"admin"`
	AMQP struct {
		URL      string `yaml:"url"`
		Exchange string `yaml:"exchange"`
	} `yaml:"amqp"`
	Worker struct {
		IntervalSeconds int64 `yaml:"interval_seconds"`
		MinAgeMinutes   int64 `yaml:"min_age_minutes"`
	} `yaml:"worker"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if cfg.Server.Addr == "" {
		return nil, errors.New("server.addr is required")
	}
	if cfg.DB.DSN == "" {
		return nil, errors.New("db.dsn is required")
	}
	if cfg.Gateway.BaseURL == "" || cfg.Gateway.ClientID == "" || cfg.Gateway.APIKey == "" || cfg.Gateway.ChecksumKey == "" {
		return nil, errors.New("gateway config is incomplete")
	}
	if cfg.Commission.RatePercent < 0 || cfg.Commission.RatePercent > 100 {
		return nil, errors.New("commission.rate_percent must be in [0,100]")
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Gateway.LinkTTLMinutes == 0 {
		cfg.Gateway.LinkTTLMinutes = 10
	}
	if cfg.Commission.RatePercent == 0 {
		cfg.Commission.RatePercent = 15
	}
	if cfg.Worker.IntervalSeconds == 0 {
		cfg.Worker.IntervalSeconds = 60
	}
	if cfg.Worker.MinAgeMinutes == 0 {
		cfg.Worker.MinAgeMinutes = 15
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.DB.DSN = v
	}
	if v := os.Getenv("GATEWAY_BASE_URL"); v != "" {
		cfg.Gateway.BaseURL = v
	}
	if v := os.Getenv("GATEWAY_CLIENT_ID"); v != "" {
		cfg.Gateway.ClientID = v
	}
	if v := os.Getenv("GATEWAY_API_KEY"); v != "" {
		cfg.Gateway.APIKey = v
	}
	if v := os.Getenv("GATEWAY_CHECKSUM_KEY"); v != "" {
		cfg.Gateway.ChecksumKey = v
	}
	if v := os.Getenv("GATEWAY_RETURN_URL"); v != "" {
		cfg.Gateway.ReturnURL = v
	}
	if v := os.Getenv("GATEWAY_CANCEL_URL"); v != "" {
		cfg.Gateway.CancelURL = v
	}
	if v := os.Getenv("GATEWAY_LINK_TTL_MINUTES"); v != "" {
		cfg.Gateway.LinkTTLMinutes = atoiOr(cfg.Gateway.LinkTTLMinutes, v)
	}
	if v := os.Getenv("COMMISSION_RATE_PERCENT"); v != "" {
		cfg.Commission.RatePercent = atoi64Or(cfg.Commission.RatePercent, v)
	}
	if v := os.Getenv("ADMIN_TOKEN_BCRYPT_HASH"); v != "" {
		cfg.Admin.TokenBcryptHash = v
	}
	if v := os.Getenv("AMQP_URL"); v != "" {
		cfg.AMQP.URL = v
	}
	if v := os.Getenv("AMQP_EXCHANGE"); v != "" {
		cfg.AMQP.Exchange = v
	}
	if v := os.Getenv("WORKER_INTERVAL_SECONDS"); v != "" {
		cfg.Worker.IntervalSeconds = atoi64Or(cfg.Worker.IntervalSeconds, v)
	}
	if v := os.Getenv("WORKER_MIN_AGE_MINUTES"); v != "" {
		cfg.Worker.MinAgeMinutes = atoi64Or(cfg.Worker.MinAgeMinutes, v)
	}
}

func atoiOr(fallback int, v string) int {
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func atoi64Or(fallback int64, v string) int64 {
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}
