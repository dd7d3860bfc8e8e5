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

const envPrefix = "SILKROAD_"

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogLevel string `koanf:"log_level"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout    time.Duration `koanf:"read_timeout"`
		WriteTimeout   time.Duration `koanf:"write_timeout"`
		IdleTimeout    time.Duration `koanf:"idle_timeout"`
		RequestTimeout time.Duration `koanf:"request_timeout"`
	} `koanf:"http"`

	Storage struct {
		Driver    string        `koanf:"driver"` // memory | redis | mysql
		KeyPrefix string        `koanf:"key_prefix"`
		TTL       time.Duration `koanf:"ttl"`
	} `koanf:"storage"`

	MySQL struct {
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	} `koanf:"mysql"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
		DB       int    `koanf:"db"`
	} `koanf:"redis"`

	Rabbit struct {
		URL        string `koanf:"url"`
		Exchange   string `koanf:"exchange"`
		RoutingKey string `koanf:"routing_key"`
		Queue      string `koanf:"queue"`
		Prefetch   int    `koanf:"prefetch"`
		// per-delivery handler deadline
		HandlerTimeout time.Duration `koanf:"handler_timeout"`
	} `koanf:"rabbitmq"`

	Kafka struct {
		Brokers       []string `koanf:"brokers"`
		TopicActivity string   `koanf:"topic_activity"`
		AuditGroup    string   `koanf:"audit_group"`
	} `koanf:"kafka"`

	Security struct {
		JWTSecret string        `koanf:"jwt_secret"`
		Issuer    string        `koanf:"issuer"`
		Audience  string        `koanf:"audience"`
		TTL       time.Duration `koanf:"ttl"`
	} `koanf:"security"`

	Payment struct {
		Delay       time.Duration `koanf:"delay"`
		DeclineRate float64       `koanf:"decline_rate"`
		LockTTL     time.Duration `koanf:"lock_ttl"`
	} `koanf:"payment"`

	Tracking struct {
		Delay time.Duration `koanf:"delay"`
	} `koanf:"tracking"`

	Contact struct {
		Delay time.Duration `koanf:"delay"`
	} `koanf:"contact"`

	Session struct {
		EvictInterval time.Duration `koanf:"evict_interval"`
		MaxIdle       time.Duration `koanf:"max_idle"`
	} `koanf:"session"`
}

func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env override (dev/staging/prod). Optional: allow missing for local runs.
	if envName != "" {
		_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())
	}

	// 3) environment variables override (prefix SILKROAD_, nested with __)
	// e.g. SILKROAD_REDIS__ADDR, SILKROAD_SECURITY__JWT_SECRET
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
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
	switch c.Storage.Driver {
	case "", "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr required for storage.driver=redis")
		}
	case "mysql":
		if c.MySQL.DSN == "" {
			return fmt.Errorf("mysql.dsn required for storage.driver=mysql")
		}
	default:
		return fmt.Errorf("storage.driver %q not supported", c.Storage.Driver)
	}
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret required")
	}
	if c.Payment.DeclineRate < 0 || c.Payment.DeclineRate > 1 {
		return fmt.Errorf("payment.decline_rate must be within [0,1]")
	}
	if c.Rabbit.URL != "" && (c.Rabbit.Exchange == "" || c.Rabbit.Queue == "") {
		return fmt.Errorf("rabbitmq.exchange and rabbitmq.queue required when rabbitmq.url is set")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.TopicActivity == "" {
		return fmt.Errorf("kafka.topic_activity required when kafka.brokers is set")
	}
	return nil
}
