// Package config arma la configuración: defaults, luego archivo YAML opcional, luego env.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

type Driver string

const (
	DriverNone    Driver = "none"
	DriverWebhook Driver = "webhook"
	DriverKafka   Driver = "kafka"
	DriverSQS     Driver = "sqs"
)

type Config struct {
	HTTP      HTTP      `yaml:"http"`
	DB        DB        `yaml:"db"`
	Log       Log       `yaml:"log"`
	Auth      Auth      `yaml:"auth"`
	Scheduler Scheduler `yaml:"scheduler"`
	Notify    Notify    `yaml:"notify"`

	// TZName: zona horaria para "hoy" y las horas de los recordatorios.
	TZName string `yaml:"tz_name"`
}

type HTTP struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type DB struct {
	// DSN vacío => stores in-memory.
	DSN     string `yaml:"dsn"`
	Migrate bool   `yaml:"migrate"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	App    string `yaml:"app"`
}

type Auth struct {
	// JWTSecret vacío => modo dev (X-Debug-User-ID).
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

type Scheduler struct {
	Enabled        bool          `yaml:"enabled"`
	RemindersCron  string        `yaml:"reminders_cron"`
	MissedDoseCron string        `yaml:"missed_doses_cron"`
	LowStockCron   string        `yaml:"low_stock_cron"`
	SweepTimeout   time.Duration `yaml:"sweep_timeout"`
}

type Notify struct {
	Driver Driver `yaml:"driver"`

	WebhookURL   string `yaml:"webhook_url"`
	WebhookToken string `yaml:"webhook_token"`

	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`

	SQSQueueURL string `yaml:"sqs_queue_url"`
	AWSRegion   string `yaml:"aws_region"`
	AWSEndpoint string `yaml:"aws_endpoint"`
}

func Default() Config {
	return Config{
		HTTP: HTTP{
			Addr:         ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		DB: DB{Migrate: true},
		Log: Log{
			Level:  "info",
			Format: "text",
			App:    "pilltrack",
		},
		Scheduler: Scheduler{
			Enabled:        true,
			RemindersCron:  "*/5 * * * *",
			MissedDoseCron: "*/5 * * * *",
			LowStockCron:   "0 9 * * *",
			SweepTimeout:   2 * time.Minute,
		},
		Notify: Notify{
			Driver:     DriverNone,
			KafkaTopic: "pilltrack.notifications",
		},
		TZName: "UTC",
	}
}

// Load aplica defaults, el YAML en path (si no está vacío) y las variables de entorno.
func Load(path string) (Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	if v := strings.TrimSpace(getenv("PORT")); v != "" {
		cfg.HTTP.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	str("DB_DSN", &cfg.DB.DSN)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("APP_NAME", &cfg.Log.App)
	str("TZ_NAME", &cfg.TZName)
	str("JWT_SECRET", &cfg.Auth.JWTSecret)
	str("JWT_ISSUER", &cfg.Auth.Issuer)
	str("REMINDER_CRON", &cfg.Scheduler.RemindersCron)
	str("MISSED_DOSE_CRON", &cfg.Scheduler.MissedDoseCron)
	str("LOW_STOCK_CRON", &cfg.Scheduler.LowStockCron)
	str("NOTIFY_WEBHOOK_URL", &cfg.Notify.WebhookURL)
	str("NOTIFY_WEBHOOK_TOKEN", &cfg.Notify.WebhookToken)
	str("KAFKA_TOPIC", &cfg.Notify.KafkaTopic)
	str("SQS_QUEUE_URL", &cfg.Notify.SQSQueueURL)
	str("AWS_REGION", &cfg.Notify.AWSRegion)
	str("AWS_ENDPOINT_URL", &cfg.Notify.AWSEndpoint)

	if v := strings.TrimSpace(getenv("NOTIFY_DRIVER")); v != "" {
		cfg.Notify.Driver = Driver(strings.ToLower(v))
	}
	if v := strings.TrimSpace(getenv("KAFKA_BROKERS")); v != "" {
		cfg.Notify.KafkaBrokers = splitList(v)
	}

	for key, dst := range map[string]*bool{
		"SCHEDULER_ENABLED": &cfg.Scheduler.Enabled,
		"DB_MIGRATE":        &cfg.DB.Migrate,
	} {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = b
		}
	}

	if v := strings.TrimSpace(getenv("SWEEP_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SWEEP_TIMEOUT: %w", err)
		}
		cfg.Scheduler.SweepTimeout = d
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error

	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if c.Scheduler.SweepTimeout < 0 {
		errs = append(errs, errors.New("scheduler.sweep_timeout must be >= 0"))
	}

	switch c.Notify.Driver {
	case DriverNone, "":
	case DriverWebhook:
		if c.Notify.WebhookURL == "" {
			errs = append(errs, errors.New("notify.webhook_url required for webhook driver"))
		}
	case DriverKafka:
		if len(c.Notify.KafkaBrokers) == 0 || c.Notify.KafkaTopic == "" {
			errs = append(errs, errors.New("notify.kafka_brokers and notify.kafka_topic required for kafka driver"))
		}
	case DriverSQS:
		if c.Notify.SQSQueueURL == "" {
			errs = append(errs, errors.New("notify.sqs_queue_url required for sqs driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown notify driver %q", c.Notify.Driver))
	}

	return errors.Join(errs...)
}

func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.TZName)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("tz_name %q: %w", name, err)
	}
	return loc, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
