package config

import (
	"errors"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTP      HTTP
	Logger    Logger
	Postgres  Postgres
	Redis     Redis
	Kafka     Kafka
	Processor Processor
	Shop      Shop
}

type HTTP struct {
	Port          int    `env:"HTTP_PORT" envDefault:"8080"`
	APIKeyEnabled bool   `env:"HTTP_API_KEY_ENABLED" envDefault:"false"`
	APIKey        string `env:"HTTP_API_KEY" envDefault:"dev"`
}

type Logger struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type Postgres struct {
	DSN     string `env:"POSTGRES_DSN"`
	MaxConn int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
}

type Redis struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type Kafka struct {
	Brokers        []string `env:"KAFKA_BROKERS"`
	OrderPaidTopic string   `env:"KAFKA_ORDER_PAID_TOPIC"`
}

type Processor struct {
	BaseURL           string `env:"PROCESSOR_BASE_URL"`
	PrivateKey        string `env:"PROCESSOR_PRIVATE_KEY"`
	CallbackPublicKey string `env:"PROCESSOR_CALLBACK_PUBLIC_KEY"` // base64 of the PEM
}

type Shop struct {
	ShopID          string `env:"SHOP_ID"`
	CompanyName     string `env:"SHOP_COMPANY_NAME" envDefault:""`
	FormDescription string `env:"SHOP_FORM_DESCRIPTION" envDefault:""`
	InvoiceLifetime int    `env:"SHOP_INVOICE_LIFETIME_HOURS" envDefault:"24"` // Hours
	PaidStatus      string `env:"SHOP_PAID_STATUS" envDefault:"completed"`
}

func New(envPath string) (Config, error) {
	err := godotenv.Load(envPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	c, err := env.ParseAsWithOptions[Config](env.Options{
		RequiredIfNoDef: true,
	})
	if err != nil {
		return Config{}, err
	}

	return c, nil
}
