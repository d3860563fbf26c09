// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application services.
//
// The values are read by viper from a config file or environement variables.
type Config struct {
	Environement string `mapstructure:"GO_ENV"`

	AccountServerAddress      string `mapstructure:"ACCOUNT_SERVER_ADDRESS"`
	TransactionServerAddress  string `mapstructure:"TRANSACTION_SERVER_ADDRESS"`
	NotificationServerAddress string `mapstructure:"NOTIFICATION_SERVER_ADDRESS"`
	GatewayServerAddress      string `mapstructure:"GATEWAY_SERVER_ADDRESS"`

	DBDriver             string `mapstructure:"DB_DRIVER"`
	AccountDBSource      string `mapstructure:"ACCOUNT_DB_SOURCE"`
	TransactionDBSource  string `mapstructure:"TRANSACTION_DB_SOURCE"`
	NotificationDBSource string `mapstructure:"NOTIFICATION_DB_SOURCE"`
	MigrationsURL        string `mapstructure:"MIGRATIONS_URL"`

	AccountServiceURL      string        `mapstructure:"ACCOUNT_SERVICE_URL"`
	TransactionServiceURL  string        `mapstructure:"TRANSACTION_SERVICE_URL"`
	NotificationServiceURL string        `mapstructure:"NOTIFICATION_SERVICE_URL"`
	AccountClientTimeout   time.Duration `mapstructure:"ACCOUNT_CLIENT_TIMEOUT"`

	RedisAddress   string        `mapstructure:"REDIS_ADDRESS"`
	IdempotencyTTL time.Duration `mapstructure:"IDEMPOTENCY_TTL"`

	AMQPURL        string `mapstructure:"AMQP_URL"`
	EventsExchange string `mapstructure:"EVENTS_EXCHANGE"`
	EventsQueue    string `mapstructure:"EVENTS_QUEUE"`

	MongoURL      string `mapstructure:"MONGO_URL"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	TokenSymmetricKey   string        `mapstructure:"TOKEN_SYMMETRIC_KEY"`
	AccessTokenDuration time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`

	TransferCompensation bool `mapstructure:"TRANSFER_COMPENSATION"`
}

// Load reads configuration from file or environment variables.
func Load(path string) (Config, error) {
	var c Config

	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = viper.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	return c, nil
}
