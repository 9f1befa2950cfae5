package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type PaymentConfig struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer `yaml:"http_server"`
	GRPCServer `yaml:"grpc_server"`
	PaymentDB  `yaml:"payment_db"`
	LogConfig  `yaml:"log_config"`
	Redis      `yaml:"redis"`
	Lock       `yaml:"lock"`
	Kafka      `yaml:"kafka"`
	Outbox     `yaml:"outbox"`
	WechatPay  `yaml:"wechat_pay"`
	Auth       `yaml:"auth"`
	Orders     `yaml:"orders"`
}

type HTTPServer struct {
	Host         string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port         string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"30s"`
}

type GRPCServer struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"9090"`
}

type PaymentDB struct {
	Dsn             string        `yaml:"dsn" env:"PAYMENT_DB_DSN" env-required:"true"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env-default:"10"`
	MaxOpenConns    int           `yaml:"max_open_conns" env-default:"50"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env-default:"1h"`
	MigrationsPath  string        `yaml:"migrations_path" env:"PAYMENT_MIGRATIONS_PATH"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
	LogOutput string `yaml:"log_output" env:"LOG_OUTPUT" env-default:"stdout"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Lock struct {
	// memory | redis
	Driver string        `yaml:"driver" env:"LOCK_DRIVER" env-default:"memory"`
	Expiry time.Duration `yaml:"expiry" env-default:"15s"`
	Tries  int           `yaml:"tries" env-default:"32"`
}

type Kafka struct {
	Enabled bool     `yaml:"enabled" env:"KAFKA_ENABLED" env-default:"false"`
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"payment-order-events"`
}

type Outbox struct {
	Schedule  string `yaml:"schedule" env-default:"@every 5s"`
	BatchSize int    `yaml:"batch_size" env-default:"100"`
}

type WechatPay struct {
	AppID     string        `yaml:"app_id" env:"WECHAT_PAY_APP_ID"`
	MchID     string        `yaml:"mch_id" env:"WECHAT_PAY_MCH_ID"`
	APIKey    string        `yaml:"api_key" env:"WECHAT_PAY_API_KEY"`
	SignType  string        `yaml:"sign_type" env-default:"MD5"`
	NotifyURL string        `yaml:"notify_url" env:"WECHAT_PAY_NOTIFY_URL"`
	BaseURL   string        `yaml:"base_url" env-default:"https://api.mch.weixin.qq.com"`
	CertPath  string        `yaml:"cert_path" env:"WECHAT_PAY_CERT_PATH"`
	KeyPath   string        `yaml:"key_path" env:"WECHAT_PAY_KEY_PATH"`
	ClientIP  string        `yaml:"client_ip" env-default:"127.0.0.1"`
	Timeout   time.Duration `yaml:"timeout" env-default:"10s"`
}

type Auth struct {
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
}

type Orders struct {
	DefaultPageSize int `yaml:"default_page_size" env-default:"10"`
	MaxPageSize     int `yaml:"max_page_size" env-default:"100"`
}

func MustLoad() *PaymentConfig {

	// Processing env config variable and file
	configPath := os.Getenv("PAYMENT_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("PAYMENT_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg PaymentConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
