// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек сервиса
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	AuthProvider            `yaml:"auth_provider"`
	LLM                     `yaml:"llm"`
	Stripe                  `yaml:"stripe"`
	RabbitMQ                `yaml:"rabbitmq"`
	SMTP                    `yaml:"smtp"`
	Quota                   `yaml:"quota"`
	RateLimit               `yaml:"rate_limit"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"0.0.0.0:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"30s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// AuthProvider структура для подключения к внешнему провайдеру идентификации
type AuthProvider struct {
	AuthBaseURL string        `yaml:"auth_base_url" env:"AUTH_BASE_URL"`
	AuthAPIKey  string        `yaml:"auth_api_key" env:"AUTH_API_KEY"`
	AuthTimeout time.Duration `yaml:"auth_timeout" env-default:"5s"`
}

// LLM структура для подключения к провайдеру генерации текста
type LLM struct {
	LLMAPIURL    string        `yaml:"llm_api_url" env:"LLM_API_URL" env-default:"https://api.openai.com/v1"`
	LLMAPIKey    string        `yaml:"llm_api_key" env:"LLM_API_KEY"`
	LLMModel     string        `yaml:"llm_model" env-default:"gpt-4o-mini"`
	LLMMaxTokens int           `yaml:"llm_max_tokens" env-default:"4096"`
	LLMTimeout   time.Duration `yaml:"llm_timeout" env-default:"90s"`
}

// Stripe структура для работы с платёжным провайдером
type Stripe struct {
	StripeSecretKey     string `yaml:"stripe_secret_key" env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `yaml:"stripe_webhook_secret" env:"STRIPE_WEBHOOK_SECRET"`
	StripePriceID       string `yaml:"stripe_price_id" env:"STRIPE_PRICE_ID"`
	SiteURL             string `yaml:"site_url" env-default:"http://localhost:3000"`
}

// RabbitMQ структура для подключения к брокеру сообщений
type RabbitMQ struct {
	RabbitURL     string        `yaml:"rabbit_url" env:"RABBIT_URL"`
	RabbitRetries int           `yaml:"rabbit_retries" env-default:"5"`
	RabbitDelay   time.Duration `yaml:"rabbit_delay" env-default:"3s"`
}

// SMTP структура для отправки писем воркером уведомлений
type SMTP struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort string `yaml:"smtp_port" env-default:"587"`
	SMTPUser string `yaml:"smtp_user"`
	SMTPPass string `yaml:"smtp_pass" env:"SMTP_PASS"`
}

// Quota структура с лимитом бесплатного тарифа
type Quota struct {
	FreeLimit int `yaml:"free_limit" env-default:"3"`
}

// RateLimit структура с настройками ограничителя частоты запросов
type RateLimit struct {
	Store           string        `yaml:"store" env-default:"memory"` // memory или redis
	PublicLimit     int           `yaml:"public_limit" env-default:"60"`
	AuthLimit       int           `yaml:"auth_limit" env-default:"20"`
	ContentLimit    int           `yaml:"content_limit" env-default:"30"`
	GenerationLimit int           `yaml:"generation_limit" env-default:"10"`
	Window          time.Duration `yaml:"window" env-default:"1m"`
	GlobalRate      float64       `yaml:"global_rate" env-default:"100"`
	GlobalBurst     int           `yaml:"global_burst" env-default:"200"`
}

// MustLoad функция для загрузки конфига, путь к файлу берётся из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
