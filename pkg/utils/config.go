package utils

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Razorpay RazorpayConfig
	Kafka    KafkaConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

// RazorpayConfig holds the gateway credentials. KeySecret signs order/payment
// pairs, WebhookSecret signs raw webhook bodies; they are distinct secrets.
type RazorpayConfig struct {
	KeyID          string
	KeySecret      string
	WebhookSecret  string
	BaseURL        string
	TimeoutSeconds int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("RAZORPAY_BASE_URL", "https://api.razorpay.com")
	viper.SetDefault("RAZORPAY_TIMEOUT_SECONDS", 10)
	viper.SetDefault("KAFKA_TOPIC", "payment.completed")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	var brokers []string
	if raw := viper.GetString("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Razorpay: RazorpayConfig{
			KeyID:          viper.GetString("RAZORPAY_KEY_ID"),
			KeySecret:      viper.GetString("RAZORPAY_KEY_SECRET"),
			WebhookSecret:  viper.GetString("RAZORPAY_WEBHOOK_SECRET"),
			BaseURL:        viper.GetString("RAZORPAY_BASE_URL"),
			TimeoutSeconds: viper.GetInt("RAZORPAY_TIMEOUT_SECONDS"),
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   viper.GetString("KAFKA_TOPIC"),
		},
	}

	return config, nil
}
