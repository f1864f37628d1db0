package config

import (
	"os"
	"strconv"
)

type NotificationService struct {
	Port          string
	PrefetchCount int
	RabbitMQCfg   RabbitMQConfig
	RedisCfg      RedisConfig
	FirebaseCfg   FirebaseConfig
}

type RabbitMQConfig struct {
	Host     string
	Port     string
	Username string
	Password string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type FirebaseConfig struct {
	CredentialsPath string
	ProjectID       string
}

func New() *NotificationService {
	return &NotificationService{
		Port:          getEnvOrDefault("GAMING_NOTIFICATION_PORT", "8090"),
		PrefetchCount: getEnvIntOrDefault("GAMING_EVENTS_PREFETCH", 10),
		RabbitMQCfg: RabbitMQConfig{
			Host:     getEnvOrDefault("RABBITMQ_HOST", "rabbitmq"),
			Port:     getEnvOrDefault("RABBITMQ_PORT", "5672"),
			Username: getEnvOrDefault("RABBITMQ_USER", "admin"),
			Password: getEnvOrDefault("RABBITMQ_PWD", "admin"),
		},
		RedisCfg: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "redis"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PWD", ""),
			DB:       getEnvIntOrDefault("REDIS_DB", 0),
		},
		FirebaseCfg: FirebaseConfig{
			CredentialsPath: getEnvOrDefault("FIREBASE_SERVICE_ACCOUNT_KEY", ""),
			ProjectID:       getEnvOrDefault("FIREBASE_PROJECT_ID", ""),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
