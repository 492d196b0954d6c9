package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string

	UpstreamBaseURL string
	UpstreamTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers []string
	KafkaTopic   string

	JWTSecret string
}

func LoadEnv() Env {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	env := Env{
		AppAddr:         getEnv("APP_ADDR", ":8080"),
		GinMode:         strings.TrimSpace(os.Getenv("GIN_MODE")),
		UpstreamBaseURL: getEnv("UPSTREAM_BASE_URL", "http://localhost:9090/api"),
		UpstreamTimeout: getDuration("UPSTREAM_TIMEOUT", 15*time.Second),
		RedisAddr:       getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:   strings.TrimSpace(os.Getenv("REDIS_PASSWORD")),
		RedisDB:         getInt("REDIS_DB", 0),
		KafkaTopic:      getEnv("KAFKA_AUDIT_TOPIC", "backoffice.seat-events"),
		JWTSecret:       getEnv("JWT_SECRET", "change-me-in-production"),
	}

	if brokers := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			b = strings.TrimSpace(b)
			if b != "" {
				env.KafkaBrokers = append(env.KafkaBrokers, b)
			}
		}
	}

	return env
}

func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
