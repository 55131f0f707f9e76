package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Port          string
	BaseURL       string
	ShopURL       string
	AllowOrigins  []string
	JWTSecret     string
	TokenTTL      time.Duration
	SessionSecret string
	SecureCookies bool

	ScyllaHosts       []string
	ScyllaSSLEnabled  bool
	ScyllaCAPath      string
	ScyllaAutoMigrate bool
	CatalogKeyspace   Keyspace
	CustomersKeyspace Keyspace
	OrdersKeyspace    Keyspace

	RedisHost     string
	RedisPassword string
	RedisDB       int

	ElasticURL      string
	ElasticUser     string
	ElasticPassword string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string

	PixKey          string
	PixMerchantName string
	PixMerchantCity string

	APIMaxRequests  int
	CartMaxRequests int
}

// Keyspace names one Scylla keyspace and the role used to reach it.
type Keyspace struct {
	Name     string
	Username string
	Password string
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  No .env file found, continuing with system environment variables")
	} else {
		log.Println("✅ .env file loaded")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		BaseURL:       getEnv("BASE_URL", "http://localhost:8080"),
		ShopURL:       getEnv("SHOP_URL", "http://localhost:5173"),
		AllowOrigins:  splitList(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenTTL:      getDuration("JWT_TTL", 24*time.Hour),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		SecureCookies: getBool("SECURE_COOKIES", false),

		ScyllaHosts:       splitList(os.Getenv("SCYLLA_HOSTS")),
		ScyllaSSLEnabled:  getBool("SCYLLA_SSL_ENABLED", false),
		ScyllaCAPath:      os.Getenv("SCYLLA_SSL_CA_PATH"),
		ScyllaAutoMigrate: getBool("SCYLLA_AUTO_MIGRATE", false),
		CatalogKeyspace:   keyspaceFromEnv("CATALOG", "shop_catalog"),
		CustomersKeyspace: keyspaceFromEnv("CUSTOMERS", "shop_customers"),
		OrdersKeyspace:    keyspaceFromEnv("ORDERS", "shop_orders"),

		RedisHost:     getEnv("REDIS_HOST", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),

		ElasticURL:      os.Getenv("ELASTIC_URL"),
		ElasticUser:     os.Getenv("ELASTIC_USER"),
		ElasticPassword: os.Getenv("ELASTIC_PASSWORD"),

		MinIOEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:    getEnv("MINIO_BUCKET", "shop-images"),
		MinIOUseSSL:    getBool("MINIO_USE_SSL", false),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getEnv("MAIL_FROM", "noreply@techshop.com.br"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		Currency:            getEnv("CURRENCY", "brl"),

		PixKey:          os.Getenv("PIX_KEY"),
		PixMerchantName: getEnv("PIX_MERCHANT_NAME", "TECHSHOP"),
		PixMerchantCity: getEnv("PIX_MERCHANT_CITY", "SAO PAULO"),

		APIMaxRequests:  getInt("API_MAX_REQUESTS", 100),
		CartMaxRequests: getInt("CART_MAX_REQUESTS", 20),
	}
}

// Validate reports the mandatory settings that are missing.
func (c *Config) Validate() error {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if len(c.ScyllaHosts) == 0 {
		missing = append(missing, "SCYLLA_HOSTS")
	}
	if len(missing) > 0 {
		return errors.New("missing configuration: " + strings.Join(missing, ", "))
	}
	return nil
}

func keyspaceFromEnv(prefix, fallback string) Keyspace {
	return Keyspace{
		Name:     getEnv("SCYLLA_KS_"+prefix+"_KEYSPACE", fallback),
		Username: os.Getenv("SCYLLA_KS_" + prefix + "_ROLE"),
		Password: os.Getenv("SCYLLA_KS_" + prefix + "_PASSWORD"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️ %s=%q is not an integer, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return strings.EqualFold(v, "true") || v == "1"
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("⚠️ %s=%q is not a duration, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
