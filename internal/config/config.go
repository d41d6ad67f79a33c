package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings splits comma separated values

	"github.com/joho/godotenv" // godotenv loads a local .env file during development
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Everything is read exactly once at process start
// and handed to the components that need it; nothing reads the environment
// after Load returns.
type Config struct {
	Env            string   // application environment (e.g. "dev", "prod")
	Port           string   // HTTP port to listen on
	DBUser         string   // database username
	DBPass         string   // database password (optional)
	DBHost         string   // database host address
	DBPort         string   // database port number
	DBName         string   // database name
	DBMaxOpenConns int      // connection pool: max open connections
	DBMaxIdleConns int      // connection pool: max idle connections
	DBConnLifeMin  int      // connection pool: connection lifetime in minutes
	JWTSecret      string   // secret used to sign JWTs
	AccessTTLMin   int      // access token time-to-live in minutes
	BcryptCost     int      // bcrypt cost for password hashing
	S3Endpoint     string   // object store endpoint (host:port)
	S3AccessKey    string   // object store access key
	S3SecretKey    string   // object store secret key
	S3Bucket       string   // bucket holding audio files, cover art and profile pictures
	S3UseSSL       bool     // whether to talk to the object store over TLS
	SignedURLTTL   int      // lifetime of presigned download URLs in minutes
	AMQPURL        string   // RabbitMQ URL for notification events (optional)
	AllowedOrigins []string // CORS allowed origins for the SPA
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	_ = godotenv.Load() // best effort; production supplies real env vars

	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		DBMaxOpenConns: intOrDefault("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: intOrDefault("DB_MAX_IDLE_CONNS", 25),
		DBConnLifeMin:  intOrDefault("DB_CONN_MAX_LIFETIME_MIN", 30),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		S3Endpoint:     must("S3_ENDPOINT"),
		S3AccessKey:    must("S3_ACCESS_KEY"),
		S3SecretKey:    must("S3_SECRET_KEY"),
		S3Bucket:       must("S3_BUCKET"),
		S3UseSSL:       boolEnv("S3_USE_SSL"),
		SignedURLTTL:   intOrDefault("SIGNED_URL_TTL_MIN", 60),
		AMQPURL:        os.Getenv("RABBITMQ_URL"), // empty means default local broker
		AllowedOrigins: splitList(
			orDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func orDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intOrDefault(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func boolEnv(key string) bool {
	v := os.Getenv(key)
	return strings.EqualFold(v, "true") || v == "1"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
