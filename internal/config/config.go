package config

import (
	"os"
	"strconv"
	"strings"
)

// Backend selectors.
const (
	StorePostgres  = "postgres"
	StoreFirestore = "firestore"

	StorageS3  = "s3"
	StorageGCS = "gcs"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	AutoMigrate        bool
}

// FirebaseConfig holds the Firestore project and the credential sources tried in order.
type FirebaseConfig struct {
	ProjectID         string
	ServiceAccountKey string // full service account JSON
	ClientEmail       string
	PrivateKey        string
	CredentialsFile   string
}

// OSSConfig holds S3-compatible object storage settings (Aliyun OSS, AWS S3, MinIO).
type OSSConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	UseSSL          bool
	VirtualHost     bool // bucket-as-subdomain addressing, required by OSS
	PublicBaseURL   string
	CreateBucket    bool
}

// GCSConfig holds Cloud Storage settings. Credentials are shared with Firebase.
type GCSConfig struct {
	Bucket string
}

// AuthConfig configures bearer token verification and the delete allow-list.
type AuthConfig struct {
	JWTSecret    string
	JWTPublicKey string // PEM, RS256
	JWTCertsURL  string // kid -> PEM map, e.g. the Firebase securetoken certs
	Issuer       string
	Audience     string
	AdminEmails  string
}

// ProxyConfig configures the signed retrieval proxy.
type ProxyConfig struct {
	Mode         string // stream | redirect
	URLExpirySec int
}

// SummaryConfig configures the generative summary model.
type SummaryConfig struct {
	ProjectID string
	Region    string
	Model     string
	RPS       float64
	Burst     int
}

// LogConfig configures the zerolog root logger.
type LogConfig struct {
	Level  string
	Format string // json | console
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Env            string
	AppHost        string
	Port           string
	StoreBackend   string
	StorageBackend string
	MaxPageSize    int
	Database       DatabaseConfig
	Firebase       FirebaseConfig
	OSS            OSSConfig
	GCS            GCSConfig
	Auth           AuthConfig
	Proxy          ProxyConfig
	Summary        SummaryConfig
	Log            LogConfig
}

// IsProduction reports whether error details must be hidden from clients.
func (c *AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Presence reports, per setting, whether a value is configured. Values are never exposed.
func (c *AppConfig) Presence() map[string]bool {
	return map[string]bool{
		"STORE_BACKEND_POSTGRES":         c.StoreBackend == StorePostgres,
		"STORAGE_BACKEND_GCS":            c.StorageBackend == StorageGCS,
		"DB_HOST":                        c.Database.Host != "",
		"OSS_ENDPOINT":                   c.OSS.Endpoint != "",
		"OSS_ACCESS_KEY_ID":              c.OSS.AccessKeyID != "",
		"OSS_ACCESS_KEY_SECRET":          c.OSS.AccessKeySecret != "",
		"OSS_BUCKET":                     c.OSS.Bucket != "",
		"GCS_BUCKET":                     c.GCS.Bucket != "",
		"FIREBASE_PROJECT_ID":            c.Firebase.ProjectID != "",
		"FIREBASE_SERVICE_ACCOUNT_KEY":   c.Firebase.ServiceAccountKey != "",
		"FIREBASE_CLIENT_EMAIL":          c.Firebase.ClientEmail != "",
		"FIREBASE_PRIVATE_KEY":           c.Firebase.PrivateKey != "",
		"GOOGLE_APPLICATION_CREDENTIALS": c.Firebase.CredentialsFile != "",
		"AUTH_JWT_SECRET":                c.Auth.JWTSecret != "",
		"AUTH_JWT_PUBLIC_KEY":            c.Auth.JWTPublicKey != "",
		"AUTH_JWT_CERTS_URL":             c.Auth.JWTCertsURL != "",
		"ADMIN_EMAILS":                   c.Auth.AdminEmails != "",
		"VERTEX_PROJECT_ID":              c.Summary.ProjectID != "",
	}
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	projectID := getEnv("FIREBASE_PROJECT_ID", getEnv("GOOGLE_CLOUD_PROJECT", ""))
	return &AppConfig{
		Env:            getEnv("APP_ENV", "development"),
		AppHost:        getEnv("APP_HOST", "localhost:8080"),
		Port:           getEnv("PORT", "8080"),
		StoreBackend:   strings.ToLower(getEnv("STORE_BACKEND", StorePostgres)),
		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", StorageS3)),
		MaxPageSize:    getEnvInt("LIST_MAX_PAGE_SIZE", 50),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			AutoMigrate:        getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Firebase: FirebaseConfig{
			ProjectID:         projectID,
			ServiceAccountKey: getEnv("FIREBASE_SERVICE_ACCOUNT_KEY", ""),
			ClientEmail:       getEnv("FIREBASE_CLIENT_EMAIL", ""),
			PrivateKey:        unescapeNewlines(getEnv("FIREBASE_PRIVATE_KEY", "")),
			CredentialsFile:   getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		},
		OSS: OSSConfig{
			Endpoint:        getEnv("OSS_ENDPOINT", ""),
			Region:          getEnv("OSS_REGION", ""),
			AccessKeyID:     getEnv("OSS_ACCESS_KEY_ID", ""),
			AccessKeySecret: getEnv("OSS_ACCESS_KEY_SECRET", ""),
			Bucket:          getEnv("OSS_BUCKET", ""),
			UseSSL:          getEnvBool("OSS_USE_SSL", true),
			VirtualHost:     getEnvBool("OSS_VIRTUAL_HOST", true),
			PublicBaseURL:   strings.TrimRight(getEnv("OSS_PUBLIC_BASE_URL", ""), "/"),
			CreateBucket:    getEnvBool("OSS_CREATE_BUCKET", false),
		},
		GCS: GCSConfig{
			Bucket: getEnv("GCS_BUCKET", ""),
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("AUTH_JWT_SECRET", ""),
			JWTPublicKey: unescapeNewlines(getEnv("AUTH_JWT_PUBLIC_KEY", "")),
			JWTCertsURL:  getEnv("AUTH_JWT_CERTS_URL", ""),
			Issuer:       getEnv("AUTH_JWT_ISSUER", ""),
			Audience:     getEnv("AUTH_JWT_AUDIENCE", ""),
			AdminEmails:  getEnv("ADMIN_EMAILS", ""),
		},
		Proxy: ProxyConfig{
			Mode:         strings.ToLower(getEnv("PROXY_MODE", "stream")),
			URLExpirySec: getEnvInt("PROXY_URL_EXPIRY_SEC", 300),
		},
		Summary: SummaryConfig{
			ProjectID: getEnv("VERTEX_PROJECT_ID", projectID),
			Region:    getEnv("VERTEX_REGION", "us-central1"),
			Model:     getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			RPS:       getEnvFloat("SUMMARY_RPS", 1),
			Burst:     getEnvInt("SUMMARY_BURST", 3),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// unescapeNewlines turns literal "\n" sequences into newlines. Keys pasted into
// single-line env vars arrive escaped.
func unescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}
