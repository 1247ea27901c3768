package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Cache     CacheConfig
	Storage   StorageConfig
	Drive     DriveConfig
	Forecast  ForecastConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	LogLevel       string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
	MaxUploadBytes int64
}

type DatabaseConfig struct {
	URL         string
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool
}

// AuthConfig describes how bearer tokens issued by the identity provider are verified.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
	Audience  string
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	DashboardTTLSeconds int
}

// StorageConfig points at the S3-compatible bucket that keeps uploaded CSV files.
type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// DriveConfig locates the shared Google Drive folder that inventory sheets are synced from.
type DriveConfig struct {
	CredentialsFile string
	FolderID        string
	FolderPath      string
}

// ForecastConfig holds the fixed cost assumptions and alert thresholds.
type ForecastConfig struct {
	OrderingCost       float64
	HoldingRate        float64
	ServiceZ           float64
	DemandVariability  float64
	CriticalPercentage float64
	WarningPercentage  float64
}

type TelemetryConfig struct {
	Enabled     bool
	Exporter    string
	Endpoint    string
	ServiceName string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		setDefaults(viper.GetViper())

		// Read from environment variables
		viper.AutomaticEnv()

		instance = fromViper(viper.GetViper())
	})

	return instance
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER_MAX_UPLOAD_BYTES", 5<<20)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "medstock")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_AUTO_MIGRATE", false)
	v.SetDefault("AUTH_JWT_SECRET", "")
	v.SetDefault("AUTH_JWT_ISSUER", "")
	v.SetDefault("AUTH_JWT_AUDIENCE", "authenticated")
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_DASHBOARD_TTL_SECONDS", 60)
	v.SetDefault("STORAGE_ENABLED", false)
	v.SetDefault("STORAGE_ENDPOINT", "")
	v.SetDefault("STORAGE_ACCESS_KEY", "")
	v.SetDefault("STORAGE_SECRET_KEY", "")
	v.SetDefault("STORAGE_BUCKET", "inventory-uploads")
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_USE_SSL", true)
	v.SetDefault("GOOGLE_DRIVE_CREDENTIALS_FILE", "")
	v.SetDefault("GOOGLE_DRIVE_FOLDER_ID", "")
	v.SetDefault("GOOGLE_DRIVE_FOLDER_PATH", "")
	v.SetDefault("FORECAST_ORDERING_COST", 50.0)
	v.SetDefault("FORECAST_HOLDING_RATE", 0.25)
	v.SetDefault("FORECAST_SERVICE_Z", 1.65)
	v.SetDefault("FORECAST_DEMAND_VARIABILITY", 0.2)
	v.SetDefault("ALERT_CRITICAL_PERCENTAGE", 10.0)
	v.SetDefault("ALERT_WARNING_PERCENTAGE", 20.0)
	v.SetDefault("TELEMETRY_ENABLED", false)
	v.SetDefault("TELEMETRY_EXPORTER", "stdout")
	v.SetDefault("TELEMETRY_ENDPOINT", "localhost:4318")
	v.SetDefault("TELEMETRY_SERVICE_NAME", "medstock-wise")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			LogLevel:       v.GetString("LOG_LEVEL"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			MaxUploadBytes: v.GetInt64("SERVER_MAX_UPLOAD_BYTES"),
		},
		Database: DatabaseConfig{
			URL:         v.GetString("DATABASE_URL"),
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			DBName:      v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("AUTH_JWT_SECRET"),
			Issuer:    v.GetString("AUTH_JWT_ISSUER"),
			Audience:  v.GetString("AUTH_JWT_AUDIENCE"),
		},
		Cache: CacheConfig{
			Enabled:             v.GetBool("CACHE_ENABLED"),
			RedisURL:            v.GetString("REDIS_URL"),
			RedisHost:           v.GetString("REDIS_HOST"),
			RedisPort:           v.GetString("REDIS_PORT"),
			RedisPassword:       v.GetString("REDIS_PASSWORD"),
			RedisDB:             v.GetInt("REDIS_DB"),
			DashboardTTLSeconds: v.GetInt("CACHE_DASHBOARD_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Enabled:   v.GetBool("STORAGE_ENABLED"),
			Endpoint:  v.GetString("STORAGE_ENDPOINT"),
			AccessKey: v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: v.GetString("STORAGE_SECRET_KEY"),
			Bucket:    v.GetString("STORAGE_BUCKET"),
			Region:    v.GetString("STORAGE_REGION"),
			UseSSL:    v.GetBool("STORAGE_USE_SSL"),
		},
		Drive: DriveConfig{
			CredentialsFile: v.GetString("GOOGLE_DRIVE_CREDENTIALS_FILE"),
			FolderID:        v.GetString("GOOGLE_DRIVE_FOLDER_ID"),
			FolderPath:      v.GetString("GOOGLE_DRIVE_FOLDER_PATH"),
		},
		Forecast: ForecastConfig{
			OrderingCost:       v.GetFloat64("FORECAST_ORDERING_COST"),
			HoldingRate:        v.GetFloat64("FORECAST_HOLDING_RATE"),
			ServiceZ:           v.GetFloat64("FORECAST_SERVICE_Z"),
			DemandVariability:  v.GetFloat64("FORECAST_DEMAND_VARIABILITY"),
			CriticalPercentage: v.GetFloat64("ALERT_CRITICAL_PERCENTAGE"),
			WarningPercentage:  v.GetFloat64("ALERT_WARNING_PERCENTAGE"),
		},
		Telemetry: TelemetryConfig{
			Enabled:     v.GetBool("TELEMETRY_ENABLED"),
			Exporter:    v.GetString("TELEMETRY_EXPORTER"),
			Endpoint:    v.GetString("TELEMETRY_ENDPOINT"),
			ServiceName: v.GetString("TELEMETRY_SERVICE_NAME"),
		},
	}
}
