package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddress      string
	Env                string
	JWTSecret          string
	JWTExpiration      time.Duration
	AuthProvider       string
	CORSAllowedOrigins []string
	MaxUploadSizeMB    int64
	BcryptCost         int
	RecaptchaSecret    string

	Firebase FirebaseConfig
	Store    StoreConfig
	Storage  StorageConfig
}

type FirebaseConfig struct {
	ProjectID       string
	CredentialsJSON string
}

// StoreConfig selects the user document store.
type StoreConfig struct {
	Backend  string
	MongoURI string
	MongoDB  string
	MongoTLS bool
}

// StorageConfig selects the object store that holds profile images.
type StorageConfig struct {
	Backend string
	S3      S3Config
	GCS     GCSConfig
	Minio   MinioConfig
	Disk    DiskConfig
}

type S3Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type DiskConfig struct {
	UploadDir     string
	PublicBaseURL string
}

const (
	AuthProviderJWT      = "jwt"
	AuthProviderFirebase = "firebase"

	StoreMongo  = "mongo"
	StoreMemory = "memory"

	StorageS3    = "s3"
	StorageGCS   = "gcs"
	StorageMinio = "minio"
	StorageDisk  = "disk"
)

func Load() *Config {
	if os.Getenv("ENV") == "dev" {
		_ = godotenv.Load()
	}

	return &Config{
		ServerAddress:      getEnv("SERVER_ADDRESS", ":8080"),
		Env:                getEnv("ENV", "production"),
		JWTSecret:          getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTExpiration:      getEnvDuration("JWT_EXPIRATION", 24*time.Hour),
		AuthProvider:       strings.ToLower(getEnv("AUTH_PROVIDER", AuthProviderJWT)),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		MaxUploadSizeMB:    int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 10)),
		BcryptCost:         getEnvInt("BCRYPT_COST", 10),
		RecaptchaSecret:    getEnv("RECAPTCHA_SECRET", ""),
		Firebase: FirebaseConfig{
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			CredentialsJSON: getEnv("FIREBASE_CREDENTIALS_JSON", ""),
		},
		Store: StoreConfig{
			Backend:  strings.ToLower(getEnv("STORE_BACKEND", StoreMongo)),
			MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
			MongoDB:  getEnv("MONGO_DB", "connectro"),
			MongoTLS: getEnvBool("MONGO_TLS", false),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(getEnv("STORAGE_BACKEND", StorageS3)),
			S3: S3Config{
				Bucket:        getEnv("S3_BUCKET", "connectro"),
				Region:        getEnv("S3_REGION", "us-east-1"),
				Endpoint:      getEnv("S3_ENDPOINT", ""),
				AccessKey:     getEnv("S3_ACCESS_KEY", ""),
				SecretKey:     getEnv("S3_SECRET_KEY", ""),
				PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
			},
			GCS: GCSConfig{
				Bucket:          getEnv("GCS_BUCKET", ""),
				ProjectID:       getEnv("GCS_PROJECT_ID", ""),
				CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
			},
			Minio: MinioConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", "connectro"),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
			Disk: DiskConfig{
				UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
				PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080/uploads"),
			},
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
