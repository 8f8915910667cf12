package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	DeepSeek DeepSeekConfig
	OpenAI   OpenAIConfig
	Media    MediaConfig
	Pipeline PipelineConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// StorageConfig holds MinIO archive storage configuration.
// Archiving is optional; leave Endpoint empty to disable.
type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
	UseSSL          bool
}

// DeepSeekConfig holds the script generation provider configuration
type DeepSeekConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAIConfig holds the image and speech provider configuration
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	ImageModel string
	ImageSize  string
	TTSModel   string
	TTSVoice   string
}

// MediaConfig holds asset directories and render settings
type MediaConfig struct {
	ImagesDir  string
	AudioDir   string
	VideosDir  string
	FrameRate  int
	VideoCodec string
	AudioCodec string
}

// PipelineConfig holds background pipeline settings
type PipelineConfig struct {
	QueueName   string
	WorkerCount int
	JobTimeout  time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  []string{getEnv("ALLOWED_ORIGINS", "http://localhost:3000")},
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			Name:        getEnv("DB_NAME", "videogen"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:    getEnvAsInt("DB_MIN_CONNS", 5),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Endpoint:        getEnv("STORAGE_ENDPOINT", ""),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "videogen"),
			PublicURL:       getEnv("STORAGE_PUBLIC_URL", ""),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
		},
		DeepSeek: DeepSeekConfig{
			APIKey:  getEnv("DEEPSEEK_API_KEY", ""),
			BaseURL: getEnv("DEEPSEEK_API_URL", "https://api.deepseek.com"),
			Model:   getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		},
		OpenAI: OpenAIConfig{
			APIKey:     getEnv("OPENAI_API_KEY", ""),
			BaseURL:    getEnv("OPENAI_API_URL", "https://api.openai.com"),
			ImageModel: getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),
			ImageSize:  getEnv("OPENAI_IMAGE_SIZE", "1792x1024"),
			TTSModel:   getEnv("OPENAI_TTS_MODEL", "tts-1-hd"),
			TTSVoice:   getEnv("OPENAI_TTS_VOICE", "nova"),
		},
		Media: MediaConfig{
			ImagesDir:  getEnv("IMAGES_DIR", "generated_images"),
			AudioDir:   getEnv("AUDIO_DIR", "generated_audio"),
			VideosDir:  getEnv("VIDEOS_DIR", "generated_videos"),
			FrameRate:  getEnvAsInt("VIDEO_FRAME_RATE", 24),
			VideoCodec: getEnv("VIDEO_CODEC", "libx264"),
			AudioCodec: getEnv("AUDIO_CODEC", "aac"),
		},
		Pipeline: PipelineConfig{
			QueueName:   getEnv("PIPELINE_QUEUE", "q_video_generate"),
			WorkerCount: getEnvAsInt("PIPELINE_WORKERS", 4),
			JobTimeout:  getEnvAsDuration("PIPELINE_JOB_TIMEOUT", "15m"),
		},
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DeepSeek.APIKey == "" {
		return fmt.Errorf("DEEPSEEK_API_KEY is required")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.Pipeline.WorkerCount < 1 {
		return fmt.Errorf("PIPELINE_WORKERS must be at least 1")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// ArchiveEnabled reports whether completed videos should be uploaded to MinIO
func (c *Config) ArchiveEnabled() bool {
	return c.Storage.Endpoint != ""
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
