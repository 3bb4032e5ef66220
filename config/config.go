package config

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	globalConfig Config
	once         sync.Once
)

// Config holds the flattened application configuration.
type Config struct {
	// Server
	ServerHost         string        `mapstructure:"server_host"`
	ServerPort         int           `mapstructure:"server_port"`
	ServerDomain       string        `mapstructure:"server_domain"`
	ServerReadTimeout  time.Duration `mapstructure:"server_read_timeout"`
	ServerWriteTimeout time.Duration `mapstructure:"server_write_timeout"`
	ServerIdleTimeout  time.Duration `mapstructure:"server_idle_timeout"`

	// Database
	DBType            string `mapstructure:"db_type"`
	DBHost            string `mapstructure:"db_host"`
	DBPort            int    `mapstructure:"db_port"`
	DBUsername        string `mapstructure:"db_username"`
	DBPassword        string `mapstructure:"db_password"`
	DBName            string `mapstructure:"db_name"`
	DBFilePath        string `mapstructure:"db_file_path"`
	DBMaxOpenConns    int    `mapstructure:"db_max_open_conns"`
	DBMaxIdleConns    int    `mapstructure:"db_max_idle_conns"`
	DBConnMaxLifetime int    `mapstructure:"db_conn_max_lifetime"`

	// JWT
	JWTSecret           string `mapstructure:"jwt_secret"`
	JWTExpiresIn        string `mapstructure:"jwt_expires_in"`
	JWTRefreshExpiresIn string `mapstructure:"jwt_refresh_expires_in"`

	// Storage
	StorageType      string `mapstructure:"storage_type"`
	StorageLocalPath string `mapstructure:"storage_local_path"`

	MinioEndpoint        string `mapstructure:"minio_endpoint"`
	MinioAccessKeyID     string `mapstructure:"minio_access_key_id"`
	MinioSecretAccessKey string `mapstructure:"minio_secret_access_key"`
	MinioBucketName      string `mapstructure:"minio_bucket_name"`
	MinioUseSSL          bool   `mapstructure:"minio_use_ssl"`

	WebdavURL      string `mapstructure:"webdav_url"`
	WebdavUsername string `mapstructure:"webdav_username"`
	WebdavPassword string `mapstructure:"webdav_password"`
	WebdavRoot     string `mapstructure:"webdav_root"`

	// Cache
	CacheType          string `mapstructure:"cache_type"`
	CacheRedisAddr     string `mapstructure:"cache_redis_addr"`
	CacheRedisPassword string `mapstructure:"cache_redis_password"`
	CacheRedisDB       int    `mapstructure:"cache_redis_db"`
	CacheArtworkTTL    int    `mapstructure:"cache_artwork_ttl"`
	CacheMaxSizeMB     int64  `mapstructure:"cache_max_size_mb"`

	// Rate limiting
	RateLimitApiRPS       float64       `mapstructure:"rate_limit_api_rps"`
	RateLimitApiBurst     int           `mapstructure:"rate_limit_api_burst"`
	RateLimitArtworkRPS   float64       `mapstructure:"rate_limit_artwork_rps"`
	RateLimitArtworkBurst int           `mapstructure:"rate_limit_artwork_burst"`
	RateLimitAuthRPS      float64       `mapstructure:"rate_limit_auth_rps"`
	RateLimitAuthBurst    int           `mapstructure:"rate_limit_auth_burst"`
	RateLimitExpireTime   time.Duration `mapstructure:"rate_limit_expire_time"`

	// Upload
	UploadMaxSizeMB       int `mapstructure:"upload_max_size_mb"`
	UploadMaxBatchTotalMB int `mapstructure:"upload_max_batch_total_mb"`

	// Thumbnails
	ThumbnailMaxEdge int `mapstructure:"thumbnail_max_edge"`
}

// InitConfig loads the configuration exactly once.
func InitConfig() {
	once.Do(func() {
		loadConfig()
	})
}

func Get() *Config {
	return &globalConfig
}

func loadConfig() {
	setDefaults()

	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "Info: .env file not found, using defaults and environment variables")
	} else {
		fmt.Fprintln(os.Stderr, "Info: Loaded configuration from .env file")
	}

	viper.AutomaticEnv()
	for _, key := range viper.AllKeys() {
		viper.BindEnv(key)
	}

	if err := viper.Unmarshal(&globalConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: Unable to unmarshal config, %v\n", err)
		os.Exit(1)
	}
}

func setDefaults() {
	viper.SetDefault("server_host", "127.0.0.1")
	viper.SetDefault("server_port", 8080)
	viper.SetDefault("server_domain", "")
	viper.SetDefault("server_read_timeout", "15s")
	viper.SetDefault("server_write_timeout", "30s")
	viper.SetDefault("server_idle_timeout", "120s")

	viper.SetDefault("db_type", "sqlite")
	viper.SetDefault("db_host", "localhost")
	viper.SetDefault("db_port", 5432)
	viper.SetDefault("db_username", "postgres")
	viper.SetDefault("db_password", "")
	viper.SetDefault("db_name", "galerie")
	viper.SetDefault("db_file_path", "")
	viper.SetDefault("db_max_open_conns", 100)
	viper.SetDefault("db_max_idle_conns", 25)
	viper.SetDefault("db_conn_max_lifetime", 3600)

	viper.SetDefault("jwt_secret", "")
	viper.SetDefault("jwt_expires_in", "15m")
	viper.SetDefault("jwt_refresh_expires_in", "720h")

	viper.SetDefault("storage_type", "local")
	viper.SetDefault("storage_local_path", "./data/artworks")
	viper.SetDefault("minio_endpoint", "")
	viper.SetDefault("minio_bucket_name", "galerie")
	viper.SetDefault("minio_use_ssl", false)
	viper.SetDefault("webdav_url", "")
	viper.SetDefault("webdav_root", "galerie")

	viper.SetDefault("cache_type", "memory")
	viper.SetDefault("cache_redis_addr", "localhost:6379")
	viper.SetDefault("cache_redis_password", "")
	viper.SetDefault("cache_redis_db", 0)
	viper.SetDefault("cache_artwork_ttl", 3600)
	viper.SetDefault("cache_max_size_mb", 256)

	viper.SetDefault("rate_limit_api_rps", 30.0)
	viper.SetDefault("rate_limit_api_burst", 60)
	viper.SetDefault("rate_limit_artwork_rps", 100.0)
	viper.SetDefault("rate_limit_artwork_burst", 200)
	viper.SetDefault("rate_limit_auth_rps", 0.5)
	viper.SetDefault("rate_limit_auth_burst", 5)
	viper.SetDefault("rate_limit_expire_time", "10m")

	viper.SetDefault("upload_max_size_mb", 50)
	viper.SetDefault("upload_max_batch_total_mb", 500)

	viper.SetDefault("thumbnail_max_edge", 512)
}

// Addr returns the listen address as "host:port".
func (c *Config) Addr() string {
	host := c.ServerHost
	if host == "" {
		host = "0.0.0.0"
	}
	port := c.ServerPort
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// BaseURL returns the public base URL used to build artwork links.
func (c *Config) BaseURL() string {
	if c.ServerDomain != "" {
		return c.ServerDomain
	}
	host := c.ServerHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.ServerPort)
}

// Cpus returns a sane default worker count.
func Cpus() int {
	n := runtime.GOMAXPROCS(0)
	if n < 2 {
		return 2
	}
	return n
}
