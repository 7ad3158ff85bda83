package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

var (
	globalConfig Config
	once         sync.Once
)

// Config 扁平化配置结构体
type Config struct {
	AppEnv   string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	// 服务器配置
	ServerHost         string        `mapstructure:"server_host"`
	ServerPort         int           `mapstructure:"server_port"`
	ServerDomain       string        `mapstructure:"server_domain"`
	ServerReadTimeout  time.Duration `mapstructure:"server_read_timeout"`
	ServerWriteTimeout time.Duration `mapstructure:"server_write_timeout"`
	ServerIdleTimeout  time.Duration `mapstructure:"server_idle_timeout"`

	// 数据库配置
	DBType            string        `mapstructure:"db_type"`
	DBHost            string        `mapstructure:"db_host"`
	DBPort            int           `mapstructure:"db_port"`
	DBUsername        string        `mapstructure:"db_username"`
	DBPassword        string        `mapstructure:"db_password"`
	DBName            string        `mapstructure:"db_name"`
	DBFilePath        string        `mapstructure:"db_file_path"`
	DBMaxOpenConns    int           `mapstructure:"db_max_open_conns"`
	DBMaxIdleConns    int           `mapstructure:"db_max_idle_conns"`
	DBConnMaxLifetime int           `mapstructure:"db_conn_max_lifetime"`
	DBWaitRetries     int           `mapstructure:"db_wait_retries"`
	DBWaitInterval    time.Duration `mapstructure:"db_wait_interval"`

	// JWT
	JWTSecret     string        `mapstructure:"jwt_secret"`
	JWTAccessTTL  time.Duration `mapstructure:"jwt_access_ttl"`
	JWTRefreshTTL time.Duration `mapstructure:"jwt_refresh_ttl"`

	// 存储配置
	StorageType          string `mapstructure:"storage_type"`
	StorageLocalPath     string `mapstructure:"storage_local_path"`
	StorageMinioEndpoint string `mapstructure:"storage_minio_endpoint"`
	StorageMinioAccess   string `mapstructure:"storage_minio_access_key"`
	StorageMinioSecret   string `mapstructure:"storage_minio_secret_key"`
	StorageMinioBucket   string `mapstructure:"storage_minio_bucket"`
	StorageMinioUseSSL   bool   `mapstructure:"storage_minio_use_ssl"`
	StorageWebDAVURL     string `mapstructure:"storage_webdav_url"`
	StorageWebDAVUser    string `mapstructure:"storage_webdav_username"`
	StorageWebDAVPass    string `mapstructure:"storage_webdav_password"`
	StorageWebDAVRoot    string `mapstructure:"storage_webdav_root"`

	// 缓存提供者配置
	CacheType          string        `mapstructure:"cache_type"`
	CacheRedisAddr     string        `mapstructure:"cache_redis_addr"`
	CacheRedisPassword string        `mapstructure:"cache_redis_password"`
	CacheRedisDB       int           `mapstructure:"cache_redis_db"`
	CacheUserTTL       time.Duration `mapstructure:"cache_user_ttl"`

	// 图片处理
	ImageCodec          string `mapstructure:"image_codec"`
	ImageMaxDimension   int    `mapstructure:"image_max_dimension"`
	ImageMaxConcurrency int64  `mapstructure:"image_max_concurrency"`
	MediaURLPrefix      string `mapstructure:"media_url_prefix"`

	// 限流配置
	RateLimitApiRPS     float64       `mapstructure:"rate_limit_api_rps"`
	RateLimitApiBurst   int           `mapstructure:"rate_limit_api_burst"`
	RateLimitAuthRPS    float64       `mapstructure:"rate_limit_auth_rps"`
	RateLimitAuthBurst  int           `mapstructure:"rate_limit_auth_burst"`
	RateLimitExpireTime time.Duration `mapstructure:"rate_limit_expire_time"`
	MaxConcurrency      int64         `mapstructure:"max_concurrency"`

	// 上传配置
	UploadMaxSizeMB int `mapstructure:"upload_max_size_mb"`
}

// InitConfig Initialize configuration
func InitConfig() {
	once.Do(func() {
		loadConfig()
	})
}

func Get() *Config {
	return &globalConfig
}

// loadConfig Core configuration loading
func loadConfig() {
	setDefaults(viper.GetViper())

	configFile := viper.GetString("config_file_path")
	if configFile == "" {
		configFile = ".env"
	}
	viper.SetConfigFile(configFile)
	viper.SetConfigType("env")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "Info: .env file not found, using defaults and environment variables")
	} else {
		fmt.Fprintln(os.Stderr, "Info: Loaded configuration from", configFile)
	}

	viper.AutomaticEnv()

	cfg, err := Decode(viper.AllSettings())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: Unable to decode config, %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
	globalConfig = *cfg
}

// Decode 将 viper 的扁平 settings 解码为 Config
func Decode(settings map[string]interface{}) (*Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(settings); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Defaults 返回仅包含默认值的配置，测试与命令行工具使用
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := Decode(v.AllSettings())
	if err != nil {
		panic(err)
	}
	return cfg
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "production")
	v.SetDefault("log_level", "info")

	// 服务器配置默认值
	v.SetDefault("server_host", "127.0.0.1")
	v.SetDefault("server_port", 8080)
	v.SetDefault("server_domain", "")
	v.SetDefault("server_read_timeout", "15s")
	v.SetDefault("server_write_timeout", "60s")
	v.SetDefault("server_idle_timeout", "120s")

	// 数据库配置默认值
	v.SetDefault("db_type", "sqlite")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_username", "postgres")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "imagehost")
	v.SetDefault("db_file_path", "")
	v.SetDefault("db_max_open_conns", 100)
	v.SetDefault("db_max_idle_conns", 25)
	v.SetDefault("db_conn_max_lifetime", 3600)
	v.SetDefault("db_wait_retries", 30)
	v.SetDefault("db_wait_interval", "1s")

	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_access_ttl", "5m")
	v.SetDefault("jwt_refresh_ttl", "24h")

	// 存储配置默认值
	v.SetDefault("storage_type", "local")
	v.SetDefault("storage_local_path", "./data/media")
	v.SetDefault("storage_minio_endpoint", "")
	v.SetDefault("storage_minio_access_key", "")
	v.SetDefault("storage_minio_secret_key", "")
	v.SetDefault("storage_minio_bucket", "imagehost")
	v.SetDefault("storage_minio_use_ssl", false)
	v.SetDefault("storage_webdav_url", "")
	v.SetDefault("storage_webdav_username", "")
	v.SetDefault("storage_webdav_password", "")
	v.SetDefault("storage_webdav_root", "")

	// 缓存提供者配置默认值
	v.SetDefault("cache_type", "memory")
	v.SetDefault("cache_redis_addr", "localhost:6379")
	v.SetDefault("cache_redis_password", "")
	v.SetDefault("cache_redis_db", 0)
	v.SetDefault("cache_user_ttl", "1m")

	v.SetDefault("image_codec", "std")
	v.SetDefault("image_max_dimension", 10000)
	v.SetDefault("image_max_concurrency", 4)
	v.SetDefault("media_url_prefix", "/static/media/")

	// 限流配置默认值
	v.SetDefault("rate_limit_api_rps", 30.0)
	v.SetDefault("rate_limit_api_burst", 60)
	v.SetDefault("rate_limit_auth_rps", 0.5)
	v.SetDefault("rate_limit_auth_burst", 5)
	v.SetDefault("rate_limit_expire_time", "10m")
	v.SetDefault("max_concurrency", 100)

	// 上传配置默认值
	v.SetDefault("upload_max_size_mb", 50)
}

// Validate 检查必须的配置项
func (c *Config) Validate() error {
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("jwt_secret must be at least 32 characters long, got %d", len(c.JWTSecret))
	}
	if c.JWTAccessTTL <= 0 || c.JWTRefreshTTL <= 0 {
		return fmt.Errorf("jwt_access_ttl and jwt_refresh_ttl must be positive")
	}
	if !strings.HasPrefix(c.MediaURLPrefix, "/") || !strings.HasSuffix(c.MediaURLPrefix, "/") {
		return fmt.Errorf("media_url_prefix must start and end with '/': %q", c.MediaURLPrefix)
	}
	return nil
}

// IsDevelopment 开发模式
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development" || c.AppEnv == "dev"
}

// Addr 返回监听地址，格式为 "host:port"
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

// BaseURL 返回基础 URL
func (c *Config) BaseURL() string {
	if c.ServerDomain != "" {
		return strings.TrimRight(c.ServerDomain, "/")
	}
	host := c.ServerHost
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.ServerPort)
}

// Host 返回 BaseURL 中的主机部分，用于请求缺少 Host 头时生成链接
func (c *Config) Host() string {
	base := c.BaseURL()
	if i := strings.Index(base, "://"); i >= 0 {
		base = base[i+3:]
	}
	return strings.TrimRight(base, "/")
}
