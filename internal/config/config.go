package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	Tracing      TracingConfig `mapstructure:"tracing"`
	Redis        RedisConfig
	CORS         CORSConfig         `mapstructure:"cors"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Gamification GamificationConfig `mapstructure:"gamification"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`

	// 配置文件所在目录，供热加载使用
	Path string `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port        string
	Mode        string
	WatchConfig bool `mapstructure:"watch_config"`
}

type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"`
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	Charset    string
	ParseTime  bool   `mapstructure:"parse_time"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	Host            string
	Port            int
	Password        string
	DB              int
	StatsTTLSeconds int `mapstructure:"stats_ttl_seconds"`
}

// AuthConfig 演示登录开关：开启后 /api/auth/demo 直接签发演示账号的令牌
type AuthConfig struct {
	DemoLogin bool `mapstructure:"demo_login"`
}

type GamificationConfig struct {
	XPPerProblem     int    `mapstructure:"xp_per_problem"`
	XPPerLevel       int    `mapstructure:"xp_per_level"`
	MasteryThreshold int    `mapstructure:"mastery_threshold"`
	ActivityDays     int    `mapstructure:"activity_days"`
	RecommendLimit   int    `mapstructure:"recommend_limit"`
	Timezone         string `mapstructure:"timezone"`
}

// Location 连续打卡与每日活动使用的时区，未配置时为 UTC。
// 非法时区在 LoadConfig 中已被拒绝
func (g GamificationConfig) Location() *time.Location {
	if g.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parse_time", true)
	v.SetDefault("database.sqlite_path", "data/faang_prep.db")
	v.SetDefault("jwt.expire_hours", 168)
	v.SetDefault("redis.stats_ttl_seconds", 600)
	v.SetDefault("rate_limit.max_requests", 1000)
	v.SetDefault("rate_limit.window_minutes", 1)
	v.SetDefault("gamification.xp_per_problem", 10)
	v.SetDefault("gamification.xp_per_level", 100)
	v.SetDefault("gamification.mastery_threshold", 80)
	v.SetDefault("gamification.activity_days", 91)
	v.SetDefault("gamification.recommend_limit", 5)
	v.SetDefault("gamification.timezone", "UTC")
}

// Default 返回只包含默认值的配置，测试和脚本使用
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour
	return &cfg
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("FAANG_PREP")
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")
	v.BindEnv("database.sqlite_path", "DATABASE_SQLITE_PATH")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "PORT")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// Auth
	v.BindEnv("auth.demo_login", "DEMO_LOGIN")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour
	cfg.Path = path

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if cfg.Gamification.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Gamification.Timezone); err != nil {
			return nil, fmt.Errorf("invalid gamification timezone %q: %w", cfg.Gamification.Timezone, err)
		}
	}

	if cfg.Database.Driver == "sqlite" {
		if dir := filepath.Dir(cfg.Database.SQLitePath); dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				os.MkdirAll(dir, 0755)
			}
		}
	}

	return &cfg, nil
}
