package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`

	HTTPPort       string `mapstructure:"HTTP_PORT"`
	ProfileSvcURL  string `mapstructure:"PROFILE_SVC_URL"`
	AllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	RedisPassword  string        `mapstructure:"REDIS_PASSWORD"`
	CourseCacheTTL time.Duration `mapstructure:"COURSE_CACHE_TTL"`

	EnrollmentRateLimit  int           `mapstructure:"ENROLLMENT_RATE_LIMIT"`
	EnrollmentRateWindow time.Duration `mapstructure:"ENROLLMENT_RATE_WINDOW"`

	JWTAccessSecret string `mapstructure:"JWT_ACCESS_SECRET"`

	LogMode string `mapstructure:"LOG_MODE"`
	Env     string `mapstructure:"APP_ENV"`
}

func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("HTTP_PORT", ":8080")
	viper.SetDefault("PROFILE_SVC_URL", "localhost:50052")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("COURSE_CACHE_TTL", "5m")
	viper.SetDefault("ENROLLMENT_RATE_LIMIT", 10)
	viper.SetDefault("ENROLLMENT_RATE_WINDOW", "1m")
	viper.SetDefault("LOG_MODE", "dev")
	viper.SetDefault("APP_ENV", "local")

	for _, key := range []string{
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"HTTP_PORT", "PROFILE_SVC_URL", "CORS_ALLOWED_ORIGINS",
		"REDIS_ADDR", "REDIS_PASSWORD", "COURSE_CACHE_TTL",
		"ENROLLMENT_RATE_LIMIT", "ENROLLMENT_RATE_WINDOW",
		"JWT_ACCESS_SECRET", "LOG_MODE", "APP_ENV",
	} {
		_ = viper.BindEnv(key)
	}

	err = viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}
	err = viper.Unmarshal(&config)
	return
}

func (c Config) DSN() string {
	return "host=" + c.DBHost + " user=" + c.DBUser + " password=" + c.DBPassword +
		" dbname=" + c.DBName + " port=" + c.DBPort + " sslmode=disable"
}

// Origins splits CORS_ALLOWED_ORIGINS on commas. Empty means any origin.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
