package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	AccessSecret   string `mapstructure:"JWT_ACCESS_SECRET"`
	RefreshSecret  string `mapstructure:"JWT_REFRESH_SECRET"`
	HTTPPort       string `mapstructure:"HTTP_PORT"`
	CookieDomain   string `mapstructure:"COOKIE_DOMAIN"`
	CookieSecure   bool   `mapstructure:"COOKIE_SECURE"`
	AllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	LogMode        string `mapstructure:"LOG_MODE"`
	Env            string `mapstructure:"APP_ENV"`
}

func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("HTTP_PORT", ":8081")
	viper.SetDefault("LOG_MODE", "dev")
	viper.SetDefault("APP_ENV", "local")

	viper.BindEnv("DB_HOST")
	viper.BindEnv("DB_PORT")
	viper.BindEnv("DB_USER")
	viper.BindEnv("DB_PASSWORD")
	viper.BindEnv("DB_NAME")
	viper.BindEnv("REDIS_ADDR")
	viper.BindEnv("REDIS_PASSWORD")
	viper.BindEnv("JWT_ACCESS_SECRET")
	viper.BindEnv("JWT_REFRESH_SECRET")
	viper.BindEnv("HTTP_PORT")
	viper.BindEnv("COOKIE_DOMAIN")
	viper.BindEnv("COOKIE_SECURE")
	viper.BindEnv("CORS_ALLOWED_ORIGINS")
	viper.BindEnv("LOG_MODE")
	viper.BindEnv("APP_ENV")

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

func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
