package config

import "github.com/spf13/viper"

type Config struct {
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	GRPCPort   string `mapstructure:"GRPC_PORT"`
	LogMode    string `mapstructure:"LOG_MODE"`
	Env        string `mapstructure:"APP_ENV"`
}

func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("GRPC_PORT", ":50052")
	viper.SetDefault("LOG_MODE", "dev")
	viper.SetDefault("APP_ENV", "local")

	viper.BindEnv("DB_HOST")
	viper.BindEnv("DB_PORT")
	viper.BindEnv("DB_USER")
	viper.BindEnv("DB_PASSWORD")
	viper.BindEnv("DB_NAME")
	viper.BindEnv("GRPC_PORT")
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
