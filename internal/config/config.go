package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis      Redis  `yaml:"redis"`
	Game       Game   `yaml:"game"`
}

type Redis struct {
	Host        string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port        string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password    string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB          int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	EventsLimit int    `yaml:"events-limit" env:"REDIS_EVENTS_LIMIT" env-default:"10"`
}

type Game struct {
	ResetOnDisconnect bool `yaml:"reset-on-disconnect" env:"GAME_RESET_ON_DISCONNECT" env-default:"false"`
	MaxNameLength     int  `yaml:"max-name-length" env:"GAME_MAX_NAME_LENGTH" env-default:"32"`
	SendBuffer        int  `yaml:"send-buffer" env:"GAME_SEND_BUFFER" env-default:"64"`
}

// MustLoad - load all configurations in config.yml file. Variables from an optional .env file
// next to it override the yaml values.
func MustLoad(path, envPath string) *Config {
	config, err := Load(path, envPath)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path, envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("unable to load env file: %w", err)
	}

	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	if that.Host == "" || that.Port == "" {
		return ""
	}

	return net.JoinHostPort(that.Host, that.Port)
}
