// Package config loads the server and client configuration from the
// environment. A .env file in the working directory is read first when
// present.
package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultAddress is the address used when CHAT_ADDRESS is not set.
const DefaultAddress = "127.0.0.1:11111"

// Server configures cmd/server.
type Server struct {
	Address      string        `env:"CHAT_ADDRESS,default=127.0.0.1:11111" validate:"required"`
	WSAddress    string        `env:"CHAT_WS_ADDRESS"`
	PoolSize     int           `env:"CHAT_POOL_SIZE,default=8" validate:"min=1"`
	WriteTimeout time.Duration `env:"CHAT_WRITE_TIMEOUT,default=10s" validate:"min=0"`
	LogLevel     string        `env:"CHAT_LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR"`
}

// Client configures cmd/client. A ws:// Address selects the WebSocket
// transport.
type Client struct {
	Address   string `env:"CHAT_ADDRESS,default=127.0.0.1:11111" validate:"required"`
	FilesDir  string `env:"CHAT_FILES_DIR,default=files" validate:"required"`
	ImagesDir string `env:"CHAT_IMAGES_DIR,default=images" validate:"required"`
	LogLevel  string `env:"CHAT_LOG_LEVEL,default=ERROR" validate:"oneof=DEBUG INFO WARN ERROR"`
}

var validate = validator.New()

// LoadServer reads the server configuration. A non-empty address
// overrides CHAT_ADDRESS.
func LoadServer(address string) (Server, error) {
	var cfg Server
	if err := load(&cfg); err != nil {
		return Server{}, err
	}
	if address != "" {
		cfg.Address = address
	}
	if err := validate.Struct(cfg); err != nil {
		return Server{}, fmt.Errorf("invalid server config: %w", err)
	}
	return cfg, nil
}

// LoadClient reads the client configuration. A non-empty address
// overrides CHAT_ADDRESS.
func LoadClient(address string) (Client, error) {
	var cfg Client
	if err := load(&cfg); err != nil {
		return Client{}, err
	}
	if address != "" {
		cfg.Address = address
	}
	if err := validate.Struct(cfg); err != nil {
		return Client{}, fmt.Errorf("invalid client config: %w", err)
	}
	return cfg, nil
}

func load(cfg any) error {
	// the .env file is optional
	_ = godotenv.Load()
	if _, err := env.UnmarshalFromEnviron(cfg); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}
