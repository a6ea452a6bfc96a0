package main

import (
	"log"
	"time"

	env "github.com/Netflix/go-env"
)

// Config for the chat server process, loaded from the environment.
type Config struct {
	// Addr on which the server accepts connections.
	Addr string `env:"CHAT_ADDR,default=0.0.0.0:8888"`

	// ReadBuf allocated for gorilla's buffer when a connection is upgraded.
	ReadBuf int `env:"CHAT_READ_BUFFER,default=1024"`

	// WriteBuf allocated for gorilla's buffer when a connection is upgraded.
	WriteBuf int `env:"CHAT_WRITE_BUFFER,default=1024"`

	// PingTimeout after which an idle connection is pinged, and then
	// dropped if it stays silent.
	PingTimeout time.Duration `env:"CHAT_PING_TIMEOUT,default=30s"`

	// ShutdownTimeout bounds the graceful shutdown on interrupt.
	ShutdownTimeout time.Duration `env:"CHAT_SHUTDOWN_TIMEOUT,default=5s"`

	// DebugLog enables the engine's debug messages.
	DebugLog bool `env:"CHAT_DEBUG_LOG,default=false"`
}

// loadConfig from the environment, exiting on malformed values.
func loadConfig() Config {
	var cfg Config

	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		log.Fatalf("[ERROR] chat-server: Couldn't load the configuration: %+v", err)
	}

	return cfg
}
