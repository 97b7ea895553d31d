// Package config loads configuration structs from environment variables.
//
// Struct fields are mapped with `env` tags; a .env file in the working
// directory is loaded once, if present, before the first parse:
//
//	type ServerConfig struct {
//		Addr        string        `env:"ADDR" envDefault:":8080"`
//		DatabaseURL string        `env:"DATABASE_URL,required"`
//		Timeout     time.Duration `env:"TIMEOUT" envDefault:"30s"`
//	}
//
//	var cfg ServerConfig
//	config.MustLoad(&cfg)
//
// Each configuration type is parsed once per process and cached; repeated
// Load calls for the same type return the cached copy.
package config
