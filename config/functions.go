package config

import (
	"log"

	"github.com/glibtools/restyjson/env"
)

// LoadConfig loads .env files, then the file named by CONFIG_FILE into C.
func LoadConfig(envFiles ...string) error {
	env.LoadEnvironment(envFiles...)
	configFile := env.GetEnv("CONFIG_FILE", "")
	if configFile != "" {
		C.configFile = configFile
	} else {
		log.Printf("env: CONFIG_FILE is not set; using default config file")
	}
	return C.Load()
}
