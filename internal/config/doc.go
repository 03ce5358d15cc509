// Package config provides environment-based configuration for the encryptedframe command.
//
// Loads from .env file (godotenv), maps to Config struct via go-simpler/env struct tags.
// Validates the passphrase, worker count and logging settings.
package config
