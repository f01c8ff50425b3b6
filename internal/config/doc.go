// Package config resolves service configuration from flags, environment
// variables and an optional .env file into a single explicit Config struct.
package config
