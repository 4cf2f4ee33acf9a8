package config

import "github.com/joho/godotenv"

// LoadDotEnv reads a .env file into the environment for local development.
// Existing env vars take precedence. A missing file is reported as an error
// the caller may ignore.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}
