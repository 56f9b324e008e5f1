package config

import "github.com/joho/godotenv"

// loadEnvFiles loads KEY=VALUE pairs from each file that exists. Variables already
// present in the environment are not overwritten.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		_ = godotenv.Load(path)
	}
}
