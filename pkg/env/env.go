package env

import "os"

// Get reads key from the environment, treating empty as unset.
func Get(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
