package env

import "os"

const prefix = "MALPRA_"

// Get returns the value of the given environment variable or a fallback.
// The MALPRA_-prefixed name wins over the bare one, matching how the
// config loader namespaces its variables.
func Get(key, fallback string) string {
	if val := os.Getenv(prefix + key); val != "" {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
