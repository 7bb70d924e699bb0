package config

// GetServerAddr returns the listen address of the HTTP server.
func GetServerAddr() string {
	return GetEnvOrDefault("SERVER_ADDR", ":8080")
}
