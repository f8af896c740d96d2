package config

import "os"

// Port returns the HTTP listen port.
func Port() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "4000"
}

// AllowedOrigin returns the frontend origin allowed by CORS.
func AllowedOrigin() string {
	if origin := os.Getenv("ALLOWED_ORIGIN"); origin != "" {
		return origin
	}
	return "http://localhost:3000"
}
