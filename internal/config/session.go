package config

import (
	"sync"
)

var (
	sessionCookieMu sync.RWMutex
	// SessionCookieName is the name of the browser session cookie.
	sessionCookieName = GetEnvOrDefault("SESSION_COOKIE_NAME", "trainer_session")

	jwtSecretMu sync.RWMutex
	// jwtSecret signs the session cookie. In production this must come from
	// the environment.
	jwtSecret = []byte(GetEnvOrDefault("JWT_SECRET", "your-256-bit-secret"))
)

// GetSessionCookieName returns the configured session cookie name
func GetSessionCookieName() string {
	sessionCookieMu.RLock()
	defer sessionCookieMu.RUnlock()
	return sessionCookieName
}

// SetSessionCookieName temporarily changes the session cookie name and returns
// a function to restore it. This is primarily used for testing.
func SetSessionCookieName(name string) func() {
	sessionCookieMu.Lock()
	previous := sessionCookieName
	sessionCookieName = name
	sessionCookieMu.Unlock()

	return func() {
		sessionCookieMu.Lock()
		sessionCookieName = previous
		sessionCookieMu.Unlock()
	}
}

// GetJWTSecret returns the current JWT secret in a thread-safe manner
func GetJWTSecret() []byte {
	jwtSecretMu.RLock()
	defer jwtSecretMu.RUnlock()
	return jwtSecret
}

// SetJWTSecret temporarily changes the JWT secret and returns a function to
// restore it. This is primarily used for testing.
func SetJWTSecret(secret []byte) func() {
	jwtSecretMu.Lock()
	previous := jwtSecret
	jwtSecret = secret
	jwtSecretMu.Unlock()

	return func() {
		jwtSecretMu.Lock()
		jwtSecret = previous
		jwtSecretMu.Unlock()
	}
}
