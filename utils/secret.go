package utils

import (
	"TuneRelay/config"
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// CheckAdminSecret verifies a presented secret against the configured
// admin API secret. A configured value that looks like a bcrypt hash
// is verified as one; a plain value is compared in constant time.
func CheckAdminSecret(presented string) bool {
	configured := config.AppConfig.AdminAPISecret
	if configured == "" {
		return false
	}
	if strings.HasPrefix(configured, "$2a$") ||
		strings.HasPrefix(configured, "$2b$") ||
		strings.HasPrefix(configured, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(presented)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(presented)) == 1
}
