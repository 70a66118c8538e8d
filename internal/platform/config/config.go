package config

import (
	"os"
	"time"
)

// Server captures process-level configuration: listen address, backing file
// paths, cipher key material and credentials for the HTTP edge.
type Server struct {
	Addr string

	OrganizationsFile string
	UsersFile         string
	AuditFile         string

	// AES key material for record and payload encryption. Constructed once
	// at startup and never mutated.
	AESKey string
	AESIV  string

	APIKey string

	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	JWTTTL        time.Duration
}

// FromEnv builds a Server config from environment variables so main stays
// lean. Defaults are for development only.
func FromEnv() Server {
	ttl := 2 * time.Hour
	if raw := os.Getenv("ORGDIR_JWT_TTL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			ttl = parsed
		}
	}
	return Server{
		Addr:              envOr("ORGDIR_ADDR", ":8080"),
		OrganizationsFile: envOr("ORGDIR_ORGS_FILE", "organizations.txt"),
		UsersFile:         envOr("ORGDIR_USERS_FILE", "users.txt"),
		AuditFile:         envOr("ORGDIR_AUDIT_FILE", "audit.txt"),
		AESKey:            envOr("ORGDIR_AES_KEY", "dev-aes-key-32-bytes-change-me!!"),
		AESIV:             envOr("ORGDIR_AES_IV", "dev-iv-16-bytes!"),
		APIKey:            envOr("ORGDIR_API_KEY", "dev-api-key"),
		JWTSigningKey:     envOr("ORGDIR_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:         envOr("ORGDIR_JWT_ISSUER", "https://orgdir.example"),
		JWTAudience:       envOr("ORGDIR_JWT_AUDIENCE", "https://clients.example"),
		JWTTTL:            ttl,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
