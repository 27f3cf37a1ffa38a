package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DateFormat is the fixed human-facing date layout used everywhere a date is
// stored or rendered (Go reference time for DD/MM/YYYY).
const DateFormat = "02/01/2006"

const (
	DefaultMinBalance     = 10000
	DefaultMaxTransaction = 25000
)

// Argon2Params are the cost parameters for the PIN/password hasher.
type Argon2Params struct {
	TimeCost    uint32
	MemoryCost  uint32 // KiB
	Parallelism uint8
	KeyLength   uint32
	SaltLength  uint32
}

// Settings is the full configuration surface of the desk application,
// resolved once at startup from the environment.
type Settings struct {
	DBPath          string
	MinBalance      int64
	MaxTransaction  int64
	Argon2          Argon2Params
	ProtectedAdmins map[string]bool

	// Bootstrap credentials, consumed only when no admin exists yet.
	BootstrapAdminID       string
	BootstrapAdminPassword string
}

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}
}

// Load reads the environment (after LoadEnv) and fills in defaults.
func Load() Settings {
	return Settings{
		DBPath:         envString("BANKDESK_DB_PATH", filepath.Join("data", "bank.db")),
		MinBalance:     envInt64("BANKDESK_MIN_BALANCE", DefaultMinBalance),
		MaxTransaction: envInt64("BANKDESK_MAX_TRANSACTION", DefaultMaxTransaction),
		Argon2: Argon2Params{
			TimeCost:    uint32(envInt64("BANKDESK_ARGON2_TIME", 3)),
			MemoryCost:  uint32(envInt64("BANKDESK_ARGON2_MEMORY", 64*1024)),
			Parallelism: uint8(envInt64("BANKDESK_ARGON2_PARALLELISM", 2)),
			KeyLength:   uint32(envInt64("BANKDESK_ARGON2_KEY_LEN", 32)),
			SaltLength:  uint32(envInt64("BANKDESK_ARGON2_SALT_LEN", 16)),
		},
		ProtectedAdmins:        parseProtectedAdmins(envString("BANKDESK_PROTECTED_ADMINS", "aayush")),
		BootstrapAdminID:       os.Getenv("BANKDESK_BOOTSTRAP_ADMIN_ID"),
		BootstrapAdminPassword: os.Getenv("BANKDESK_BOOTSTRAP_ADMIN_PASSWORD"),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("Warning: invalid value for %s: %q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func parseProtectedAdmins(raw string) map[string]bool {
	out := make(map[string]bool)
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			out[id] = true
		}
	}
	return out
}
