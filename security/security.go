// Package security wraps argon2id hashing for admin passwords and customer
// PINs. A stored hash that no longer matches the current cost parameters is
// transparently re-hashed on successful verification (lazy migration).
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"bankdesk/config"
)

// Hasher hashes and verifies secrets under a fixed set of argon2id cost
// parameters.
type Hasher struct {
	params config.Argon2Params
}

func NewHasher(params config.Argon2Params) *Hasher {
	return &Hasher{params: params}
}

// Hash derives an argon2id hash of secret with a fresh random salt and
// returns it in the standard encoded form
// $argon2id$v=19$m=...,t=...,p=...$salt$key. Hashing the same secret twice
// yields different strings.
func (h *Hasher) Hash(secret string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(secret), salt, h.params.TimeCost, h.params.MemoryCost, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.MemoryCost,
		h.params.TimeCost,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyAndUpgrade checks secret against storedHash. It returns (false, "")
// on mismatch or when storedHash is malformed; malformed hashes are never
// surfaced as errors. On a match it returns (true, "") when the stored hash
// already uses the current parameters, or (true, freshHash) when it was
// produced under different ones, in which case the caller must persist the
// fresh hash.
func (h *Hasher) VerifyAndUpgrade(storedHash, secret string) (bool, string) {
	params, salt, key, err := decodeHash(storedHash)
	if err != nil {
		return false, ""
	}

	candidate := argon2.IDKey([]byte(secret), salt, params.TimeCost, params.MemoryCost, params.Parallelism, uint32(len(key)))
	if subtle.ConstantTimeCompare(key, candidate) != 1 {
		return false, ""
	}

	if h.needsRehash(params) {
		upgraded, err := h.Hash(secret)
		if err != nil {
			// Verification stands on its own; the upgrade is best-effort.
			return true, ""
		}
		return true, upgraded
	}

	return true, ""
}

func (h *Hasher) needsRehash(stored config.Argon2Params) bool {
	return stored.TimeCost != h.params.TimeCost ||
		stored.MemoryCost != h.params.MemoryCost ||
		stored.Parallelism != h.params.Parallelism ||
		stored.KeyLength != h.params.KeyLength ||
		stored.SaltLength != h.params.SaltLength
}

func decodeHash(encoded string) (config.Argon2Params, []byte, []byte, error) {
	var params config.Argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return params, nil, nil, fmt.Errorf("malformed hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return params, nil, nil, fmt.Errorf("malformed version: %w", err)
	}
	if version != argon2.Version {
		return params, nil, nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.MemoryCost, &params.TimeCost, &params.Parallelism); err != nil {
		return params, nil, nil, fmt.Errorf("malformed parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, fmt.Errorf("malformed salt: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return params, nil, nil, fmt.Errorf("malformed key: %w", err)
	}

	params.SaltLength = uint32(len(salt))
	params.KeyLength = uint32(len(key))
	return params, salt, key, nil
}
