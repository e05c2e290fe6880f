package identity

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	passwordSaltLength = 16
	passwordKeyLength  = 32
	passwordMemoryKiB  = 64 * 1024
	passwordIterations = 3
	passwordThreads    = 2
)

var errMalformedPasswordHash = errors.New("identity.malformed_password_hash")

// HashPassword derives an argon2id hash in the standard encoded form.
func HashPassword(password string) (string, error) {
	salt := make([]byte, passwordSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("identity.hash_password: %w", err)
	}
	derived := argon2.IDKey([]byte(password), salt, passwordIterations, passwordMemoryKiB, passwordThreads, passwordKeyLength)
	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		passwordMemoryKiB,
		passwordIterations,
		passwordThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(derived))
	return encoded, nil
}

// VerifyPassword reports whether the password matches the encoded argon2id hash.
func VerifyPassword(password string, encodedHash string) (bool, error) {
	memoryKiB, iterations, threads, salt, expected, decodeErr := decodePasswordHash(encodedHash)
	if decodeErr != nil {
		return false, decodeErr
	}
	derived := argon2.IDKey([]byte(password), salt, iterations, memoryKiB, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(expected, derived) == 1, nil
}

func decodePasswordHash(encodedHash string) (uint32, uint32, uint8, []byte, []byte, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return 0, 0, 0, nil, nil, errMalformedPasswordHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("identity.decode_password_hash: %w", err)
	}

	var memoryKiB, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memoryKiB, &iterations, &threads); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("identity.decode_password_hash: %w", err)
	}

	salt, saltErr := base64.RawStdEncoding.DecodeString(parts[4])
	if saltErr != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("identity.decode_password_hash: %w", saltErr)
	}
	expected, hashErr := base64.RawStdEncoding.DecodeString(parts[5])
	if hashErr != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("identity.decode_password_hash: %w", hashErr)
	}
	return memoryKiB, iterations, threads, salt, expected, nil
}
