package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id cost parameters, OWASP's low-memory profile. Plenty for a
// boundary secret checked a handful of times per second.
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

// ErrKeyMismatch reports an API key that does not verify against its hash.
var ErrKeyMismatch = errors.New("api key does not match")

// HashAPIKey hashes key into a self-describing PHC string, e.g.
// $argon2id$v=19$m=19456,t=2,p=1$<salt>$<digest>. Deployments that would
// rather not keep the raw key in the environment store this instead.
func HashAPIKey(key string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	digest := argon2.IDKey([]byte(key), salt, iterations, memory, parallelism, keyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, memory, iterations, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// VerifyAPIKey checks key against a PHC argon2id hash in constant time.
// The hash carries its own cost parameters, so hashes minted under older
// defaults keep verifying.
func VerifyAPIKey(key, encodedHash string) error {
	salt, want, costs, err := splitPHC(encodedHash)
	if err != nil {
		return err
	}

	got := argon2.IDKey([]byte(key), salt,
		costs.iterations, costs.memory, costs.parallelism,
		uint32(len(want)),
	)

	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrKeyMismatch
	}
	return nil
}

type argonCosts struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
}

// splitPHC pulls the salt, digest and cost parameters out of an
// $argon2id$v=19$m=..,t=..,p=..$salt$digest string.
func splitPHC(encoded string) (salt, digest []byte, costs argonCosts, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, nil, costs, errors.New("malformed hash: want 6 $-separated fields")
	}
	if parts[1] != "argon2id" {
		return nil, nil, costs, errors.New("malformed hash: not argon2id")
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return nil, nil, costs, errors.New("malformed hash: unsupported argon2 version")
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d",
		&costs.memory, &costs.iterations, &costs.parallelism); err != nil {
		return nil, nil, costs, fmt.Errorf("malformed hash: bad cost parameters: %w", err)
	}

	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, nil, costs, fmt.Errorf("malformed hash: bad salt encoding: %w", err)
	}
	if digest, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, nil, costs, fmt.Errorf("malformed hash: bad digest encoding: %w", err)
	}

	return salt, digest, costs, nil
}

// GenerateAPIKey mints a 256-bit random key in URL-safe base64, suitable
// for GATEWAY_API_KEY.
func GenerateAPIKey() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
