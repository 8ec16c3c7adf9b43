package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/crypto/argon2"
)

// kdfSalt domain-separates the sealing key from any other use of the same
// master key material. The material is the secret, not this.
var kdfSalt = []byte("chatbridge.credstore.v1")

var (
	masterOnce sync.Once
	masterKey  []byte
	masterPath string
)

// SetMasterKeyPath points the sealer at a key file. Call before the first
// Seal or Open; once the key is derived the path is no longer consulted.
func SetMasterKeyPath(path string) {
	masterPath = path
}

// masterMaterial reads the raw key material: the configured file first,
// then GATEWAY_MASTER_KEY, then a random ephemeral key for development.
// Blobs sealed under an ephemeral key do not survive a restart.
func masterMaterial() ([]byte, error) {
	if masterPath != "" {
		data, err := os.ReadFile(masterPath)
		if err != nil {
			return nil, fmt.Errorf("read master key file: %w", err)
		}
		return data, nil
	}

	if env := os.Getenv("GATEWAY_MASTER_KEY"); env != "" {
		return []byte(env), nil
	}

	material := make([]byte, 32)
	if _, err := rand.Read(material); err != nil {
		return nil, fmt.Errorf("generate ephemeral master key: %w", err)
	}
	return material, nil
}

// sealingKey derives the AES-256 key, once per process. Argon2id hardens
// passphrase-grade material; Seal and Open themselves stay cheap.
func sealingKey() ([]byte, error) {
	var err error
	masterOnce.Do(func() {
		var material []byte
		if material, err = masterMaterial(); err != nil {
			return
		}
		masterKey = argon2.IDKey(material, kdfSalt, iterations, memory, parallelism, keyLength)
	})
	if err != nil {
		return nil, err
	}
	if masterKey == nil {
		return nil, errors.New("master key unavailable")
	}
	return masterKey, nil
}

func sealer() (cipher.AEAD, error) {
	key, err := sealingKey()
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("build cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// Seal encrypts a credential blob with AES-256-GCM, laid out as
// nonce || ciphertext || tag with a fresh random nonce per call.
func Seal(plaintext []byte) ([]byte, error) {
	gcm, err := sealer()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open authenticates and decrypts a blob produced by Seal. Tampered or
// foreign blobs fail the tag check and return an error.
func Open(blob []byte) ([]byte, error) {
	gcm, err := sealer()
	if err != nil {
		return nil, err
	}

	if len(blob) < gcm.NonceSize() {
		return nil, errors.New("sealed blob too short")
	}
	nonce, ciphertext := blob[:gcm.NonceSize()], blob[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("open sealed blob: %w", err)
	}
	return plaintext, nil
}

// ResetMasterKeyForTesting clears the derived key so tests can swap key
// sources. Never call outside tests.
func ResetMasterKeyForTesting() {
	masterOnce = sync.Once{}
	masterKey = nil
}
