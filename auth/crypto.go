package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/crimsonfm/crimson-api/config"
)

// Spotify credentials are never stored in the clear by the durable backend;
// they are sealed with AES-GCM under a key derived from ENCRYPTION_KEY.

func hashTo64(value string) []byte {
	hasher := sha256.New()
	hasher.Write([]byte(value))
	return hasher.Sum(nil)
}

func EncryptToken(token string) ([]byte, error) {
	keyBytes := hashTo64(config.GetEncryptionKey())

	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return nil, err
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return aesGCM.Seal(nonce, nonce, []byte(token), nil), nil
}

func DecryptToken(encrypted []byte) (string, error) {
	key := hashTo64(config.GetEncryptionKey())

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonceSize := aesGCM.NonceSize()
	if len(encrypted) < nonceSize {
		return "", fmt.Errorf("ciphertext shorter than nonce")
	}
	nonce, ciphertext := encrypted[:nonceSize], encrypted[nonceSize:]
	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
