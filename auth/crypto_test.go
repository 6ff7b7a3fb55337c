package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncryptDecrypt(t *testing.T) {
	t.Run("encrypt -> decrypt", func(t *testing.T) {
		encrypted, err := EncryptToken("this is my token")
		assert.NoError(t, err)

		decrypted, err := DecryptToken(encrypted)
		assert.NoError(t, err)

		assert.Equal(t, "this is my token", decrypted)
	})

	t.Run("truncated ciphertext", func(t *testing.T) {
		_, err := DecryptToken([]byte{0x01, 0x02})
		assert.Error(t, err)
	})
}
