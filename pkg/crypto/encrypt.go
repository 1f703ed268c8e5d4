package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

// Ошибки шифрования
var (
	ErrInvalidKeyLength   = errors.New("encryption key must be exactly 32 bytes for AES-256")
	ErrInvalidCiphertext  = errors.New("invalid ciphertext")
	ErrCiphertextTooShort = errors.New("ciphertext too short")
	ErrDecryptionFailed   = errors.New("decryption failed: authentication error")
)

// Encrypt шифрует plaintext с использованием AES-256-GCM
//
// Используется для хранения SimpleFIN access URL в БД: URL содержит
// встроенные Basic-credentials и не должен лежать в открытом виде.
// Возвращает base64-encoded строку.
func Encrypt(plaintext string, key []byte) (string, error) {
	if len(key) != 32 {
		return "", ErrInvalidKeyLength
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	// GCM добавляет аутентификационный тег автоматически
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	// Случайный nonce на каждое шифрование
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)

	// base64 для безопасного хранения в БД
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt расшифровывает base64-encoded ciphertext с использованием AES-256-GCM
func Decrypt(ciphertextBase64 string, key []byte) (string, error) {
	if len(key) != 32 {
		return "", ErrInvalidKeyLength
	}

	ciphertext, err := base64.StdEncoding.DecodeString(ciphertextBase64)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", ErrCiphertextTooShort
	}

	nonce, ciphertextData := ciphertext[:nonceSize], ciphertext[nonceSize:]

	// Расшифровка с проверкой аутентификационного тега
	plaintext, err := gcm.Open(nil, nonce, ciphertextData, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}

// GenerateKey генерирует криптографически стойкий случайный ключ (32 байта для AES-256)
func GenerateKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// ValidateKey проверяет, что ключ имеет правильную длину
func ValidateKey(key []byte) error {
	if len(key) != 32 {
		return ErrInvalidKeyLength
	}
	return nil
}
