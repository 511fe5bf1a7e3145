// Package cardcrypt encrypts card numbers for storage with a single shared AES key.
package cardcrypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrInvalidKeyLength is returned when the key is not 16, 24 or 32 bytes long.
	ErrInvalidKeyLength = errors.New("encryption key must be 16, 24, or 32 bytes")

	// ErrEmptyInput is returned when there is nothing to encrypt or decrypt.
	ErrEmptyInput = errors.New("input data is empty")

	// ErrMalformedCiphertext is returned when a ciphertext cannot be decoded or unpadded.
	ErrMalformedCiphertext = errors.New("malformed ciphertext")
)

// Cipher is the reversible encryption primitive used for card numbers.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Encryptor implements Cipher with AES-CBC and PKCS#7 padding.
// Each ciphertext carries its own random IV as a prefix and is base64 encoded.
type Encryptor struct {
	block  cipher.Block
	random io.Reader
}

var _ Cipher = (*Encryptor)(nil)

// NewEncryptor creates an Encryptor for key.
func NewEncryptor(key []byte) (*Encryptor, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w, got %d", ErrInvalidKeyLength, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	return &Encryptor{block: block, random: rand.Reader}, nil
}

// Encrypt encrypts plaintext and returns base64(IV || ciphertext).
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyInput
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(e.random, iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	padded := pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, aes.BlockSize+len(padded))
	copy(out, iv)
	cipher.NewCBCEncrypter(e.block, iv).CryptBlocks(out[aes.BlockSize:], padded)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt.
func (e *Encryptor) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", ErrEmptyInput
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	if len(data) < 2*aes.BlockSize || len(data)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: invalid length %d", ErrMalformedCiphertext, len(data))
	}

	iv, body := data[:aes.BlockSize], data[aes.BlockSize:]
	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(e.block, iv).CryptBlocks(plain, body)

	unpadded, err := unpad(plain, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte, blockSize int) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("%w: invalid padding", ErrMalformedCiphertext)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: invalid padding", ErrMalformedCiphertext)
		}
	}
	return data[:len(data)-n], nil
}
