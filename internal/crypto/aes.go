// Package crypto holds the cipher and password-hashing collaborators used by
// the record stores and the transport envelope. Key material is injected at
// construction time and never mutated afterwards.
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrEmptyPayload is returned when there is nothing to encrypt or decrypt.
	ErrEmptyPayload = errors.New("payload is empty")
	// ErrMalformedPayload is returned when ciphertext cannot be decoded,
	// decrypted or unpadded.
	ErrMalformedPayload = errors.New("payload is malformed")
)

// Codec encrypts and decrypts single text records with AES-CBC and a fixed
// IV, base64-encoding ciphertext so each record stays one line of text.
// The fixed IV makes encryption deterministic, which the line stores rely on
// for byte-identical rewrites of untouched lines.
type Codec struct {
	block cipher.Block
	iv    []byte
}

// NewCodec builds a Codec from raw key material. The key must be 16, 24 or
// 32 bytes and the IV exactly one AES block.
func NewCodec(key, iv string) (*Codec, error) {
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("aes key: %w", err)
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("aes iv: need %d bytes, got %d", aes.BlockSize, len(iv))
	}
	return &Codec{block: block, iv: []byte(iv)}, nil
}

// Encrypt produces base64(AES-CBC(plainText)).
func (c *Codec) Encrypt(plainText string) (string, error) {
	if plainText == "" {
		return "", ErrEmptyPayload
	}
	padded := pad([]byte(plainText), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(out, padded)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. Any malformed input yields ErrMalformedPayload;
// it never panics.
func (c *Codec) Decrypt(cipherText string) (string, error) {
	if cipherText == "" {
		return "", ErrEmptyPayload
	}
	raw, err := base64.StdEncoding.DecodeString(cipherText)
	if err != nil {
		return "", ErrMalformedPayload
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", ErrMalformedPayload
	}
	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(out, raw)
	unpadded, err := unpad(out, aes.BlockSize)
	if err != nil {
		return "", ErrMalformedPayload
	}
	return string(unpadded), nil
}

// SerializeAndEncrypt marshals v as JSON and encrypts the result.
func (c *Codec) SerializeAndEncrypt(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return c.Encrypt(string(raw))
}

// DecryptAndDeserialize decrypts cipherText and unmarshals the plaintext
// into v.
func (c *Codec) DecryptAndDeserialize(cipherText string, v any) error {
	plain, err := c.Decrypt(cipherText)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(plain), v); err != nil {
		return ErrMalformedPayload
	}
	return nil
}

// PKCS#7 padding.
func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty block")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, errors.New("invalid padding")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errors.New("invalid padding")
		}
	}
	return data[:len(data)-n], nil
}
