// Package nip04 implements the encrypted direct-message payload scheme used
// by wallet-connect request and response events.
package nip04

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
)

// SharedSecret derives the 32-byte ECDH secret between a local secret key
// and a remote x-only public key.
func SharedSecret(secretHex, pubkeyHex string) ([]byte, error) {
	secretRaw, err := hex.DecodeString(strings.TrimSpace(secretHex))
	if err != nil {
		return nil, fmt.Errorf("decode secret key: %w", err)
	}
	if len(secretRaw) != 32 {
		return nil, fmt.Errorf("secret key must be 32 bytes, got %d", len(secretRaw))
	}
	pubRaw, err := hex.DecodeString(strings.TrimSpace(pubkeyHex))
	if err != nil {
		return nil, fmt.Errorf("decode public key: %w", err)
	}
	if len(pubRaw) != 32 {
		return nil, fmt.Errorf("public key must be 32 bytes, got %d", len(pubRaw))
	}

	secret, _ := btcec.PrivKeyFromBytes(secretRaw)
	// x-only keys serialize with an even-Y prefix for point recovery.
	pub, err := btcec.ParsePubKey(append([]byte{0x02}, pubRaw...))
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return btcec.GenerateSharedSecret(secret, pub), nil
}

// Encrypt encrypts plaintext with AES-256-CBC under the shared secret and
// returns the wire form "base64(ciphertext)?iv=base64(iv)".
func Encrypt(plaintext string, sharedSecret []byte) (string, error) {
	block, err := aes.NewCipher(sharedSecret)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	padded := pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return base64.StdEncoding.EncodeToString(ciphertext) + "?iv=" + base64.StdEncoding.EncodeToString(iv), nil
}

// Decrypt reverses Encrypt.
func Decrypt(content string, sharedSecret []byte) (string, error) {
	payload, ivPart, found := strings.Cut(content, "?iv=")
	if !found {
		return "", fmt.Errorf("missing iv segment")
	}
	ciphertext, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	iv, err := base64.StdEncoding.DecodeString(ivPart)
	if err != nil {
		return "", fmt.Errorf("decode iv: %w", err)
	}
	if len(iv) != aes.BlockSize {
		return "", fmt.Errorf("iv must be %d bytes, got %d", aes.BlockSize, len(iv))
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("ciphertext length %d is not block aligned", len(ciphertext))
	}

	block, err := aes.NewCipher(sharedSecret)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

func pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padding)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padding)
	}
	return padded
}

func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty plaintext")
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize || padding > len(data) {
		return nil, fmt.Errorf("invalid padding")
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, fmt.Errorf("invalid padding")
		}
	}
	return data[:len(data)-padding], nil
}
