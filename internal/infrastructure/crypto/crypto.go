package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// SeedSize is the size of the per-message secret wrapped with RSA.
	SeedSize = 32

	hkdfInfo = "go-onionchain"
)

// RSAEncrypt encrypts data using RSA-OAEP with SHA-256.
func RSAEncrypt(pub *rsa.PublicKey, in []byte) ([]byte, error) {
	return rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, in, nil)
}

// RSADecrypt decrypts data using RSA-OAEP with SHA-256.
func RSADecrypt(priv *rsa.PrivateKey, in []byte) ([]byte, error) {
	return rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, in, nil)
}

// NewSeed returns SeedSize random bytes.
func NewSeed() ([]byte, error) {
	seed := make([]byte, SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}
	return seed, nil
}

// DeriveKeyNonce expands seed into an AES-256 key and a GCM nonce with
// HKDF-SHA256.
func DeriveKeyNonce(seed []byte) ([32]byte, [12]byte, error) {
	var key [32]byte
	var nonce [12]byte
	hk := hkdf.New(sha256.New, seed, nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(hk, key[:]); err != nil {
		return key, nonce, err
	}
	if _, err := io.ReadFull(hk, nonce[:]); err != nil {
		return key, nonce, err
	}
	return key, nonce, nil
}

// AESSeal encrypts plaintext with AES-256-GCM.
func AESSeal(key [32]byte, nonce [12]byte, plain []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return gcm.Seal(nil, nonce[:], plain, nil), nil
}

// AESOpen decrypts ciphertext with AES-256-GCM.
func AESOpen(key [32]byte, nonce [12]byte, enc []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return gcm.Open(nil, nonce[:], enc, nil)
}

func newGCM(key [32]byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
