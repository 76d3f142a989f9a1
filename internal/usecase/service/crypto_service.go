package service

import (
	vo "ikedadada/go-onionchain/internal/domain/value_object"
)

// CryptoService provides the key handling each hop needs.
type CryptoService interface {
	// StringToPublicKey parses a PEM public key as carried in messages.
	StringToPublicKey(s string) (vo.RSAPubKey, error)
	// Encrypt seals plain for the owner of pub.
	Encrypt(pub vo.RSAPubKey, plain []byte) ([]byte, error)
	// Decrypt opens a ciphertext produced by Encrypt.
	Decrypt(priv *vo.RSAPrivKey, ct []byte) ([]byte, error)
}
