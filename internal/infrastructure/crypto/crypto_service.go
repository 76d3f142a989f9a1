package crypto

import (
	"encoding/binary"
	"fmt"

	vo "ikedadada/go-onionchain/internal/domain/value_object"
	"ikedadada/go-onionchain/internal/usecase/service"
)

// Ciphertext layout:
//
//	uint16 len(wrapped) | RSA-OAEP(seed) | AES-256-GCM(plain)
//
// key and nonce are both expanded from seed. Every message gets a fresh seed
// so the (key, nonce) pair is never reused.
type cryptoServiceImpl struct{}

// NewCryptoService returns a CryptoService backed by RSA-OAEP and AES-GCM.
func NewCryptoService() service.CryptoService { return &cryptoServiceImpl{} }

func (*cryptoServiceImpl) StringToPublicKey(s string) (vo.RSAPubKey, error) {
	pk, err := vo.RSAPubKeyFromPEM([]byte(s))
	if err != nil {
		return vo.RSAPubKey{}, fmt.Errorf("%w: %v", service.ErrInvalidKeyMaterial, err)
	}
	return pk, nil
}

func (*cryptoServiceImpl) Encrypt(pub vo.RSAPubKey, plain []byte) ([]byte, error) {
	if pub.PublicKey == nil {
		return nil, service.ErrInvalidKeyMaterial
	}
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	wrapped, err := RSAEncrypt(pub.PublicKey, seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidKeyMaterial, err)
	}
	key, nonce, err := DeriveKeyNonce(seed)
	if err != nil {
		return nil, err
	}
	sealed, err := AESSeal(key, nonce, plain)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 2, 2+len(wrapped)+len(sealed))
	binary.BigEndian.PutUint16(out, uint16(len(wrapped)))
	out = append(out, wrapped...)
	return append(out, sealed...), nil
}

func (*cryptoServiceImpl) Decrypt(priv *vo.RSAPrivKey, ct []byte) ([]byte, error) {
	if priv.RSAKey() == nil {
		return nil, service.ErrInvalidKeyMaterial
	}
	if len(ct) < 2 {
		return nil, service.ErrMalformedCiphertext
	}
	n := int(binary.BigEndian.Uint16(ct[:2]))
	if n == 0 || len(ct) < 2+n {
		return nil, service.ErrMalformedCiphertext
	}
	seed, err := RSADecrypt(priv.RSAKey(), ct[2:2+n])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrMalformedCiphertext, err)
	}
	key, nonce, err := DeriveKeyNonce(seed)
	if err != nil {
		return nil, err
	}
	plain, err := AESOpen(key, nonce, ct[2+n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrMalformedCiphertext, err)
	}
	return plain, nil
}
