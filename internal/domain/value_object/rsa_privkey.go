package value_object

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

var ErrNoPEMData = errors.New("no PEM data")

// RSAPrivKey is a node's or a client's private key.
type RSAPrivKey struct {
	key *rsa.PrivateKey
}

// NewRSAPrivKey wraps key; nil in, nil out.
func NewRSAPrivKey(key *rsa.PrivateKey) *RSAPrivKey {
	if key == nil {
		return nil
	}
	return &RSAPrivKey{key: key}
}

// GenerateRSAPrivKey creates a fresh key pair of the given size.
func GenerateRSAPrivKey(bits int) (*RSAPrivKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, err
	}
	return NewRSAPrivKey(key), nil
}

// RSAPrivKeyFromPEM accepts PKCS#1 "RSA PRIVATE KEY" and PKCS#8 "PRIVATE KEY" blocks.
func RSAPrivKeyFromPEM(pemBytes []byte) (*RSAPrivKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, ErrNoPEMData
	}
	switch block.Type {
	case "RSA PRIVATE KEY":
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		return NewRSAPrivKey(key), nil
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("not RSA private key")
		}
		return NewRSAPrivKey(rsaKey), nil
	default:
		return nil, fmt.Errorf("unsupported key type %q", block.Type)
	}
}

// ToPEM encodes the key as PKCS#1.
func (k *RSAPrivKey) ToPEM() []byte {
	if k == nil || k.key == nil {
		return nil
	}
	return pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(k.key)})
}

func (k *RSAPrivKey) PublicKey() RSAPubKey {
	if k == nil || k.key == nil {
		return RSAPubKey{}
	}
	return RSAPubKey{PublicKey: &k.key.PublicKey}
}

// RSAKey returns the underlying key for the crypto service.
func (k *RSAPrivKey) RSAKey() *rsa.PrivateKey {
	if k == nil {
		return nil
	}
	return k.key
}
