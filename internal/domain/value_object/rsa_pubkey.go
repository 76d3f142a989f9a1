package value_object

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
)

// RSAPubKey is a node's or an originator's public key. On the wire it travels
// as a PKIX "PUBLIC KEY" PEM string.
type RSAPubKey struct{ *rsa.PublicKey }

func RSAPubKeyFromPEM(pemBytes []byte) (RSAPubKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return RSAPubKey{}, errors.New("no PEM data")
	}
	var pub any
	var err error
	switch block.Type {
	case "RSA PUBLIC KEY":
		pub, err = x509.ParsePKCS1PublicKey(block.Bytes)
	default:
		pub, err = x509.ParsePKIXPublicKey(block.Bytes)
	}
	if err != nil {
		return RSAPubKey{}, err
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return RSAPubKey{}, errors.New("not RSA key")
	}
	return RSAPubKey{PublicKey: rsaPub}, nil
}

func (k RSAPubKey) ToPEM() []byte {
	b, err := x509.MarshalPKIXPublicKey(k.PublicKey)
	if err != nil {
		return nil
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: b})
}

func (k RSAPubKey) String() string { return string(k.ToPEM()) }

func (k RSAPubKey) Equal(o RSAPubKey) bool {
	if k.PublicKey == nil || o.PublicKey == nil {
		return k.PublicKey == o.PublicKey
	}
	return k.PublicKey.Equal(o.PublicKey)
}
