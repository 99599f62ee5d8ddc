// Package wallet manages the bot's Solana signing identity: loading an
// ed25519 keypair from configuration and protecting it at rest with an
// encrypted keystore file.
package wallet

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"

	"github.com/mr-tron/base58"
)

// Wallet holds the ed25519 keypair the bot signs swaps with.
type Wallet struct {
	priv ed25519.PrivateKey
}

// Config carries the information Load needs to resolve a keypair. Populate
// the fields from configuration or environment variables.
type Config struct {
	// PrivateKey is the base58-encoded 64-byte keypair. If non-empty, Load
	// uses it directly.
	PrivateKey string

	// EncryptedKeyPath is the path to a JSON file produced by EncryptKey.
	EncryptedKeyPath string

	// KeyPassword decrypts the file at EncryptedKeyPath.
	KeyPassword string
}

// FromBase58 builds a Wallet from a base58-encoded 64-byte ed25519 keypair,
// the format exported by standard Solana tooling.
func FromBase58(encoded string) (*Wallet, error) {
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("wallet: decode private key: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("wallet: expected %d-byte keypair, got %d bytes", ed25519.PrivateKeySize, len(raw))
	}
	return &Wallet{priv: ed25519.PrivateKey(raw)}, nil
}

// Load resolves a Wallet from the provided configuration.
//
// Resolution order:
//  1. If PrivateKey is set, decode it directly.
//  2. If EncryptedKeyPath is set, read the file and decrypt with KeyPassword.
//  3. Otherwise, return an error.
func Load(cfg Config) (*Wallet, error) {
	if cfg.PrivateKey != "" {
		return FromBase58(cfg.PrivateKey)
	}

	if cfg.EncryptedKeyPath != "" {
		data, err := os.ReadFile(cfg.EncryptedKeyPath)
		if err != nil {
			return nil, fmt.Errorf("wallet: reading encrypted key file: %w", err)
		}
		decoded, err := DecryptKey(data, cfg.KeyPassword)
		if err != nil {
			return nil, err
		}
		return FromBase58(decoded)
	}

	return nil, errors.New("wallet: no private key source configured (set private_key or encrypted_key_path)")
}

// PublicKey returns the base58-encoded public key, the address swaps are
// signed for.
func (w *Wallet) PublicKey() string {
	pub := w.priv.Public().(ed25519.PublicKey)
	return base58.Encode(pub)
}

// Sign signs a message with the wallet's private key.
func (w *Wallet) Sign(message []byte) []byte {
	return ed25519.Sign(w.priv, message)
}
