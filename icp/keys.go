package icp

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/Ethernal-Tech/cardano-infrastructure/secrets"
	"github.com/aviate-labs/agent-go/identity"
)

var identityKeyName = fmt.Sprintf("%sicp_identity_key", secrets.OtherKeyLocalPrefix)

func LoadIdentity(secretsManager secrets.SecretsManager) (*identity.Ed25519Identity, error) {
	bytes, err := secretsManager.GetSecret(identityKeyName)
	if err != nil {
		return nil, fmt.Errorf("failed to load ic identity: %w", err)
	}

	seed, err := hex.DecodeString(string(bytes))
	if err != nil || len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("invalid ic identity seed")
	}

	return newIdentity(ed25519.NewKeyFromSeed(seed))
}

// CreateAndSaveIdentity stores a new Ed25519 identity, or the imported hex
// encoded seed when one is given.
func CreateAndSaveIdentity(
	secretsManager secrets.SecretsManager, imported string, forceRegenerate bool,
) (*identity.Ed25519Identity, error) {
	if secretsManager.HasSecret(identityKeyName) {
		if !forceRegenerate && imported == "" {
			return LoadIdentity(secretsManager)
		}

		if err := secretsManager.RemoveSecret(identityKeyName); err != nil {
			return nil, err
		}
	}

	var seed []byte

	if imported != "" {
		decoded, err := hex.DecodeString(imported)
		if err != nil || len(decoded) != ed25519.SeedSize {
			return nil, fmt.Errorf("imported ic identity must be a hex encoded %d byte seed", ed25519.SeedSize)
		}

		seed = decoded
	} else {
		seed = make([]byte, ed25519.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			return nil, fmt.Errorf("failed to generate ic identity: %w", err)
		}
	}

	id, err := newIdentity(ed25519.NewKeyFromSeed(seed))
	if err != nil {
		return nil, err
	}

	return id, secretsManager.SetSecret(identityKeyName, []byte(hex.EncodeToString(seed)))
}

func newIdentity(privateKey ed25519.PrivateKey) (*identity.Ed25519Identity, error) {
	publicKey, _ := privateKey.Public().(ed25519.PublicKey)

	return identity.NewEd25519Identity(publicKey, privateKey)
}
