package client

import (
	"fmt"

	"github.com/Ethernal-Tech/cardano-infrastructure/secrets"
	"github.com/gagliardetto/solana-go"
)

var solanaKeyName = fmt.Sprintf("%ssolana_bridge_key", secrets.OtherKeyLocalPrefix)

func LoadPrivateKey(secretsManager secrets.SecretsManager) (solana.PrivateKey, error) {
	bytes, err := secretsManager.GetSecret(solanaKeyName)
	if err != nil {
		return nil, fmt.Errorf("failed to load solana key: %w", err)
	}

	key, err := solana.PrivateKeyFromBase58(string(bytes))
	if err != nil {
		return nil, fmt.Errorf("invalid solana key: %w", err)
	}

	return key, nil
}

// CreateAndSavePrivateKey stores a new keypair, or the imported base58 key
// when one is given.
func CreateAndSavePrivateKey(
	secretsManager secrets.SecretsManager, imported string, forceRegenerate bool,
) (solana.PrivateKey, error) {
	if secretsManager.HasSecret(solanaKeyName) {
		if !forceRegenerate && imported == "" {
			return LoadPrivateKey(secretsManager)
		}

		if err := secretsManager.RemoveSecret(solanaKeyName); err != nil {
			return nil, err
		}
	}

	var (
		key solana.PrivateKey
		err error
	)

	if imported != "" {
		key, err = solana.PrivateKeyFromBase58(imported)
	} else {
		key, err = solana.NewRandomPrivateKey()
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create solana key: %w", err)
	}

	return key, secretsManager.SetSecret(solanaKeyName, []byte(key.String()))
}
