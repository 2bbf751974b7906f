package eth

import (
	"fmt"
	"strings"

	"github.com/Ethernal-Tech/cardano-infrastructure/secrets"
	ethtxhelper "github.com/icrc99-bridge/nft-bridge/eth/txhelper"
)

var evmKeyName = fmt.Sprintf("%sevm_bridge_key", secrets.OtherKeyLocalPrefix)

func LoadPrivateKey(secretsManager secrets.SecretsManager) (*ethtxhelper.EthTxWallet, error) {
	pkBytes, err := secretsManager.GetSecret(evmKeyName)
	if err != nil {
		return nil, fmt.Errorf("failed to load evm key: %w", err)
	}

	return ethtxhelper.NewEthTxWallet(string(pkBytes))
}

// CreateAndSavePrivateKey stores a new key, or the imported hex key when one is given.
func CreateAndSavePrivateKey(
	secretsManager secrets.SecretsManager, imported string, forceRegenerate bool,
) (*ethtxhelper.EthTxWallet, error) {
	if secretsManager.HasSecret(evmKeyName) {
		if !forceRegenerate && imported == "" {
			return LoadPrivateKey(secretsManager)
		}

		if err := secretsManager.RemoveSecret(evmKeyName); err != nil {
			return nil, err
		}
	}

	var (
		wallet *ethtxhelper.EthTxWallet
		err    error
	)

	if imported != "" {
		wallet, err = ethtxhelper.NewEthTxWallet(strings.TrimPrefix(imported, "0x"))
	} else {
		wallet, err = ethtxhelper.GenerateNewEthTxWallet()
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create evm key: %w", err)
	}

	return wallet, wallet.Save(secretsManager, evmKeyName)
}
