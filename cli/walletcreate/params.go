package cliwalletcreate

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/icrc99-bridge/nft-bridge/common"
	"github.com/icrc99-bridge/nft-bridge/eth"
	"github.com/icrc99-bridge/nft-bridge/icp"
	solanaClient "github.com/icrc99-bridge/nft-bridge/solana/client"
	"github.com/spf13/cobra"
)

const (
	dataDirFlag         = "data-dir"
	secretsConfigFlag   = "config"
	walletTypeFlag      = "type"
	keyFlag             = "key"
	forceRegenerateFlag = "force"
	showPrivateKeyFlag  = "show-pk"

	dataDirFlagDesc         = "(mandatory config not specified) path to the secrets directory when using local secrets manager" //nolint:lll
	secretsConfigFlagDesc   = "(mandatory data-dir not specified) path to the secrets manager config file"
	walletTypeFlagDesc      = "type of wallet (solana, evm or icp)"
	keyFlagDesc             = "import this key instead of generating one (base58 for solana, hex otherwise)"
	forceRegenerateFlagDesc = "force regenerating keys even if they exist in specified directory"
	showPrivateKeyFlagDesc  = "show private key in output"
)

type walletCreateParams struct {
	dataDir         string
	secretsConfig   string
	walletType      string
	key             string
	forceRegenerate bool
	showPrivateKey  bool
}

func (ip *walletCreateParams) validateFlags() error {
	if ip.dataDir == "" && ip.secretsConfig == "" {
		return fmt.Errorf("specify at least one of: %s, %s", dataDirFlag, secretsConfigFlag)
	}

	switch core.ChainType(strings.ToLower(ip.walletType)) {
	case core.ChainTypeSolana, core.ChainTypeEVM, core.ChainTypeICP:
		return nil
	default:
		return fmt.Errorf("invalid --%s flag: %s", walletTypeFlag, ip.walletType)
	}
}

func (ip *walletCreateParams) setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&ip.dataDir,
		dataDirFlag,
		"",
		dataDirFlagDesc,
	)

	cmd.Flags().StringVar(
		&ip.secretsConfig,
		secretsConfigFlag,
		"",
		secretsConfigFlagDesc,
	)

	cmd.Flags().StringVar(
		&ip.walletType,
		walletTypeFlag,
		string(core.ChainTypeSolana),
		walletTypeFlagDesc,
	)

	cmd.Flags().StringVar(
		&ip.key,
		keyFlag,
		"",
		keyFlagDesc,
	)

	cmd.Flags().BoolVar(
		&ip.forceRegenerate,
		forceRegenerateFlag,
		false,
		forceRegenerateFlagDesc,
	)

	cmd.Flags().BoolVar(
		&ip.showPrivateKey,
		showPrivateKeyFlag,
		false,
		showPrivateKeyFlagDesc,
	)

	cmd.MarkFlagsMutuallyExclusive(dataDirFlag, secretsConfigFlag)
}

func (ip *walletCreateParams) Execute(_ common.OutputFormatter) (common.ICommandResult, error) {
	secretsManager, err := common.GetSecretsManager(ip.dataDir, ip.secretsConfig, true)
	if err != nil {
		return nil, err
	}

	result := &walletCmdResult{
		WalletType:     strings.ToLower(ip.walletType),
		showPrivateKey: ip.showPrivateKey,
	}

	switch core.ChainType(result.WalletType) {
	case core.ChainTypeSolana:
		key, err := solanaClient.CreateAndSavePrivateKey(secretsManager, ip.key, ip.forceRegenerate)
		if err != nil {
			return nil, err
		}

		result.PrivateKey = key.String()
		result.PublicKey = key.PublicKey().String()
		result.Address = key.PublicKey().String()

	case core.ChainTypeEVM:
		wallet, err := eth.CreateAndSavePrivateKey(secretsManager, ip.key, ip.forceRegenerate)
		if err != nil {
			return nil, err
		}

		result.PrivateKey, result.PublicKey, result.Address = wallet.GetHexData()

	default:
		id, err := icp.CreateAndSaveIdentity(secretsManager, ip.key, ip.forceRegenerate)
		if err != nil {
			return nil, err
		}

		result.PublicKey = hex.EncodeToString(id.PublicKey())
		result.Address = id.Sender().String()
	}

	return result, nil
}
