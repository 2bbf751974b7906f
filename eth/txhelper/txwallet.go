package ethtxhelper

import (
	"crypto/ecdsa"
	"encoding/hex"
	"math/big"

	"github.com/Ethernal-Tech/cardano-infrastructure/secrets"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

type IEthTxWallet interface {
	GetAddress() common.Address
	SignTx(chainID *big.Int, tx *types.Transaction) (*types.Transaction, error)
}

type EthTxWallet struct {
	addr       common.Address
	privateKey *ecdsa.PrivateKey
}

var _ IEthTxWallet = (*EthTxWallet)(nil)

func NewEthTxWallet(pk string) (*EthTxWallet, error) {
	privateKey, err := crypto.HexToECDSA(pk)
	if err != nil {
		return nil, err
	}

	return newEthTxWallet(privateKey), nil
}

func GenerateNewEthTxWallet() (*EthTxWallet, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}

	return newEthTxWallet(privateKey), nil
}

func newEthTxWallet(privateKey *ecdsa.PrivateKey) *EthTxWallet {
	return &EthTxWallet{
		privateKey: privateKey,
		addr:       crypto.PubkeyToAddress(privateKey.PublicKey),
	}
}

func (w EthTxWallet) GetAddress() common.Address {
	return w.addr
}

func (w EthTxWallet) GetAddressHex() string {
	return w.addr.String()
}

// GetHexData returns the private key, the compressed public key and the address.
func (w EthTxWallet) GetHexData() (string, string, string) {
	return hex.EncodeToString(crypto.FromECDSA(w.privateKey)),
		hexutil.Encode(crypto.CompressPubkey(&w.privateKey.PublicKey)),
		w.addr.String()
}

func (w EthTxWallet) SignTx(chainID *big.Int, tx *types.Transaction) (*types.Transaction, error) {
	return types.SignTx(tx, types.NewLondonSigner(chainID), w.privateKey)
}

func (w EthTxWallet) Save(secretsManager secrets.SecretsManager, keyName string) error {
	return secretsManager.SetSecret(keyName, []byte(hex.EncodeToString(crypto.FromECDSA(w.privateKey))))
}
