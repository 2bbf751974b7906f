package eth

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/hashicorp/go-hclog"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	bridgecommon "github.com/icrc99-bridge/nft-bridge/common"
	ethtxhelper "github.com/icrc99-bridge/nft-bridge/eth/txhelper"
)

// EVMWallet signs with a key from the secrets manager after the approver
// confirms the transaction.
type EVMWallet struct {
	txHelper  ethtxhelper.IEthTxHelper
	wallet    ethtxhelper.IEthTxWallet
	approver  bridgecommon.Approver
	connected atomic.Bool
	logger    hclog.Logger
}

var _ core.Wallet = (*EVMWallet)(nil)

func NewEVMWallet(
	txHelper ethtxhelper.IEthTxHelper, wallet ethtxhelper.IEthTxWallet,
	approver bridgecommon.Approver, logger hclog.Logger,
) *EVMWallet {
	return &EVMWallet{
		txHelper: txHelper,
		wallet:   wallet,
		approver: approver,
		logger:   logger,
	}
}

func (w *EVMWallet) Address() common.Address {
	return w.wallet.GetAddress()
}

// Connect checks that the node answers before marking the wallet connected.
func (w *EVMWallet) Connect(ctx context.Context) (core.Account, error) {
	if _, err := w.txHelper.GetChainID(ctx); err != nil {
		return core.Account{}, core.Classify("connect", fmt.Errorf("failed to get chain id: %w", err))
	}

	w.connected.Store(true)

	return core.Account{Address: w.Address().String(), Chain: core.ChainTypeEVM}, nil
}

func (w *EVMWallet) IsConnected() bool {
	return w.connected.Load()
}

func (w *EVMWallet) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	addr, err := parseAddress("address", address)
	if err != nil {
		return nil, err
	}

	balance, err := w.txHelper.GetClient().BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance of %s: %w", address, err)
	}

	return balance, nil
}

// GetAccountInfo returns nil for accounts without balance, nonce and code.
func (w *EVMWallet) GetAccountInfo(ctx context.Context, address string) (*core.AccountData, error) {
	addr, err := parseAddress("address", address)
	if err != nil {
		return nil, err
	}

	client := w.txHelper.GetClient()

	balance, err := client.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance of %s: %w", address, err)
	}

	nonce, err := client.NonceAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce of %s: %w", address, err)
	}

	code, err := client.CodeAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get code of %s: %w", address, err)
	}

	if balance.Sign() == 0 && nonce == 0 && len(code) == 0 {
		return nil, nil
	}

	lamports := uint64(math.MaxUint64)
	if balance.IsUint64() {
		lamports = balance.Uint64()
	}

	return &core.AccountData{Lamports: lamports, Data: code}, nil
}

// SignAndSend signs an unsigned *types.Transaction after approval and submits it.
func (w *EVMWallet) SignAndSend(ctx context.Context, tx any) (string, error) {
	if !w.IsConnected() {
		return "", core.NewError(core.KindValidation, "sign", core.ErrWalletNotConnected)
	}

	evmTx, ok := tx.(*types.Transaction)
	if !ok {
		return "", core.NewError(core.KindValidation, "sign", fmt.Errorf("unsupported transaction type %T", tx))
	}

	if w.approver != nil {
		approved, err := w.approver(ctx, fmt.Sprintf("sign evm transaction from %s to %s (nonce %d, gas %d)",
			w.Address(), evmTx.To(), evmTx.Nonce(), evmTx.Gas()))
		if err != nil {
			return "", err
		}

		if !approved {
			return "", core.NewError(core.KindUserRejected, "sign", core.ErrUserRejected)
		}
	}

	chainID, err := w.txHelper.GetChainID(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get chain id: %w", err)
	}

	signedTx, err := w.wallet.SignTx(chainID, evmTx)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := w.txHelper.GetClient().SendTransaction(ctx, signedTx); err != nil {
		switch ethtxhelper.ClassifySendError(err) {
		case ethtxhelper.SendErrorTransient:
			return "", core.NewError(core.KindNetwork, "send transaction", err)
		case ethtxhelper.SendErrorUnaffordable:
			return "", core.NewError(core.KindValidation, "send transaction",
				fmt.Errorf("%w: %w", core.ErrInsufficientBalance, err))
		case ethtxhelper.SendErrorReverted:
			return "", core.NewError(core.KindProtocol, "send transaction", err)
		default:
			return "", fmt.Errorf("failed to send transaction: %w", err)
		}
	}

	hash := signedTx.Hash().String()

	w.logger.Debug("Transaction sent", "hash", hash)

	return hash, nil
}

// ConfirmTransaction waits for the receipt. EVM chains have no commitment
// levels so commitment is ignored.
func (w *EVMWallet) ConfirmTransaction(ctx context.Context, signature string, _ core.Commitment) error {
	receipt, err := w.txHelper.WaitForReceipt(ctx, signature, true)
	if err != nil {
		return err
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return core.NewError(core.KindProtocol, "confirm", fmt.Errorf("transaction %s reverted", signature))
	}

	return nil
}

func parseAddress(name, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, core.NewError(core.KindValidation, "parse "+name,
			fmt.Errorf("invalid %s %s", name, value))
	}

	return common.HexToAddress(value), nil
}
