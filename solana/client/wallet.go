package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/hashicorp/go-hclog"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/icrc99-bridge/nft-bridge/common"
)

// KeypairWallet signs with a locally stored keypair. Every signature is
// confirmed through the approver first.
type KeypairWallet struct {
	client    *SolanaClient
	key       solana.PrivateKey
	approver  common.Approver
	connected atomic.Bool
	logger    hclog.Logger
}

var _ core.Wallet = (*KeypairWallet)(nil)

func NewKeypairWallet(
	client *SolanaClient, key solana.PrivateKey, approver common.Approver, logger hclog.Logger,
) *KeypairWallet {
	return &KeypairWallet{
		client:   client,
		key:      key,
		approver: approver,
		logger:   logger,
	}
}

func (w *KeypairWallet) PublicKey() solana.PublicKey {
	return w.key.PublicKey()
}

func (w *KeypairWallet) Connect(_ context.Context) (core.Account, error) {
	if len(w.key) == 0 {
		return core.Account{}, core.NewError(core.KindValidation, "connect", errors.New("solana key not loaded"))
	}

	w.connected.Store(true)

	return core.Account{Address: w.PublicKey().String(), Chain: core.ChainTypeSolana}, nil
}

func (w *KeypairWallet) IsConnected() bool {
	return w.connected.Load()
}

func (w *KeypairWallet) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	key, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, core.NewError(core.KindValidation, "get balance", fmt.Errorf("invalid address %s: %w", address, err))
	}

	lamports, err := w.client.GetBalance(ctx, key)
	if err != nil {
		return nil, err
	}

	return new(big.Int).SetUint64(lamports), nil
}

func (w *KeypairWallet) GetAccountInfo(ctx context.Context, address string) (*core.AccountData, error) {
	key, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, core.NewError(core.KindValidation, "get account", fmt.Errorf("invalid address %s: %w", address, err))
	}

	account, err := w.client.GetAccountInfo(ctx, key)
	if err != nil || account == nil {
		return nil, err
	}

	data := &core.AccountData{
		Owner:    account.Owner.String(),
		Lamports: account.Lamports,
	}

	if account.Data != nil {
		data.Data = account.Data.GetBinary()
	}

	return data, nil
}

// SignAndSend signs a *solana.Transaction after approval and submits it.
func (w *KeypairWallet) SignAndSend(ctx context.Context, tx any) (string, error) {
	if !w.IsConnected() {
		return "", core.NewError(core.KindValidation, "sign", core.ErrWalletNotConnected)
	}

	solanaTx, ok := tx.(*solana.Transaction)
	if !ok {
		return "", core.NewError(core.KindValidation, "sign", fmt.Errorf("unsupported transaction type %T", tx))
	}

	if w.approver != nil {
		approved, err := w.approver(ctx, fmt.Sprintf("sign solana transaction with %d instruction(s) paid by %s",
			len(solanaTx.Message.Instructions), w.PublicKey()))
		if err != nil {
			return "", err
		}

		if !approved {
			return "", core.NewError(core.KindUserRejected, "sign", core.ErrUserRejected)
		}
	}

	pub := w.PublicKey()

	if _, err := solanaTx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(pub) {
			return &w.key
		}

		return nil
	}); err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := w.client.SendTransaction(ctx, solanaTx)
	if err != nil {
		return "", err
	}

	w.logger.Debug("Transaction sent", "signature", sig)

	return sig.String(), nil
}

func (w *KeypairWallet) ConfirmTransaction(ctx context.Context, signature string, commitment core.Commitment) error {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return core.NewError(core.KindValidation, "confirm", fmt.Errorf("invalid signature %s: %w", signature, err))
	}

	return w.client.WaitForSignature(ctx, sig, rpc.CommitmentType(commitment))
}
