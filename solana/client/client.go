package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	"github.com/sethvargo/go-retry"
)

const (
	defaultConfirmInterval = 2 * time.Second
	defaultConfirmAttempts = 60
)

// RPCClient is the part of *rpc.Client used by the bridge.
type RPCClient interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	GetAccountInfoWithOpts(
		ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts,
	) (*rpc.GetAccountInfoResult, error)
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetMinimumBalanceForRentExemption(
		ctx context.Context, dataSize uint64, commitment rpc.CommitmentType,
	) (uint64, error)
	SendTransactionWithOpts(
		ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts,
	) (solana.Signature, error)
	GetSignatureStatuses(
		ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature,
	) (*rpc.GetSignatureStatusesResult, error)
	GetTokenAccountsByOwner(
		ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts,
	) (*rpc.GetTokenAccountsResult, error)
	Close() error
}

var _ RPCClient = (*rpc.Client)(nil)

// SolanaClient wraps RPC and WebSocket clients for Solana blockchain interactions.
// Signatures are awaited through a WebSocket subscription when one is
// configured, otherwise by polling signature statuses.
type SolanaClient struct {
	cli             RPCClient
	wsCli           *ws.Client
	commitment      rpc.CommitmentType
	confirmInterval time.Duration
	confirmAttempts uint64
}

type solanaClientOption func(*SolanaClient) error

func WithCommitment(commitment rpc.CommitmentType) solanaClientOption {
	return func(s *SolanaClient) error {
		s.commitment = commitment

		return nil
	}
}

func WithWSClient(wsCli *ws.Client) solanaClientOption {
	return func(s *SolanaClient) error {
		s.wsCli = wsCli

		return nil
	}
}

func WithRPCClient(cli RPCClient) solanaClientOption {
	return func(s *SolanaClient) error {
		s.cli = cli

		return nil
	}
}

func WithConfirmPolling(interval time.Duration, attempts uint64) solanaClientOption {
	return func(s *SolanaClient) error {
		if interval <= 0 || attempts == 0 {
			return errors.New("invalid confirmation polling settings")
		}

		s.confirmInterval = interval
		s.confirmAttempts = attempts

		return nil
	}
}

// WithNetwork connects to the public cluster of the network. Localnet
// expects a local test validator.
func WithNetwork(ctx context.Context, network core.Network) solanaClientOption {
	return func(s *SolanaClient) error {
		var rpcURL, wsURL string

		switch network {
		case core.NetworkMainnet:
			rpcURL, wsURL = rpc.MainNetBeta_RPC, rpc.MainNetBeta_WS
		case core.NetworkDevnet:
			rpcURL, wsURL = rpc.DevNet_RPC, rpc.DevNet_WS
		case core.NetworkTestnet:
			rpcURL, wsURL = rpc.TestNet_RPC, rpc.TestNet_WS
		case core.NetworkLocalnet:
			rpcURL, wsURL = rpc.LocalNet_RPC, rpc.LocalNet_WS
		default:
			return fmt.Errorf("unsupported solana network: %s", network)
		}

		return WithCustomRPC(ctx, rpcURL, wsURL)(s)
	}
}

// WithCustomRPC uses the given endpoints. An empty wsURL disables the
// WebSocket client.
func WithCustomRPC(ctx context.Context, rpcURL, wsURL string) solanaClientOption {
	return func(s *SolanaClient) error {
		s.cli = rpc.New(rpcURL)

		if wsURL == "" {
			return nil
		}

		wsCli, err := ws.Connect(ctx, wsURL)
		if err != nil {
			return fmt.Errorf("failed to connect to %s: %w", wsURL, err)
		}

		s.wsCli = wsCli

		return nil
	}
}

// NewSolanaClient creates a new SolanaClient. CommitmentFinalized is the
// default commitment level.
func NewSolanaClient(opts ...solanaClientOption) (*SolanaClient, error) {
	s := &SolanaClient{
		commitment:      rpc.CommitmentFinalized,
		confirmInterval: defaultConfirmInterval,
		confirmAttempts: defaultConfirmAttempts,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.cli == nil {
		return nil, errors.New("solana rpc client not configured")
	}

	return s, nil
}

func (s *SolanaClient) GetRpcClient() RPCClient {
	return s.cli
}

func (s *SolanaClient) Commitment() rpc.CommitmentType {
	return s.commitment
}

func (s *SolanaClient) Close() error {
	if s.wsCli != nil {
		s.wsCli.Close()
	}

	return s.cli.Close()
}

// GetAccountInfo returns nil without error when the account does not exist.
func (s *SolanaClient) GetAccountInfo(ctx context.Context, address solana.PublicKey) (*rpc.Account, error) {
	info, err := s.cli.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Commitment: s.commitment,
		Encoding:   solana.EncodingBase64,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to get account info %s: %w", address, err)
	}

	if info == nil || info.Value == nil {
		return nil, nil
	}

	return info.Value, nil
}

func (s *SolanaClient) GetBalance(ctx context.Context, address solana.PublicKey) (uint64, error) {
	res, err := s.cli.GetBalance(ctx, address, s.commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance of %s: %w", address, err)
	}

	return res.Value, nil
}

func (s *SolanaClient) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error) {
	rent, err := s.cli.GetMinimumBalanceForRentExemption(ctx, dataSize, s.commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to get rent exemption: %w", err)
	}

	return rent, nil
}

// BuildTransaction builds an unsigned transaction of the instructions paid by feePayer.
func (s *SolanaClient) BuildTransaction(
	ctx context.Context, ixs []solana.Instruction, feePayer solana.PublicKey,
) (*solana.Transaction, error) {
	blockhash, err := s.cli.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	builder := solana.NewTransactionBuilder().
		SetRecentBlockHash(blockhash.Value.Blockhash).
		SetFeePayer(feePayer)

	for _, ix := range ixs {
		builder.AddInstruction(ix)
	}

	tx, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}

	return tx, nil
}

// SendTransaction sends an already signed transaction.
func (s *SolanaClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := s.cli.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: s.commitment,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	return sig, nil
}

func (s *SolanaClient) WaitForSignature(
	ctx context.Context, sig solana.Signature, commitment rpc.CommitmentType,
) error {
	if s.wsCli != nil {
		return s.waitForSignatureWS(ctx, sig, commitment)
	}

	backoff := retry.WithMaxRetries(s.confirmAttempts-1, retry.NewConstant(s.confirmInterval))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		res, err := s.cli.GetSignatureStatuses(ctx, false, sig)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("failed to get signature status: %w", err))
		}

		if len(res.Value) == 0 || res.Value[0] == nil {
			return retry.RetryableError(fmt.Errorf("transaction %s not found yet", sig))
		}

		status := res.Value[0]
		if status.Err != nil {
			return fmt.Errorf("transaction failed: %v", status.Err)
		}

		if !isCommitmentReached(status.ConfirmationStatus, commitment) {
			return retry.RetryableError(fmt.Errorf("transaction %s is %s", sig, status.ConfirmationStatus))
		}

		return nil
	})
}

func (s *SolanaClient) waitForSignatureWS(
	ctx context.Context, sig solana.Signature, commitment rpc.CommitmentType,
) error {
	sub, err := s.wsCli.SignatureSubscribe(sig, commitment)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case rd := <-sub.Response():
		if rd.Value.Err != nil {
			return fmt.Errorf("transaction failed: %v", rd.Value.Err)
		}
	}

	return nil
}

func isCommitmentReached(status rpc.ConfirmationStatusType, commitment rpc.CommitmentType) bool {
	switch status {
	case rpc.ConfirmationStatusFinalized:
		return true
	case rpc.ConfirmationStatusConfirmed:
		return commitment != rpc.CommitmentFinalized
	case rpc.ConfirmationStatusProcessed:
		return commitment == rpc.CommitmentProcessed
	default:
		return false
	}
}
