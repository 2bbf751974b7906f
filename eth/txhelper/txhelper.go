package ethtxhelper

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// PrepareTxFunc builds a transaction from fully populated transact options.
type PrepareTxFunc func(*bind.TransactOpts) (*types.Transaction, error)

const (
	defaultGasLimit         = uint64(200_000)
	defaultNumRetries       = 300
	defaultGasFeeMultiplier = 120 // 120%
)

// EthClient is the part of *ethclient.Client used by the bridge.
type EthClient interface {
	bind.ContractBackend
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	FeeHistory(
		ctx context.Context, blockCount uint64, lastBlock *big.Int, rewardPercentiles []float64,
	) (*ethereum.FeeHistory, error)
	Close()
}

var _ EthClient = (*ethclient.Client)(nil)

type IEthTxHelper interface {
	GetClient() EthClient
	GetChainID(ctx context.Context) (*big.Int, error)
	GetNonce(ctx context.Context, addr string, pending bool) (uint64, error)
	WaitForReceipt(ctx context.Context, hash string, skipNotFound bool) (*types.Receipt, error)
	PrepareTx(ctx context.Context, from common.Address,
		txOpts bind.TransactOpts, prepareTxHandler PrepareTxFunc) (*types.Transaction, error)
	SuggestFee(ctx context.Context, gasLimit uint64) (*big.Int, error)
	PopulateTxOpts(ctx context.Context, from common.Address, txOpts *bind.TransactOpts) error
}

type EthTxHelperImpl struct {
	client           EthClient
	nodeURL          string
	numRetries       int
	receiptWaitTime  time.Duration
	gasFeeMultiplier uint64
	isDynamic        bool
	defaultGasLimit  uint64
	chainID          *big.Int
	mutex            sync.Mutex
}

var _ IEthTxHelper = (*EthTxHelperImpl)(nil)

func NewEThTxHelper(opts ...TxRelayerOption) (*EthTxHelperImpl, error) {
	t := &EthTxHelperImpl{
		receiptWaitTime:  time.Second,
		numRetries:       defaultNumRetries,
		gasFeeMultiplier: defaultGasFeeMultiplier,
		defaultGasLimit:  defaultGasLimit,
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.client == nil {
		if t.nodeURL == "" {
			return nil, errors.New("evm node url not specified")
		}

		client, err := ethclient.Dial(t.nodeURL)
		if err != nil {
			return nil, err
		}

		t.client = client
	}

	return t, nil
}

func (t *EthTxHelperImpl) GetClient() EthClient {
	return t.client
}

// GetChainID returns the configured chain id or asks the node once.
func (t *EthTxHelperImpl) GetChainID(ctx context.Context) (*big.Int, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.chainID != nil {
		return t.chainID, nil
	}

	chainID, err := t.client.ChainID(ctx)
	if err != nil {
		return nil, err
	}

	t.chainID = chainID

	return chainID, nil
}

func (t *EthTxHelperImpl) GetNonce(ctx context.Context, addr string, pending bool) (uint64, error) {
	if pending {
		return t.client.PendingNonceAt(ctx, common.HexToAddress(addr))
	}

	return t.client.NonceAt(ctx, common.HexToAddress(addr), nil)
}

func (t *EthTxHelperImpl) WaitForReceipt(
	ctx context.Context, hash string, skipNotFound bool,
) (*types.Receipt, error) {
	for count := 0; count < t.numRetries; count++ {
		receipt, err := t.client.TransactionReceipt(ctx, common.HexToHash(hash))
		if err != nil {
			if !skipNotFound && errors.Is(err, ethereum.NotFound) {
				return nil, err
			}
		} else if receipt != nil {
			return receipt, nil
		}

		select {
		case <-time.After(t.receiptWaitTime):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("timeout while waiting for transaction %s to be processed", hash)
}

// PrepareTx populates the options and lets the handler build an unsigned
// transaction that is neither signed nor sent.
func (t *EthTxHelperImpl) PrepareTx(
	ctx context.Context, from common.Address, txOptsParam bind.TransactOpts, prepareTxHandler PrepareTxFunc,
) (*types.Transaction, error) {
	txOpts := &bind.TransactOpts{
		Signer: func(_ common.Address, tx *types.Transaction) (*types.Transaction, error) {
			return tx, nil
		},
		NoSend: true,
	}

	copyTxOpts(txOpts, &txOptsParam)

	if err := t.PopulateTxOpts(ctx, from, txOpts); err != nil {
		return nil, err
	}

	return prepareTxHandler(txOpts)
}

// SuggestFee returns the worst case fee of a transaction using gasLimit gas.
func (t *EthTxHelperImpl) SuggestFee(ctx context.Context, gasLimit uint64) (*big.Int, error) {
	txOpts := &bind.TransactOpts{GasLimit: gasLimit, Nonce: big.NewInt(0)}

	if err := t.PopulateTxOpts(ctx, common.Address{}, txOpts); err != nil {
		return nil, err
	}

	price := txOpts.GasPrice
	if t.isDynamic {
		price = txOpts.GasFeeCap
	}

	return new(big.Int).Mul(price, new(big.Int).SetUint64(txOpts.GasLimit)), nil
}

func (t *EthTxHelperImpl) PopulateTxOpts(
	ctx context.Context, from common.Address, txOpts *bind.TransactOpts,
) error {
	txOpts.Context = ctx
	txOpts.From = from

	if txOpts.Nonce == nil {
		nonce, err := t.client.PendingNonceAt(ctx, txOpts.From)
		if err != nil {
			return err
		}

		txOpts.Nonce = new(big.Int).SetUint64(nonce)
	}

	if txOpts.GasLimit == 0 {
		txOpts.GasLimit = t.defaultGasLimit
	}

	if !t.isDynamic {
		if txOpts.GasPrice == nil {
			gasPrice, err := t.client.SuggestGasPrice(ctx)
			if err != nil {
				return err
			}

			txOpts.GasPrice = MulPercentage(gasPrice, t.gasFeeMultiplier)
		}
	} else if txOpts.GasFeeCap == nil || txOpts.GasTipCap == nil {
		gasTipCap, err := t.client.SuggestGasTipCap(ctx)
		if err != nil {
			return err
		}

		txOpts.GasTipCap = MulPercentage(gasTipCap, t.gasFeeMultiplier)

		hs, err := t.client.FeeHistory(ctx, 1, nil, nil)
		if err != nil {
			return err
		}

		if len(hs.BaseFee) == 0 {
			return errors.New("fee history without base fee")
		}

		gasFeeCap := new(big.Int).Add(hs.BaseFee[len(hs.BaseFee)-1], gasTipCap)

		txOpts.GasFeeCap = MulPercentage(gasFeeCap, t.gasFeeMultiplier)
	}

	return nil
}

type TxRelayerOption func(*EthTxHelperImpl)

func WithDynamicTx(value bool) TxRelayerOption {
	return func(t *EthTxHelperImpl) {
		t.isDynamic = value
	}
}

func WithClient(client EthClient) TxRelayerOption {
	return func(t *EthTxHelperImpl) {
		t.client = client
	}
}

func WithNodeURL(nodeURL string) TxRelayerOption {
	return func(t *EthTxHelperImpl) {
		t.nodeURL = nodeURL
	}
}

func WithReceiptWaitTime(receiptWaitTime time.Duration) TxRelayerOption {
	return func(t *EthTxHelperImpl) {
		t.receiptWaitTime = receiptWaitTime
	}
}

// WithNumRetries sets the maximum number of eth_getTransactionReceipt retries
// before considering the transaction as timed out.
func WithNumRetries(numRetries int) TxRelayerOption {
	return func(t *EthTxHelperImpl) {
		t.numRetries = numRetries
	}
}

func WithGasFeeMultiplier(gasFeeMultiplier uint64) TxRelayerOption {
	return func(t *EthTxHelperImpl) {
		t.gasFeeMultiplier = gasFeeMultiplier
	}
}

func WithDefaultGasLimit(gasLimit uint64) TxRelayerOption {
	return func(t *EthTxHelperImpl) {
		if gasLimit > 0 {
			t.defaultGasLimit = gasLimit
		}
	}
}

// WithChainID skips asking the node for the chain id. Zero keeps asking.
func WithChainID(chainID uint64) TxRelayerOption {
	return func(t *EthTxHelperImpl) {
		if chainID > 0 {
			t.chainID = new(big.Int).SetUint64(chainID)
		}
	}
}

func copyTxOpts(dst, src *bind.TransactOpts) {
	dst.GasPrice = src.GasPrice
	dst.GasFeeCap = src.GasFeeCap
	dst.GasTipCap = src.GasTipCap
	dst.GasLimit = src.GasLimit
	dst.Nonce = src.Nonce
	dst.Value = src.Value
}
