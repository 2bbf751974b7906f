package bridgemanager

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ethernal-Tech/cardano-infrastructure/secrets"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/hashicorp/go-hclog"
	"github.com/icrc99-bridge/nft-bridge/bridge/batch"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	databaseaccess "github.com/icrc99-bridge/nft-bridge/bridge/database_access"
	"github.com/icrc99-bridge/nft-bridge/bridge/progress"
	"github.com/icrc99-bridge/nft-bridge/bridge/wizard"
	"github.com/icrc99-bridge/nft-bridge/common"
	"github.com/icrc99-bridge/nft-bridge/eth"
	ethtxhelper "github.com/icrc99-bridge/nft-bridge/eth/txhelper"
	"github.com/icrc99-bridge/nft-bridge/icp"
	solanaClient "github.com/icrc99-bridge/nft-bridge/solana/client"
)

type WizardRequest struct {
	Flow  core.Flow
	Chain core.ChainType
	// Contract binds the ERC-721 reader, it is ignored for other chains.
	Contract   string
	OnProgress progress.Listener
	OnComplete func(*core.BridgeResult)
}

// BridgeManagerImpl owns every chain adapter built from the bridge
// configuration and hands out wizards wired to them.
type BridgeManagerImpl struct {
	config       *core.BridgeConfig
	store        core.RecoveryStore
	orchestrator core.Orchestrator
	ledger       core.CyclesLedger
	sources      map[core.ChainType]core.SourceChain
	readers      map[core.ChainType]core.ChainReader
	evmTxHelper  ethtxhelper.IEthTxHelper
	closers      []func() error
	logger       hclog.Logger
}

func NewBridgeManager(
	ctx context.Context, config *core.BridgeConfig, approver common.Approver, logger hclog.Logger,
) (_ *BridgeManagerImpl, err error) {
	secretsManager, err := common.GetSecretsManager(
		config.Secrets.DataDir, config.Secrets.ConfigPath, config.Secrets.InsecureLocalStore)
	if err != nil {
		return nil, fmt.Errorf("failed to create secrets manager: %w", err)
	}

	store, err := databaseaccess.NewDatabase(config.DbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open recovery store: %w", err)
	}

	m := &BridgeManagerImpl{
		config:  config,
		store:   store,
		sources: map[core.ChainType]core.SourceChain{},
		readers: map[core.ChainType]core.ChainReader{},
		closers: []func() error{store.Close},
		logger:  logger,
	}

	defer func() {
		if err != nil {
			_ = m.Dispose()
		}
	}()

	if err := m.initICP(config.ICP, secretsManager, approver); err != nil {
		return nil, err
	}

	if err := m.initSolana(ctx, config.Solana, secretsManager, approver); err != nil {
		return nil, err
	}

	if config.EVM.IsEnabled() {
		if err := m.initEVM(config.EVM, secretsManager, approver); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *BridgeManagerImpl) initICP(
	config core.ICPConfig, secretsManager secrets.SecretsManager, approver common.Approver,
) error {
	id, err := icp.LoadIdentity(secretsManager)
	if err != nil {
		return err
	}

	agent, err := icp.NewAgent(config, id)
	if err != nil {
		return err
	}

	orchestrator, err := icp.NewOrchestratorClient(
		agent, config.OrchestratorCanister, m.logger.Named("orchestrator"))
	if err != nil {
		return err
	}

	ledger, err := icp.NewCyclesLedgerClient(
		agent, config.CyclesLedgerCanister, id.Sender(), approver, m.logger.Named("cycles_ledger"))
	if err != nil {
		return err
	}

	wallet := icp.NewIdentityWallet(agent, id, ledger, approver, m.logger.Named("ic_wallet"))

	m.orchestrator = orchestrator
	m.ledger = ledger
	m.sources[core.ChainTypeICP] = icp.NewICRC7Source(agent, wallet, m.logger.Named("icrc7"))

	return nil
}

func (m *BridgeManagerImpl) initSolana(
	ctx context.Context, config core.SolanaConfig, secretsManager secrets.SecretsManager, approver common.Approver,
) error {
	key, err := solanaClient.LoadPrivateKey(secretsManager)
	if err != nil {
		return err
	}

	connection := solanaClient.WithNetwork(ctx, config.Network)
	if config.RPCURL != "" {
		connection = solanaClient.WithCustomRPC(ctx, config.RPCURL, config.WSURL)
	}

	client, err := solanaClient.NewSolanaClient(
		connection, solanaClient.WithCommitment(rpc.CommitmentType(config.Commitment)))
	if err != nil {
		return fmt.Errorf("failed to create solana client: %w", err)
	}

	m.closers = append(m.closers, client.Close)

	wallet := solanaClient.NewKeypairWallet(client, key, approver, m.logger.Named("solana_wallet"))

	m.sources[core.ChainTypeSolana] = solanaClient.NewSPLSource(client, wallet, config, m.logger.Named("spl"))
	m.readers[core.ChainTypeSolana] = solanaClient.NewChainReadClient(client)

	return nil
}

func (m *BridgeManagerImpl) initEVM(
	config core.EVMConfig, secretsManager secrets.SecretsManager, approver common.Approver,
) error {
	txWallet, err := eth.LoadPrivateKey(secretsManager)
	if err != nil {
		return err
	}

	txHelper, err := ethtxhelper.NewEThTxHelper(
		ethtxhelper.WithNodeURL(config.NodeURL),
		ethtxhelper.WithChainID(config.ChainID),
		ethtxhelper.WithDefaultGasLimit(config.GasLimit),
		ethtxhelper.WithDynamicTx(config.DynamicTx),
	)
	if err != nil {
		return fmt.Errorf("failed to create evm tx helper: %w", err)
	}

	m.closers = append(m.closers, func() error {
		txHelper.GetClient().Close()

		return nil
	})

	wallet := eth.NewEVMWallet(txHelper, txWallet, approver, m.logger.Named("evm_wallet"))

	m.evmTxHelper = txHelper
	m.sources[core.ChainTypeEVM] = eth.NewERC721Source(txHelper, wallet, config, m.logger.Named("erc721"))

	return nil
}

func (m *BridgeManagerImpl) Store() core.RecoveryStore {
	return m.store
}

func (m *BridgeManagerImpl) Orchestrator() core.Orchestrator {
	return m.orchestrator
}

// Source returns the source chain of a flow. Import accepts Solana and EVM
// collections, burn only Solana casts and export only IC tokens.
func (m *BridgeManagerImpl) Source(flow core.Flow, chain core.ChainType) (core.SourceChain, error) {
	allowed := map[core.Flow][]core.ChainType{
		core.FlowImport: {core.ChainTypeSolana, core.ChainTypeEVM},
		core.FlowBurn:   {core.ChainTypeSolana},
		core.FlowExport: {core.ChainTypeICP},
	}[flow]

	for _, ch := range allowed {
		if ch != chain {
			continue
		}

		source, exists := m.sources[chain]
		if !exists {
			return nil, core.NewError(core.KindValidation, "select source",
				fmt.Errorf("%s chain is not configured", chain))
		}

		return source, nil
	}

	return nil, core.NewError(core.KindValidation, "select source",
		fmt.Errorf("%s flow does not support %s assets", flow, chain))
}

func (m *BridgeManagerImpl) NewWizard(req WizardRequest) (*wizard.Wizard, error) {
	source, err := m.Source(req.Flow, req.Chain)
	if err != nil {
		return nil, err
	}

	reader, err := m.reader(req.Chain, req.Contract)
	if err != nil {
		return nil, err
	}

	return wizard.New(wizard.Config{
		Flow:         req.Flow,
		Source:       source,
		Reader:       reader,
		Orchestrator: m.orchestrator,
		Ledger:       m.ledger,
		Store:        m.store,
		Poll:         m.config.Poll,
		OnComplete:   req.OnComplete,
		OnProgress:   req.OnProgress,
	}, m.logger.Named("wizard"))
}

func (m *BridgeManagerImpl) NewBatchImporter(req WizardRequest) (*batch.Importer, error) {
	if _, err := m.Source(req.Flow, req.Chain); err != nil {
		return nil, err
	}

	return batch.NewImporter(req.Flow, func() (*wizard.Wizard, error) {
		return m.NewWizard(req)
	}, m.store, m.logger.Named("batch")), nil
}

func (m *BridgeManagerImpl) reader(chain core.ChainType, contract string) (core.ChainReader, error) {
	if chain == core.ChainTypeEVM && contract != "" && m.evmTxHelper != nil {
		return eth.NewERC721Reader(m.evmTxHelper, contract)
	}

	return m.readers[chain], nil
}

func (m *BridgeManagerImpl) Dispose() error {
	var errs []error

	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}

	m.closers = nil

	if len(errs) > 0 {
		return fmt.Errorf("failed to dispose bridge manager: %w", errors.Join(errs...))
	}

	return nil
}
