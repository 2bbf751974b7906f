package bridgemanager

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/icrc99-bridge/nft-bridge/bridge/core"
	databaseaccess "github.com/icrc99-bridge/nft-bridge/bridge/database_access"
	"github.com/icrc99-bridge/nft-bridge/bridge/wizard"
	"github.com/stretchr/testify/require"
)

func newTestManager() *BridgeManagerImpl {
	return &BridgeManagerImpl{
		config:       &core.BridgeConfig{Poll: core.PollConfig{IntervalMilis: 1, MaxAttempts: 1}},
		store:        &databaseaccess.DBMock{},
		orchestrator: &core.OrchestratorMock{PrincipalID: "orchestrator"},
		ledger:       &core.CyclesLedgerMock{OwnerID: "owner"},
		sources: map[core.ChainType]core.SourceChain{
			core.ChainTypeSolana: &core.SourceChainMock{ChainType: core.ChainTypeSolana},
			core.ChainTypeICP:    &core.SourceChainMock{ChainType: core.ChainTypeICP},
		},
		readers: map[core.ChainType]core.ChainReader{},
		logger:  hclog.NewNullLogger(),
	}
}

func TestBridgeManagerSource(t *testing.T) {
	m := newTestManager()

	cases := []struct {
		name  string
		flow  core.Flow
		chain core.ChainType
		err   string
	}{
		{name: "solana import", flow: core.FlowImport, chain: core.ChainTypeSolana},
		{name: "solana burn", flow: core.FlowBurn, chain: core.ChainTypeSolana},
		{name: "ic export", flow: core.FlowExport, chain: core.ChainTypeICP},
		{name: "evm import not configured", flow: core.FlowImport, chain: core.ChainTypeEVM, err: "not configured"},
		{name: "evm burn", flow: core.FlowBurn, chain: core.ChainTypeEVM, err: "does not support"},
		{name: "ic import", flow: core.FlowImport, chain: core.ChainTypeICP, err: "does not support"},
		{name: "solana export", flow: core.FlowExport, chain: core.ChainTypeSolana, err: "does not support"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			source, err := m.Source(tc.flow, tc.chain)
			if tc.err != "" {
				require.ErrorContains(t, err, tc.err)
				require.Equal(t, core.KindValidation, core.KindOf(err))

				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.chain, source.Chain())
		})
	}
}

func TestBridgeManagerNewWizard(t *testing.T) {
	m := newTestManager()

	w, err := m.NewWizard(WizardRequest{Flow: core.FlowImport, Chain: core.ChainTypeSolana})
	require.NoError(t, err)
	require.Equal(t, core.FlowImport, w.Flow())
	require.Equal(t, wizard.StepConnect, w.State().Step)

	_, err = m.NewWizard(WizardRequest{Flow: core.FlowExport, Chain: core.ChainTypeEVM})
	require.Error(t, err)

	importer, err := m.NewBatchImporter(WizardRequest{Flow: core.FlowImport, Chain: core.ChainTypeSolana})
	require.NoError(t, err)
	require.NotNil(t, importer)
}

func TestBridgeManagerDispose(t *testing.T) {
	m := newTestManager()

	var order []int

	m.closers = []func() error{
		func() error {
			order = append(order, 1)

			return nil
		},
		func() error {
			order = append(order, 2)

			return errors.New("closed twice")
		},
	}

	err := m.Dispose()
	require.ErrorContains(t, err, "closed twice")
	require.Equal(t, []int{2, 1}, order)
	require.NoError(t, m.Dispose())
}
