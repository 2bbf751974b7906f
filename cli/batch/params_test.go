package clibatch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBatchParams(t *testing.T) {
	t.Run("validate", func(t *testing.T) {
		p := &batchParams{chain: "solana"}
		require.ErrorContains(t, p.validateFlags(), "specify at least one of")

		p.assets = []string{"mintA"}
		require.NoError(t, p.validateFlags())

		p.chain = "evm"
		require.ErrorContains(t, p.validateFlags(), "--contract")

		p.contract = "0x1"
		require.NoError(t, p.validateFlags())

		p.chain = "icp"
		require.ErrorContains(t, p.validateFlags(), "invalid --chain")

		p.chain = "solana"
		p.network = "moon"
		require.ErrorContains(t, p.validateFlags(), "invalid --network")
	})

	t.Run("token ids", func(t *testing.T) {
		ids, err := tokenIDs([]string{"a", " b ", ""}, []string{"b", "c"})
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b", "c"}, ids)

		_, err = tokenIDs([]string{" "}, nil)
		require.Error(t, err)
	})
}
