package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		require.Nil(t, Classify("op", nil))
	})

	t.Run("keeps existing kind", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", NewError(KindNotBridged, "costs", errors.New("no canister")))

		require.Equal(t, KindNotBridged, KindOf(err))
	})

	t.Run("user rejected", func(t *testing.T) {
		err := fmt.Errorf("failed to sign: %w", ErrUserRejected)

		require.Equal(t, KindUserRejected, KindOf(err))
		require.True(t, KindOf(err).Retryable())
	})

	t.Run("insufficient balance", func(t *testing.T) {
		require.Equal(t, KindValidation, KindOf(ErrInsufficientBalance))
		require.False(t, KindValidation.Retryable())
	})

	t.Run("deadline", func(t *testing.T) {
		require.Equal(t, KindNetwork, KindOf(fmt.Errorf("rpc: %w", context.DeadlineExceeded)))
	})

	t.Run("cancelled", func(t *testing.T) {
		kind := KindOf(fmt.Errorf("send: %w", context.Canceled))
		require.Equal(t, KindNetwork, kind)
		require.True(t, kind.Retryable())
	})

	t.Run("transport message", func(t *testing.T) {
		require.Equal(t, KindNetwork, KindOf(errors.New("dial tcp 127.0.0.1:8899: connection refused")))
	})

	t.Run("default protocol", func(t *testing.T) {
		bridgeErr := Classify("mint", errors.New("canister rejected the call"))

		require.Equal(t, KindProtocol, bridgeErr.Kind)
		require.Equal(t, "ProtocolError: mint: canister rejected the call", bridgeErr.Error())
	})
}
