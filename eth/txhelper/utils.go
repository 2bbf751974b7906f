package ethtxhelper

import (
	"errors"
	"math/big"
	"net"
	"strings"

	infracommon "github.com/Ethernal-Tech/cardano-infrastructure/common"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
)

type SendErrorKind int

const (
	SendErrorUnknown SendErrorKind = iota
	// SendErrorTransient clears by itself, sending again later may succeed
	SendErrorTransient
	// SendErrorUnaffordable means the sender can not pay for gas
	SendErrorUnaffordable
	// SendErrorReverted means the contract refused the call
	SendErrorReverted
)

var (
	transientMessages = []string{
		"replacement transaction underpriced",
		"replacement tx underpriced",
		"nonce too low",
		"already known",
		"tx with the same nonce is already present",
		"rejected future tx due to low slots",
	}
	unaffordableMessages = []string{
		"insufficient funds",
		"gas required exceeds allowance",
	}
)

// MulPercentage returns value * percentage / 100.
func MulPercentage(value *big.Int, percentage uint64) *big.Int {
	res := new(big.Int).Mul(value, new(big.Int).SetUint64(percentage))

	return res.Div(res, big.NewInt(100))
}

// ClassifySendError sorts an error of gas estimation or transaction submission.
func ClassifySendError(err error) SendErrorKind {
	if err == nil || infracommon.IsContextDoneErr(err) {
		return SendErrorUnknown
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, infracommon.ErrRetryTryAgain) {
		return SendErrorTransient
	}

	if IsRevertError(err) {
		return SendErrorReverted
	}

	msg := strings.ToLower(err.Error())

	switch {
	case containsAny(msg, transientMessages):
		return SendErrorTransient
	case containsAny(msg, unaffordableMessages):
		return SendErrorUnaffordable
	default:
		return SendErrorUnknown
	}
}

// IsRevertError is true for reverted calls and calls to addresses without code.
func IsRevertError(err error) bool {
	return err != nil && (errors.Is(err, bind.ErrNoCode) || strings.Contains(err.Error(), "execution reverted"))
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}
