package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

type ErrorKind string

const (
	KindValidation    ErrorKind = "ValidationError"
	KindUserRejected  ErrorKind = "UserRejected"
	KindNetwork       ErrorKind = "NetworkError"
	KindNotBridged    ErrorKind = "NotBridged"
	KindAssetNotOwned ErrorKind = "AssetNotOwned"
	KindPollTimeout   ErrorKind = "PollTimeout"
	KindProtocol      ErrorKind = "ProtocolError"
)

var (
	ErrUserRejected        = errors.New("user rejected the signature request")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrWalletNotConnected  = errors.New("wallet not connected")
)

// Retryable reports whether re-invoking the failed step unchanged may succeed.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindUserRejected, KindNetwork, KindPollTimeout:
		return true
	default:
		return false
	}
}

type BridgeError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func NewError(kind ErrorKind, op string, err error) *BridgeError {
	return &BridgeError{Kind: kind, Op: op, Err: err}
}

func (e *BridgeError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}

	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *BridgeError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of an already classified error or classifies it.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}

	return Classify("", err).Kind
}

// Classify converts any error into a BridgeError. Errors that already carry a
// kind keep it.
func Classify(op string, err error) *BridgeError {
	if err == nil {
		return nil
	}

	var bridgeErr *BridgeError
	if errors.As(err, &bridgeErr) {
		return bridgeErr
	}

	kind := KindProtocol

	switch {
	case errors.Is(err, ErrUserRejected):
		kind = KindUserRejected
	case errors.Is(err, ErrInsufficientBalance), errors.Is(err, ErrWalletNotConnected):
		kind = KindValidation
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		kind = KindNetwork
	default:
		var netErr net.Error
		if errors.As(err, &netErr) || containsAny(strings.ToLower(err.Error()), networkMessageTokens) {
			kind = KindNetwork
		}
	}

	return NewError(kind, op, err)
}

var networkMessageTokens = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"i/o timeout",
	"eof",
	"too many requests",
	"service unavailable",
	"bad gateway",
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}

	return false
}
