package icp

import (
	"github.com/aviate-labs/agent-go/candid/idl"
	"github.com/aviate-labs/agent-go/principal"
)

type Account struct {
	Owner      principal.Principal `ic:"owner"`
	Subaccount *[]byte             `ic:"subaccount,omitempty"`
}

type AllowanceArgs struct {
	Account Account `ic:"account"`
	Spender Account `ic:"spender"`
}

type Allowance struct {
	Allowance idl.Nat `ic:"allowance"`
	ExpiresAt *uint64 `ic:"expires_at,omitempty"`
}

type ApproveArgs struct {
	FromSubaccount    *[]byte  `ic:"from_subaccount,omitempty"`
	Spender           Account  `ic:"spender"`
	Amount            idl.Nat  `ic:"amount"`
	ExpectedAllowance *idl.Nat `ic:"expected_allowance,omitempty"`
	ExpiresAt         *uint64  `ic:"expires_at,omitempty"`
	Fee               *idl.Nat `ic:"fee,omitempty"`
	Memo              *[]byte  `ic:"memo,omitempty"`
	CreatedAtTime     *uint64  `ic:"created_at_time,omitempty"`
}

type GenericError struct {
	ErrorCode idl.Nat `ic:"error_code"`
	Message   string  `ic:"message"`
}

type ApproveError struct {
	BadFee *struct {
		ExpectedFee idl.Nat `ic:"expected_fee"`
	} `ic:"BadFee,variant"`
	InsufficientFunds *struct {
		Balance idl.Nat `ic:"balance"`
	} `ic:"InsufficientFunds,variant"`
	AllowanceChanged *struct {
		CurrentAllowance idl.Nat `ic:"current_allowance"`
	} `ic:"AllowanceChanged,variant"`
	Expired *struct {
		LedgerTime uint64 `ic:"ledger_time"`
	} `ic:"Expired,variant"`
	TooOld          *idl.Null `ic:"TooOld,variant"`
	CreatedInFuture *struct {
		LedgerTime uint64 `ic:"ledger_time"`
	} `ic:"CreatedInFuture,variant"`
	Duplicate *struct {
		DuplicateOf idl.Nat `ic:"duplicate_of"`
	} `ic:"Duplicate,variant"`
	TemporarilyUnavailable *idl.Null     `ic:"TemporarilyUnavailable,variant"`
	GenericError           *GenericError `ic:"GenericError,variant"`
}

type ApproveResult struct {
	Ok  *idl.Nat      `ic:"Ok,variant"`
	Err *ApproveError `ic:"Err,variant"`
}

type TextResult struct {
	Ok  *string `ic:"Ok,variant"`
	Err *string `ic:"Err,variant"`
}

type NatResult struct {
	Ok  *idl.Nat `ic:"Ok,variant"`
	Err *string  `ic:"Err,variant"`
}

// ContractPointer identifies a collection on a foreign chain.
type ContractPointer struct {
	Chain    string `ic:"chain"`
	Network  string `ic:"network"`
	Contract string `ic:"contract"`
}

type ApprovalAddressArgs struct {
	Pointer ContractPointer `ic:"pointer"`
	TokenID string          `ic:"token_id"`
	Owner   string          `ic:"owner"`
}

type RemoteArgs struct {
	Canister principal.Principal `ic:"canister"`
	Network  string              `ic:"network"`
}

type MintArgs struct {
	Flow     string              `ic:"flow"`
	Pointer  ContractPointer     `ic:"pointer"`
	TokenID  string              `ic:"token_id"`
	Owner    string              `ic:"owner"`
	Canister principal.Principal `ic:"canister"`
}

type MintStatus struct {
	Stage  string  `ic:"stage"`
	Done   bool    `ic:"done"`
	Failed bool    `ic:"failed"`
	Error  *string `ic:"error,omitempty"`
	TxID   *string `ic:"tx_id,omitempty"`
}

type CastArgs struct {
	Canister       principal.Principal `ic:"canister"`
	TokenID        idl.Nat             `ic:"token_id"`
	Receiver       string              `ic:"receiver"`
	Network        string              `ic:"network"`
	RemoteContract string              `ic:"remote_contract"`
}

type CastStatus struct {
	Stage     string  `ic:"stage"`
	Finalized bool    `ic:"finalized"`
	Failed    bool    `ic:"failed"`
	Error     *string `ic:"error,omitempty"`
	TxHash    *string `ic:"tx_hash,omitempty"`
}

type TransferArg struct {
	FromSubaccount *[]byte `ic:"from_subaccount,omitempty"`
	To             Account `ic:"to"`
	TokenID        idl.Nat `ic:"token_id"`
	Memo           *[]byte `ic:"memo,omitempty"`
	CreatedAtTime  *uint64 `ic:"created_at_time,omitempty"`
}

type TransferError struct {
	NonExistingTokenId *idl.Null `ic:"NonExistingTokenId,variant"`
	InvalidRecipient   *idl.Null `ic:"InvalidRecipient,variant"`
	Unauthorized       *idl.Null `ic:"Unauthorized,variant"`
	TooOld             *idl.Null `ic:"TooOld,variant"`
	CreatedInFuture    *struct {
		LedgerTime uint64 `ic:"ledger_time"`
	} `ic:"CreatedInFuture,variant"`
	Duplicate *struct {
		DuplicateOf idl.Nat `ic:"duplicate_of"`
	} `ic:"Duplicate,variant"`
	GenericError      *GenericError `ic:"GenericError,variant"`
	GenericBatchError *GenericError `ic:"GenericBatchError,variant"`
}

type TransferResult struct {
	Ok  *idl.Nat       `ic:"Ok,variant"`
	Err *TransferError `ic:"Err,variant"`
}
