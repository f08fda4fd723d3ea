package errors

import (
	"fmt"

	"github.com/holiman/uint256"

	"tokenledger/core/types"
)

// GenericErrorCode is the error code attached to every internal error that
// has no dedicated counterpart in the transfer contract.
const GenericErrorCode = 500

// TransferKind enumerates the standardized external transfer errors.
type TransferKind uint8

const (
	TransferBadFee TransferKind = iota + 1
	TransferBadBurn
	TransferInsufficientFunds
	TransferTooOld
	TransferCreatedInFuture
	TransferDuplicate
	TransferTemporarilyUnavailable
	TransferGenericError
)

func (k TransferKind) String() string {
	switch k {
	case TransferBadFee:
		return "BadFee"
	case TransferBadBurn:
		return "BadBurn"
	case TransferInsufficientFunds:
		return "InsufficientFunds"
	case TransferTooOld:
		return "TooOld"
	case TransferCreatedInFuture:
		return "CreatedInFuture"
	case TransferDuplicate:
		return "Duplicate"
	case TransferTemporarilyUnavailable:
		return "TemporarilyUnavailable"
	case TransferGenericError:
		return "GenericError"
	default:
		return "Unknown"
	}
}

// TransferError is the error contract exposed to external callers.
type TransferError struct {
	Kind          TransferKind
	ExpectedFee   types.Amount
	MinBurnAmount types.Amount
	Balance       types.Amount
	LedgerTime    types.Timestamp
	DuplicateOf   uint256.Int
	ErrorCode     uint256.Int
	Message       string
}

// BadBurn builds the external error for burns below the minimum amount. No
// internal kind maps onto it; burn entry points raise it directly.
func BadBurn(minBurnAmount types.Amount) *TransferError {
	return &TransferError{Kind: TransferBadBurn, MinBurnAmount: minBurnAmount}
}

func (e *TransferError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case TransferBadFee:
		return fmt.Sprintf("bad fee: expected %s", e.ExpectedFee)
	case TransferBadBurn:
		return fmt.Sprintf("bad burn: minimum %s", e.MinBurnAmount)
	case TransferInsufficientFunds:
		return fmt.Sprintf("insufficient funds: balance %s", e.Balance)
	case TransferTooOld:
		return "transaction too old"
	case TransferCreatedInFuture:
		return fmt.Sprintf("transaction created in the future: ledger time %d", e.LedgerTime)
	case TransferDuplicate:
		return fmt.Sprintf("duplicate of %s", e.DuplicateOf.Dec())
	case TransferTemporarilyUnavailable:
		return "temporarily unavailable"
	case TransferGenericError:
		return fmt.Sprintf("error %s: %s", e.ErrorCode.Dec(), e.Message)
	default:
		return fmt.Sprintf("unknown transfer error (kind %d)", uint8(e.Kind))
	}
}

// Translate narrows an internal error to the external transfer contract.
// The default arm is the catch-all for every kind without a dedicated
// mapping, including kinds added in the future.
func Translate(err *TxError) *TransferError {
	if err == nil {
		return nil
	}
	switch err.Kind {
	case KindFeeExceededLimit:
		return &TransferError{Kind: TransferBadFee, ExpectedFee: err.FeeLimit}
	case KindBadFee:
		return &TransferError{Kind: TransferBadFee, ExpectedFee: err.ExpectedFee}
	case KindInsufficientFunds:
		return &TransferError{Kind: TransferInsufficientFunds, Balance: err.Balance}
	case KindTooOld:
		return &TransferError{Kind: TransferTooOld}
	case KindCreatedInFuture:
		return &TransferError{Kind: TransferCreatedInFuture, LedgerTime: err.LedgerTime}
	case KindDuplicate:
		out := &TransferError{Kind: TransferDuplicate}
		out.DuplicateOf.SetUint64(err.DuplicateOf)
		return out
	case KindTemporaryUnavailable:
		return &TransferError{Kind: TransferTemporarilyUnavailable}
	default:
		out := &TransferError{Kind: TransferGenericError, Message: err.Error()}
		out.ErrorCode.SetUint64(GenericErrorCode)
		return out
	}
}

// ToTransferError classifies err with FromError and translates the result.
func ToTransferError(err error) *TransferError {
	return Translate(FromError(err))
}
