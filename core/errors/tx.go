package errors

import (
	stderrors "errors"
	"fmt"

	"tokenledger/core/types"
)

// TxError is the internal error raised by accounting operations. Only the
// fields relevant to Kind are populated.
type TxError struct {
	Kind               Kind
	FeeLimit           types.Amount
	ExpectedFee        types.Amount
	Balance            types.Amount
	AllowedWindowNanos uint64
	LedgerTime         types.Timestamp
	DuplicateOf        uint64
	Message            string
}

// Sentinels for the parameterless kinds. They are meant for errors.Is
// comparisons; code raising an error returns a fresh value instead.
var (
	ErrUnauthorized            = &TxError{Kind: KindUnauthorized}
	ErrAmountTooSmall          = &TxError{Kind: KindAmountTooSmall}
	ErrAlreadyActioned         = &TxError{Kind: KindAlreadyActioned}
	ErrTransactionDoesNotExist = &TxError{Kind: KindTransactionDoesNotExist}
	ErrSelfTransfer            = &TxError{Kind: KindSelfTransfer}
	ErrAmountOverflow          = &TxError{Kind: KindAmountOverflow}
	ErrAccountNotFound         = &TxError{Kind: KindAccountNotFound}
	ErrClaimNotAllowed         = &TxError{Kind: KindClaimNotAllowed}
	ErrTemporaryUnavailable    = &TxError{Kind: KindTemporaryUnavailable}
)

func FeeExceededLimit(limit types.Amount) *TxError {
	return &TxError{Kind: KindFeeExceededLimit, FeeLimit: limit}
}

func BadFee(expected types.Amount) *TxError {
	return &TxError{Kind: KindBadFee, ExpectedFee: expected}
}

func InsufficientFunds(balance types.Amount) *TxError {
	return &TxError{Kind: KindInsufficientFunds, Balance: balance}
}

func TooOld(allowedWindowNanos uint64) *TxError {
	return &TxError{Kind: KindTooOld, AllowedWindowNanos: allowedWindowNanos}
}

func CreatedInFuture(ledgerTime types.Timestamp) *TxError {
	return &TxError{Kind: KindCreatedInFuture, LedgerTime: ledgerTime}
}

func Duplicate(duplicateOf uint64) *TxError {
	return &TxError{Kind: KindDuplicate, DuplicateOf: duplicateOf}
}

// AmountOverflow returns a new AmountOverflow error.
func AmountOverflow() *TxError {
	return &TxError{Kind: KindAmountOverflow}
}

func Generic(message string) *TxError {
	return &TxError{Kind: KindGenericError, Message: message}
}

// Error renders the human-readable description of the error. The
// GenericError translation exposes this text to external callers.
func (e *TxError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case KindUnauthorized:
		return "Unauthorized"
	case KindAmountTooSmall:
		return "Amount too small"
	case KindFeeExceededLimit:
		return fmt.Sprintf("Fee exceeded limit %s", e.FeeLimit)
	case KindAlreadyActioned:
		return "Already actioned"
	case KindTransactionDoesNotExist:
		return "Transaction does not exist"
	case KindBadFee:
		return fmt.Sprintf("Bad fee %s", e.ExpectedFee)
	case KindInsufficientFunds:
		return fmt.Sprintf("Insufficient funds : %s", e.Balance)
	case KindTooOld:
		return fmt.Sprintf("Transaction is too old : %d", e.AllowedWindowNanos)
	case KindCreatedInFuture:
		return fmt.Sprintf("Transaction is created in the future %d", e.LedgerTime)
	case KindDuplicate:
		return fmt.Sprintf("Transaction is duplicate of %d", e.DuplicateOf)
	case KindSelfTransfer:
		return "Self transfer"
	case KindAmountOverflow:
		return "Amount overflow"
	case KindAccountNotFound:
		return "Account is not found"
	case KindGenericError:
		return e.Message
	case KindClaimNotAllowed:
		return "Claim not Allowed"
	case KindTemporaryUnavailable:
		return "Temporary unavailable"
	default:
		return fmt.Sprintf("unknown transaction error (kind %d)", uint8(e.Kind))
	}
}

// Is matches any TxError of the same kind so that the package sentinels can
// be used with errors.Is regardless of payload. An AmountOverflow error also
// matches the arithmetic sentinel from the types package.
func (e *TxError) Is(target error) bool {
	if e == nil {
		return false
	}
	if e.Kind == KindAmountOverflow && target == types.ErrAmountOverflow {
		return true
	}
	other, ok := target.(*TxError)
	if !ok || other == nil {
		return false
	}
	return other.Kind == e.Kind
}

// FromError classifies an arbitrary error into the internal taxonomy. Errors
// that already carry a TxError are returned as-is; arithmetic overflow maps
// to AmountOverflow; anything else becomes a GenericError carrying the
// original message.
func FromError(err error) *TxError {
	if err == nil {
		return nil
	}
	var txErr *TxError
	if stderrors.As(err, &txErr) && txErr != nil {
		return txErr
	}
	if stderrors.Is(err, types.ErrAmountOverflow) {
		return AmountOverflow()
	}
	return Generic(err.Error())
}
