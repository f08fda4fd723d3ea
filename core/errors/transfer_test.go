package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"tokenledger/core/types"
)

func TestTranslateFeeExceededLimit(t *testing.T) {
	out := Translate(FeeExceededLimit(types.NewAmount(5)))
	require.Equal(t, TransferBadFee, out.Kind)
	require.Equal(t, types.NewAmount(5), out.ExpectedFee)
}

func TestTranslateDuplicateWidens(t *testing.T) {
	out := Translate(Duplicate(42))
	require.Equal(t, TransferDuplicate, out.Kind)
	require.True(t, out.DuplicateOf.IsUint64())
	require.Equal(t, uint64(42), out.DuplicateOf.Uint64())
}

func TestTranslateClaimNotAllowedFallsBackToGeneric(t *testing.T) {
	out := Translate(ErrClaimNotAllowed)
	require.Equal(t, TransferGenericError, out.Kind)
	require.Equal(t, uint64(GenericErrorCode), out.ErrorCode.Uint64())
	require.Equal(t, "Claim not Allowed", out.Message)
}

func TestTranslateTable(t *testing.T) {
	cases := []struct {
		name string
		in   *TxError
		kind TransferKind
		msg  string
	}{
		{"bad fee", BadFee(types.NewAmount(9)), TransferBadFee, ""},
		{"insufficient", InsufficientFunds(types.NewAmount(3)), TransferInsufficientFunds, ""},
		{"too old", TooOld(1_000), TransferTooOld, ""},
		{"future", CreatedInFuture(77), TransferCreatedInFuture, ""},
		{"temporary", ErrTemporaryUnavailable, TransferTemporarilyUnavailable, ""},
		{"unauthorized", ErrUnauthorized, TransferGenericError, "Unauthorized"},
		{"amount too small", ErrAmountTooSmall, TransferGenericError, "Amount too small"},
		{"already actioned", ErrAlreadyActioned, TransferGenericError, "Already actioned"},
		{"missing tx", ErrTransactionDoesNotExist, TransferGenericError, "Transaction does not exist"},
		{"self transfer", ErrSelfTransfer, TransferGenericError, "Self transfer"},
		{"overflow", ErrAmountOverflow, TransferGenericError, "Amount overflow"},
		{"account", ErrAccountNotFound, TransferGenericError, "Account is not found"},
		{"generic", Generic("boom"), TransferGenericError, "boom"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Translate(tc.in)
			require.Equal(t, tc.kind, out.Kind)
			if tc.kind == TransferGenericError {
				require.Equal(t, tc.msg, out.Message)
				require.Equal(t, uint64(GenericErrorCode), out.ErrorCode.Uint64())
			}
		})
	}
}

func TestTranslatePreservesPayloads(t *testing.T) {
	require.Equal(t, types.NewAmount(9), Translate(BadFee(types.NewAmount(9))).ExpectedFee)
	require.Equal(t, types.NewAmount(3), Translate(InsufficientFunds(types.NewAmount(3))).Balance)
	require.Equal(t, types.Timestamp(77), Translate(CreatedInFuture(77)).LedgerTime)
}

func TestTranslateUnknownKindIsGeneric(t *testing.T) {
	out := Translate(&TxError{Kind: Kind(200)})
	require.Equal(t, TransferGenericError, out.Kind)
	require.Contains(t, out.Message, "unknown transaction error")
}

func TestToTransferErrorClassifiesPlainErrors(t *testing.T) {
	require.Nil(t, ToTransferError(nil))

	wrapped := fmt.Errorf("credit holder: %w", types.ErrAmountOverflow)
	out := ToTransferError(wrapped)
	require.Equal(t, TransferGenericError, out.Kind)
	require.Equal(t, "Amount overflow", out.Message)

	out = ToTransferError(stderrors.New("disk on fire"))
	require.Equal(t, TransferGenericError, out.Kind)
	require.Equal(t, "disk on fire", out.Message)

	out = ToTransferError(fmt.Errorf("debit: %w", InsufficientFunds(types.NewAmount(12))))
	require.Equal(t, TransferInsufficientFunds, out.Kind)
	require.Equal(t, types.NewAmount(12), out.Balance)
}

func TestFromErrorDoesNotShareSentinels(t *testing.T) {
	first := FromError(types.ErrAmountOverflow)
	require.NotSame(t, ErrAmountOverflow, first)
	require.ErrorIs(t, first, ErrAmountOverflow)

	first.Kind = KindGenericError
	first.Message = "mutated"
	require.Equal(t, KindAmountOverflow, ErrAmountOverflow.Kind)
	require.Empty(t, ErrAmountOverflow.Message)

	second := FromError(fmt.Errorf("wrap: %w", types.ErrAmountOverflow))
	require.Equal(t, KindAmountOverflow, second.Kind)
	require.NotSame(t, AmountOverflow(), AmountOverflow())
}

func TestTxErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrap: %w", InsufficientFunds(types.NewAmount(1)))
	require.ErrorIs(t, err, InsufficientFunds(types.Amount{}))
	require.NotErrorIs(t, err, ErrUnauthorized)
	require.ErrorIs(t, ErrAmountOverflow, types.ErrAmountOverflow)
}

func TestTxErrorRendering(t *testing.T) {
	require.Equal(t, "Fee exceeded limit 5", FeeExceededLimit(types.NewAmount(5)).Error())
	require.Equal(t, "Insufficient funds : 10", InsufficientFunds(types.NewAmount(10)).Error())
	require.Equal(t, "Transaction is too old : 60", TooOld(60).Error())
	require.Equal(t, "Transaction is created in the future 8", CreatedInFuture(8).Error())
	require.Equal(t, "Transaction is duplicate of 42", Duplicate(42).Error())
	require.Equal(t, "Temporary unavailable", ErrTemporaryUnavailable.Error())
}

func TestBadBurnIsExternalOnly(t *testing.T) {
	out := BadBurn(types.NewAmount(100))
	require.Equal(t, TransferBadBurn, out.Kind)
	require.Equal(t, "bad burn: minimum 100", out.Error())
}
