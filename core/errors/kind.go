package errors

// Kind enumerates the internal transaction error taxonomy.
type Kind uint8

const (
	KindUnauthorized Kind = iota + 1
	KindAmountTooSmall
	KindFeeExceededLimit
	KindAlreadyActioned
	KindTransactionDoesNotExist
	KindBadFee
	KindInsufficientFunds
	KindTooOld
	KindCreatedInFuture
	KindDuplicate
	KindSelfTransfer
	KindAmountOverflow
	KindAccountNotFound
	KindGenericError
	KindClaimNotAllowed
	KindTemporaryUnavailable
)

// String returns a stable snake_case label suitable for metrics.
func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindAmountTooSmall:
		return "amount_too_small"
	case KindFeeExceededLimit:
		return "fee_exceeded_limit"
	case KindAlreadyActioned:
		return "already_actioned"
	case KindTransactionDoesNotExist:
		return "transaction_does_not_exist"
	case KindBadFee:
		return "bad_fee"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindTooOld:
		return "too_old"
	case KindCreatedInFuture:
		return "created_in_future"
	case KindDuplicate:
		return "duplicate"
	case KindSelfTransfer:
		return "self_transfer"
	case KindAmountOverflow:
		return "amount_overflow"
	case KindAccountNotFound:
		return "account_not_found"
	case KindGenericError:
		return "generic_error"
	case KindClaimNotAllowed:
		return "claim_not_allowed"
	case KindTemporaryUnavailable:
		return "temporary_unavailable"
	default:
		return "unknown"
	}
}
