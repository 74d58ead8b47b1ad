package server

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	nativecommon "vusdpool/native/common"
	"vusdpool/native/pool"
	"vusdpool/services/access"
	"vusdpool/services/payments"
	"vusdpool/services/settlement"
)

// toStatus maps domain errors onto gRPC codes. Messages carry the stable
// reason code from pool.Kind so clients can branch without parsing text.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, pool.ErrInvalidAmount),
		errors.Is(err, pool.ErrInvalidActor),
		errors.Is(err, pool.ErrSelfLiquidation),
		errors.Is(err, pool.ErrInvalidParams),
		errors.Is(err, access.ErrEventRequired),
		errors.Is(err, access.ErrActorRequired),
		errors.Is(err, access.ErrUnknownAction),
		errors.Is(err, payments.ErrUnknownEvent):
		return status.Error(codes.InvalidArgument, reason(err))
	case errors.Is(err, pool.ErrActorFrozen),
		errors.Is(err, pool.ErrNotAllowListed):
		return status.Error(codes.PermissionDenied, reason(err))
	case errors.Is(err, nativecommon.ErrModulePaused):
		return status.Error(codes.Unavailable, "paused")
	case errors.Is(err, pool.ErrSettlementFailed):
		return status.Error(codes.Aborted, "settlement_failed")
	case errors.Is(err, pool.ErrJournalFailed):
		return status.Error(codes.Unavailable, "journal_failed")
	case errors.Is(err, payments.ErrIntentNotFound),
		errors.Is(err, settlement.ErrRecordNotFound):
		return status.Error(codes.NotFound, "not_found")
	case errors.Is(err, payments.ErrIntentNotSucceeded),
		errors.Is(err, payments.ErrIntentConsumed),
		errors.Is(err, payments.ErrIntentMismatch),
		errors.Is(err, payments.ErrInvalidTransition):
		return status.Error(codes.FailedPrecondition, "payment_"+paymentReason(err))
	case errors.Is(err, pool.ErrInsufficientBalance),
		errors.Is(err, pool.ErrInsufficientPoolLiquidity),
		errors.Is(err, pool.ErrInsufficientCollateral),
		errors.Is(err, pool.ErrWouldBreachSolvency),
		errors.Is(err, pool.ErrExcessRepayment),
		errors.Is(err, pool.ErrNotUndercollateralized),
		errors.Is(err, pool.ErrInsufficientLiquidatorBalance),
		errors.Is(err, pool.ErrInsufficientCollateralBalance):
		return status.Error(codes.FailedPrecondition, reason(err))
	default:
		return status.Error(codes.Internal, "internal")
	}
}

func reason(err error) string {
	if kind := pool.Kind(err); kind != "internal" {
		return kind
	}
	switch {
	case errors.Is(err, access.ErrEventRequired):
		return "event_required"
	case errors.Is(err, access.ErrActorRequired):
		return "actor_required"
	case errors.Is(err, access.ErrUnknownAction):
		return "unknown_action"
	case errors.Is(err, payments.ErrUnknownEvent):
		return "unknown_payment_event"
	default:
		return "invalid_argument"
	}
}

func paymentReason(err error) string {
	switch {
	case errors.Is(err, payments.ErrIntentNotSucceeded):
		return "not_succeeded"
	case errors.Is(err, payments.ErrIntentConsumed):
		return "consumed"
	case errors.Is(err, payments.ErrIntentMismatch):
		return "mismatch"
	default:
		return "invalid_transition"
	}
}
