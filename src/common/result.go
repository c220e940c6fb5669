package common

import (
	"fmt"
	"net/http"
)

type ResultKind int

const (
	// Applied means the event was reconciled and state was mutated.
	Applied ResultKind = iota
	// Skipped means the event was received but intentionally not
	// processed (unhandled type, duplicate delivery, benign race).
	Skipped
	// Failed means the event could not be applied.
	Failed
)

type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureNotFound signals a missing entity the event depends on;
	// nothing more can be done with this delivery.
	FailureNotFound
	FailureInternal
)

// Result is the outcome of a webhook handler. Handlers return it
// normally; only the ingress layer turns it into an HTTP status.
type Result struct {
	Kind    ResultKind
	Failure FailureKind
	Message string
	Err     error
}

func Appliedf(format string, args ...any) Result {
	return Result{Kind: Applied, Message: fmt.Sprintf(format, args...)}
}

func Skippedf(format string, args ...any) Result {
	return Result{Kind: Skipped, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) Result {
	return Result{Kind: Failed, Failure: FailureNotFound, Message: fmt.Sprintf(format, args...)}
}

func Internal(err error) Result {
	return Result{Kind: Failed, Failure: FailureInternal, Message: err.Error(), Err: err}
}

// StatusCode maps a Result onto the HTTP statuses the payment provider
// expects: 2xx stops redelivery, 204 tells the caller nothing more can
// be done, 5xx triggers the provider's retry policy.
func (r Result) StatusCode() int {
	switch r.Kind {
	case Applied:
		return http.StatusOK
	case Skipped:
		return http.StatusAccepted
	default:
		if r.Failure == FailureNotFound {
			return http.StatusNoContent
		}
		return http.StatusInternalServerError
	}
}
