package contract

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/huangsam/provstats/schema"
)

// ErrorKind classifies every failure a query can end in.
type ErrorKind string

// All error kinds surfaced to callers.
const (
	InvalidArgument    ErrorKind = "InvalidArgument"
	HierarchyNotFound  ErrorKind = "HierarchyNotFound"
	AmbiguousHierarchy ErrorKind = "AmbiguousHierarchy"
	UnprocessableQuery ErrorKind = "UnprocessableQuery"
	UpstreamFailure    ErrorKind = "UpstreamFailure"
)

// Fixed messages shared by the guard and the resolver.
const (
	MsgTooManyRows      = "The requested statistics exceed the maximum allowed size. Please narrow down your filter parameters."
	MsgNotHomogeneous   = "The requested statistics contain multiple companies or families. Please narrow down your filter parameters."
	MsgDateFormatSuffix = "Expected format: 'yyyy-MM-dd' (e.g., '2025-10-20')"
)

// QueryError is the typed failure of a query. Candidates is only populated
// for AmbiguousHierarchy.
type QueryError struct {
	Kind       ErrorKind
	Msg        string
	Candidates []schema.HierarchyItem
	cause      error
}

func (e *QueryError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

// Unwrap exposes the upstream cause, if any.
func (e *QueryError) Unwrap() error {
	return e.cause
}

// NewInvalidArgument builds an InvalidArgument error.
func NewInvalidArgument(format string, args ...any) error {
	return errors.WithStack(&QueryError{Kind: InvalidArgument, Msg: fmt.Sprintf(format, args...)})
}

// NewUnprocessable builds an UnprocessableQuery error with the given message.
func NewUnprocessable(msg string) error {
	return errors.WithStack(&QueryError{Kind: UnprocessableQuery, Msg: msg})
}

// NewHierarchyNotFound builds a HierarchyNotFound error for product.
func NewHierarchyNotFound(product string) error {
	return errors.WithStack(&QueryError{
		Kind: HierarchyNotFound,
		Msg:  fmt.Sprintf("No valid hierarchy found for product: '%s'", product),
	})
}

// NewAmbiguousHierarchy builds an AmbiguousHierarchy error listing candidates.
func NewAmbiguousHierarchy(product string, candidates []schema.HierarchyItem) error {
	listing, err := json.Marshal(candidates)
	if err != nil {
		listing = []byte(fmt.Sprint(candidates))
	}
	qe := &QueryError{
		Kind: AmbiguousHierarchy,
		Msg: fmt.Sprintf("Ambiguous product hierarchy for product value: '%s'. Please specify both family and company parameters to disambiguate from this list: %s",
			product, listing),
		Candidates: candidates,
	}
	return errors.WithHint(errors.WithStack(qe), "resupply company and family from one of the listed candidates")
}

// WrapUpstream marks err as a collaborator failure. A nil err stays nil.
func WrapUpstream(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return errors.WithStack(&QueryError{Kind: UpstreamFailure, Msg: msg, cause: err})
}

// AsQueryError extracts the QueryError in err's chain.
func AsQueryError(err error) (*QueryError, bool) {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}

// KindOf returns the kind of err. Errors that are not QueryErrors are upstream failures.
func KindOf(err error) ErrorKind {
	if qe, ok := AsQueryError(err); ok {
		return qe.Kind
	}
	return UpstreamFailure
}

// Describe renders err for a caller: kind, message and any hints.
func Describe(err error) string {
	kind := KindOf(err)
	msg := err.Error()
	if qe, ok := AsQueryError(err); ok {
		msg = qe.Error()
	}
	out := fmt.Sprintf("%s: %s", kind, msg)
	if hint := errors.FlattenHints(err); hint != "" {
		out += "\nHINT: " + hint
	}
	return out
}
