package internalerr

import "errors"

// Kind groups errors by who has to act on them.
type Kind int

const (
	KindUnknown       Kind = iota
	KindConfiguration      // setup mistakes, fatal for the loaded set
	KindInput              // per-call conditions, store state unaffected
	KindData               // malformed profile data, aborts the whole load
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindInput:
		return "input"
	case KindData:
		return "data"
	default:
		return "unknown"
	}
}

// Error is a discriminated error. Sentinels below are compared by identity,
// so wrap them with fmt.Errorf("...: %w", ErrX) to add context.
type Error struct {
	Kind Kind
	Code string
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Sentinel errors for common cases
var (
	ErrNeedProfiles      = &Error{Kind: KindConfiguration, Code: "need_profiles", Msg: "need at least two language profiles"}
	ErrDuplicateLanguage = &Error{Kind: KindConfiguration, Code: "duplicate_language", Msg: "duplicate language profile"}
	ErrNoSuitableVersion = &Error{Kind: KindConfiguration, Code: "no_suitable_version", Msg: "no profile version fits the current time"}
	ErrFrozen            = &Error{Kind: KindConfiguration, Code: "frozen", Msg: "model is finalized"}
	ErrInvalidConfig     = &Error{Kind: KindConfiguration, Code: "invalid_config", Msg: "invalid configuration"}

	ErrNotEnoughText = &Error{Kind: KindInput, Code: "not_enough_text", Msg: "not enough text to determine the language"}
	ErrNoCandidate   = &Error{Kind: KindInput, Code: "no_candidate", Msg: "no language candidate above the confidence threshold"}

	ErrFormat = &Error{Kind: KindData, Code: "format", Msg: "profile format error"}
)

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
