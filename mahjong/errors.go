package mahjong

import "mahjongcore/internal/mlog"

// ErrorKind classifies a RuleError per the error-handling contract: caller
// mistakes never mutate state, evaluator misses are recovered internally,
// wall exhaustion triggers rollback or manifests as an exhaustive draw.
type ErrorKind int

const (
	ErrInvalidAction ErrorKind = iota
	ErrNoValidTiles
	ErrNotWinning
	ErrNotCorrect
	ErrNoYaku
	ErrAppError
)

func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidAction:
		return "InvalidAction"
	case ErrNoValidTiles:
		return "NoValidTiles"
	case ErrNotWinning:
		return "NotWinning"
	case ErrNotCorrect:
		return "NotCorrect"
	case ErrNoYaku:
		return "NoYaku"
	case ErrAppError:
		return "AppError"
	default:
		return "Unknown"
	}
}

// RuleError is the error type the engine's driver actions return (the
// tile-string parsers return plain errors). Validators run to completion
// before any mutation, so a RuleError never leaves state partially applied.
type RuleError struct {
	Kind ErrorKind
	Msg  string
}

func (e *RuleError) Error() string { return e.Kind.String() + ": " + e.Msg }

// invalidAction builds the rejection every caller-mistake validator in the
// engine returns, warning on it the way a rejected action is logged
// everywhere else in the stack.
func invalidAction(msg string) *RuleError {
	mlog.Warn("rejected action: %s", msg)
	return &RuleError{Kind: ErrInvalidAction, Msg: msg}
}

// IsKind reports whether err is a *RuleError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	re, ok := err.(*RuleError)
	return ok && re.Kind == kind
}
