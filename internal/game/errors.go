package game

// Kind classifies a rejected operation. Every kind is recoverable: the
// caller retries with corrected input and no state was changed.
type Kind int

const (
	KindNotAllowed Kind = iota + 1
	KindInvalidReference
	KindInvalidState
	KindInvalidAmount
	KindExceedsLimit
	KindAlreadyDone
)

func (k Kind) String() string {
	switch k {
	case KindNotAllowed:
		return "not_allowed"
	case KindInvalidReference:
		return "invalid_reference"
	case KindInvalidState:
		return "invalid_state"
	case KindInvalidAmount:
		return "invalid_amount"
	case KindExceedsLimit:
		return "exceeds_limit"
	case KindAlreadyDone:
		return "already_done"
	default:
		return "unknown"
	}
}

// Error is a validation failure returned by a Machine operation.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

var (
	ErrNotSelector        = &Error{KindNotAllowed, "not allowed: team is not the current selector"}
	ErrInvalidTopic       = &Error{KindInvalidReference, "invalid topic"}
	ErrTopicTaken         = &Error{KindInvalidState, "topic already taken"}
	ErrAlreadySelected    = &Error{KindNotAllowed, "team already selected a topic"}
	ErrInvalidQuestion    = &Error{KindInvalidReference, "invalid question id"}
	ErrTopicMismatch      = &Error{KindInvalidReference, "question does not match current topic"}
	ErrBuzzClosed         = &Error{KindNotAllowed, "buzz not allowed"}
	ErrSelectorCannotBuzz = &Error{KindNotAllowed, "topic selector cannot buzz"}
	ErrAlreadyBuzzed      = &Error{KindNotAllowed, "previous winner cannot buzz"}
	ErrUnknownTeam        = &Error{KindInvalidReference, "unknown team"}
	ErrHermesUsed         = &Error{KindAlreadyDone, "hermes already used"}
	ErrNoTopicSet         = &Error{KindInvalidState, "topic not set"}
	ErrTopicNotRevealed   = &Error{KindInvalidState, "topic not revealed"}
	ErrBettingClosed      = &Error{KindInvalidState, "betting is closed"}
	ErrInvalidAmount      = &Error{KindInvalidAmount, "invalid amount"}
	ErrCannotDecrease     = &Error{KindInvalidAmount, "cannot decrease bet after question reveal"}
	ErrExceedsLimit       = &Error{KindExceedsLimit, "bet exceeds allowed maximum or team score"}
	ErrWindowClosed       = &Error{KindInvalidState, "answer window is closed"}
	ErrInvalidAnswer      = &Error{KindInvalidReference, "invalid answer"}
	ErrAnswerFinal        = &Error{KindInvalidState, "answer already revealed"}
	ErrNoQuestion         = &Error{KindInvalidState, "no current question"}
	ErrNoCorrectAnswer    = &Error{KindAlreadyDone, "correct answer not set"}
	ErrInvalidRound       = &Error{KindInvalidReference, "invalid round"}
)
