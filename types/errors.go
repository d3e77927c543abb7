package types

import "errors"

// SendMsgErr is returned when the engine's internal input channel has been
// closed — fatal from the caller's point of view, but callers may retry a
// fresh Core.
var SendMsgErr = errors.New("bftcore: internal channel closed")

// MsgTypeErr is returned when a typed entrypoint (SendProposal, SendVote,
// ...) is handed a CoreInput of the wrong variant.
var MsgTypeErr = errors.New("bftcore: wrong message variant for this entrypoint")
