package server

import "net/http"

// RejectionKind classifies why an action was refused. Rejections never
// mutate room state and are reported only to the requesting connection.
type RejectionKind string

const (
	KindNotAuthorized   RejectionKind = "NOT_AUTHORIZED"
	KindInvalidState    RejectionKind = "INVALID_STATE"
	KindDuplicateAction RejectionKind = "DUPLICATE_ACTION"
	KindNotFound        RejectionKind = "NOT_FOUND"
	// KindTimeout marks expiry-driven transitions in the event journal.
	// Timers auto-advance the game; clients are never sent this kind as
	// a request failure.
	KindTimeout RejectionKind = "TIMEOUT"
)

type Rejection struct {
	Kind    RejectionKind
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

func (r *Rejection) Status() int {
	switch r.Kind {
	case KindNotAuthorized:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusConflict
	}
}

func rejectNotAuthorized(message string) *Rejection {
	return &Rejection{Kind: KindNotAuthorized, Message: message}
}

func rejectInvalidState(message string) *Rejection {
	return &Rejection{Kind: KindInvalidState, Message: message}
}

func rejectDuplicate(message string) *Rejection {
	return &Rejection{Kind: KindDuplicateAction, Message: message}
}

func rejectNotFound(message string) *Rejection {
	return &Rejection{Kind: KindNotFound, Message: message}
}

var errRoomNotFound = rejectNotFound("room not found")
