package domain

import "github.com/google/uuid"

// ChangeKind classifies the outcome of a promotion evaluation.
type ChangeKind string

const (
	ChangeNone      ChangeKind = "NONE"
	ChangePromotion ChangeKind = "PROMOTION"
	ChangeDemotion  ChangeKind = "DEMOTION"
)

// PendingNotification is a rank-change message waiting for its player to
// log back in. At most one is kept per identity.
type PendingNotification struct {
	Identity uuid.UUID
	Message  string
	Kind     ChangeKind
}
