package models

import "time"

// ChangeAction is the kind of mutation recorded in a change entry
type ChangeAction string

const (
	ActionCreated  ChangeAction = "created"
	ActionUpdated  ChangeAction = "updated"
	ActionImported ChangeAction = "imported"
)

// FieldChange is one field's before/after pair inside a diff
type FieldChange struct {
	From interface{} `json:"from"`
	To   interface{} `json:"to"`
}

// ChangeDiff is the payload of a change entry
type ChangeDiff struct {
	Action  ChangeAction           `json:"action"`
	Changes map[string]FieldChange `json:"changes,omitempty"`
}

// ChangeEntry is one immutable history record for a buyer lead.
// The console only renders these; they are written server-side.
type ChangeEntry struct {
	ID        string     `json:"id"`
	BuyerID   string     `json:"buyerId"`
	ChangedBy string     `json:"changedBy"`
	ChangedAt time.Time  `json:"changedAt"`
	Diff      ChangeDiff `json:"diff"`
}
