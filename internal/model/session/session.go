package session

import "time"

// Stage marks the position within the two-image collection workflow.
type Stage string

const (
	StageAwaitingPerson  Stage = "AWAITING_PERSON_IMAGE"
	StageAwaitingGarment Stage = "AWAITING_GARMENT_IMAGE"
)

// Session captures one user's in-progress try-on workflow. A session
// exists iff the workflow is in progress: completion deletes it, so
// there is no stored terminal stage.
type Session struct {
	UserID         string    `json:"userId"`
	Stage          Stage     `json:"stage"`
	PersonImageRef string    `json:"personImageRef,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}
