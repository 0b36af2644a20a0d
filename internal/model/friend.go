package model

import "time"

// RequestStatus is the state of a friend request
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestDeclined RequestStatus = "declined"
	RequestRemoved  RequestStatus = "removed"
)

// FriendRequest is one directed relationship record. At most one active
// (pending or accepted) record exists per ordered (requester, target) pair;
// declined and removed records are kept as history. Two users are friends
// iff an accepted record exists in either direction.
type FriendRequest struct {
	Requester   string        `json:"requester"`
	Target      string        `json:"target"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	RespondedAt *time.Time    `json:"respondedAt"`
	Responder   string        `json:"responder,omitempty"`
}

// Active reports whether the record currently binds the pair
func (r *FriendRequest) Active() bool {
	return r.Status == RequestPending || r.Status == RequestAccepted
}

// PendingRequestView is an outgoing or incoming pending request as listed
// to a user
type PendingRequestView struct {
	From      string        `json:"from,omitempty"`
	To        string        `json:"to,omitempty"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

// FriendsOverview groups a user's relationship state: pending requests in
// both directions plus the deduplicated accepted friend list
type FriendsOverview struct {
	Outgoing []PendingRequestView `json:"outgoing"`
	Incoming []PendingRequestView `json:"incoming"`
	Friends  []string             `json:"friends"`
}
