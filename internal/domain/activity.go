// Package domain defines the activity catalog served by the activities API.
package domain

// ActivityDetails is the record the API serves for a single activity.
type ActivityDetails struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// SpotsLeft reports the remaining capacity. It goes negative when the server
// admits more participants than MaxParticipants.
func (d ActivityDetails) SpotsLeft() int {
	return d.MaxParticipants - len(d.Participants)
}

// Activity pairs an activity name with its details.
type Activity struct {
	Name    string
	Details ActivityDetails
}
