package entities

// Room is a shared rolling room on the rolling service
type Room struct {
	Slug         string         `json:"slug"`
	Name         string         `json:"name,omitempty"`
	Participants []*Participant `json:"participants,omitempty"`
}

// ParticipantForUser returns the participant record belonging to userUUID
func (r *Room) ParticipantForUser(userUUID string) *Participant {
	if r == nil || userUUID == "" {
		return nil
	}
	for _, p := range r.Participants {
		if p != nil && p.UserUUID == userUUID {
			return p
		}
	}
	return nil
}

// Participant is a user's membership in a room
type Participant struct {
	ID       string `json:"id"`
	UserUUID string `json:"userUuid"`
	Username string `json:"username"`
}

// User is the account the API key belongs to
type User struct {
	UUID     string `json:"uuid"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
}
