package state

import "github.com/10jschen/matterhorn/internal/chat"

// User is a known account: immutable identity fields plus mutable status.
// Users are never removed from the state, only flagged deleted.
type User struct {
	ID        chat.UserID
	Name      string
	Nickname  string
	FirstName string
	LastName  string
	Status    chat.UserStatus
	Deleted   bool
}

func newUser(u chat.User) *User {
	status := u.Status
	if status == "" {
		status = chat.StatusOffline
	}
	return &User{
		ID:        u.ID,
		Name:      u.Username,
		Nickname:  u.Nickname,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Status:    status,
		Deleted:   u.Deleted,
	}
}

// update refreshes profile fields in place, preserving the current status
// when the server record carries none.
func (u *User) update(rec chat.User) {
	u.Name = rec.Username
	u.Nickname = rec.Nickname
	u.FirstName = rec.FirstName
	u.LastName = rec.LastName
	u.Deleted = rec.Deleted
	if rec.Status != "" {
		u.Status = rec.Status
	}
}
