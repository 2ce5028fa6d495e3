package model

import "time"

// Team member roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User is a person known to the application.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Gender    string `json:"gender,omitempty"`
}

// TeamMember pairs a user with their role in a team.
type TeamMember struct {
	User User   `json:"user"`
	Role string `json:"role"`
}

// Team owns projects and has members.
type Team struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Icon         string       `json:"icon"`
	Members      []TeamMember `json:"members"`
	ProjectIDs   []string     `json:"projectIds"`
	JoinRequests []string     `json:"joinRequests"`
}

// Clone returns a deep copy of the team.
func (t Team) Clone() Team {
	out := t
	out.Members = append([]TeamMember(nil), t.Members...)
	out.ProjectIDs = cloneIDs(t.ProjectIDs)
	out.JoinRequests = cloneIDs(t.JoinRequests)
	return out
}

// HasMember reports whether userID belongs to the team.
func (t Team) HasMember(userID string) bool {
	for _, m := range t.Members {
		if m.User.ID == userID {
			return true
		}
	}
	return false
}

// DirectMessage is a one-to-one message between two users.
type DirectMessage struct {
	ID          string       `json:"id"`
	SenderID    string       `json:"senderId"`
	ReceiverID  string       `json:"receiverId"`
	Content     string       `json:"content"`
	Timestamp   time.Time    `json:"timestamp"`
	Attachments []Attachment `json:"attachments,omitempty"`
	ParentID    string       `json:"parentId,omitempty"`
}
