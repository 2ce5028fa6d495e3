package model

// Snapshot is the full dataset returned by the refresh endpoint.
// Folders is nil when the server omits it.
type Snapshot struct {
	Users          map[string]User          `json:"users"`
	Teams          map[string]Team          `json:"teams"`
	Projects       map[string]Project       `json:"projects"`
	DirectMessages map[string]DirectMessage `json:"directMessages"`
	Notifications  []Notification           `json:"notifications"`
	Folders        map[string]Folder        `json:"folders,omitempty"`
}

// EntityCount returns the number of top-level entities in the snapshot.
func (s Snapshot) EntityCount() int {
	return len(s.Users) + len(s.Teams) + len(s.Projects) +
		len(s.DirectMessages) + len(s.Notifications) + len(s.Folders)
}
