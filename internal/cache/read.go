package cache

import (
	"sort"

	"github.com/nhle/boardsync/internal/model"
)

// Project returns a copy of the project with the given id.
func (s *Store) Project(id string) (model.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return model.Project{}, false
	}
	return p.Clone(), true
}

// Projects returns copies of every project sorted by name, then id.
func (s *Store) Projects() []model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Folder returns a copy of the folder with the given id.
func (s *Store) Folder(id string) (model.Folder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.folders[id]
	if !ok {
		return model.Folder{}, false
	}
	return f.Clone(), true
}

// Folders returns a copy of the folder map.
func (s *Store) Folders() map[string]model.Folder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMap(s.folders, model.Folder.Clone)
}

// Team returns a copy of the team with the given id.
func (s *Store) Team(id string) (model.Team, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teams[id]
	if !ok {
		return model.Team{}, false
	}
	return t.Clone(), true
}

// Teams returns a copy of the team map.
func (s *Store) Teams() map[string]model.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMap(s.teams, model.Team.Clone)
}

// User returns the user with the given id.
func (s *Store) User(id string) (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

// Users returns a copy of the user map.
func (s *Store) Users() map[string]model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMap(s.users, func(u model.User) model.User { return u })
}

// DirectMessages returns every direct message ordered by timestamp.
func (s *Store) DirectMessages() []model.DirectMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.DirectMessage, 0, len(s.directMessages))
	for _, dm := range s.directMessages {
		out = append(out, dm)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Notifications returns every notification, newest first.
func (s *Store) Notifications() []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// UnreadCount returns the number of unread notifications.
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, v := range s.notifications {
		if !v.Read {
			n++
		}
	}
	return n
}

// Snapshot returns a deep copy of the whole dataset.
func (s *Store) Snapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := model.Snapshot{
		Users:          cloneMap(s.users, func(u model.User) model.User { return u }),
		Teams:          cloneMap(s.teams, model.Team.Clone),
		Projects:       cloneMap(s.projects, model.Project.Clone),
		DirectMessages: cloneMap(s.directMessages, func(d model.DirectMessage) model.DirectMessage { return d }),
		Folders:        cloneMap(s.folders, model.Folder.Clone),
	}
	for _, n := range s.notifications {
		snap.Notifications = append(snap.Notifications, n)
	}
	sort.Slice(snap.Notifications, func(i, j int) bool {
		return snap.Notifications[i].ID < snap.Notifications[j].ID
	})
	return snap
}
