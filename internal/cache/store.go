package cache

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nhle/boardsync/internal/logging"
	"github.com/nhle/boardsync/internal/model"
)

// ErrInvariant is returned when a patch would leave a collection violating
// its ordering or membership invariants. The store is left unchanged.
var ErrInvariant = errors.New("cache invariant violated")

// Store is the normalized in-memory cache of every collaborative entity.
// It is the only authoritative copy: readers receive deep copies, and
// every write replaces whole entities by id.
type Store struct {
	mu             sync.RWMutex
	projects       map[string]model.Project
	folders        map[string]model.Folder
	teams          map[string]model.Team
	users          map[string]model.User
	directMessages map[string]model.DirectMessage
	notifications  map[string]model.Notification
	version        uint64
	changed        chan struct{}
}

// New creates an empty store.
func New() *Store {
	s := &Store{changed: make(chan struct{}, 1)}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.projects = map[string]model.Project{}
	s.folders = map[string]model.Folder{}
	s.teams = map[string]model.Team{}
	s.users = map[string]model.User{}
	s.directMessages = map[string]model.DirectMessage{}
	s.notifications = map[string]model.Notification{}
}

// Subscribe returns a channel that receives a value after writes. Signals
// are coalesced: a reader that falls behind sees one pending signal.
func (s *Store) Subscribe() <-chan struct{} {
	return s.changed
}

// Version returns a counter incremented on every write.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// bump must be called with the write lock held.
func (s *Store) bump() {
	s.version++
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// ApplyPatch validates p against the store's invariants and applies it.
// Every project in the patch must satisfy model.CheckProject and the
// resulting folder set must satisfy model.CheckFolders.
func (s *Store) ApplyPatch(p Patch) error {
	for id, pr := range p.Projects {
		if pr.ID != id {
			return fmt.Errorf("%w: project keyed %s has id %s", ErrInvariant, id, pr.ID)
		}
		if err := model.CheckProject(pr); err != nil {
			return fmt.Errorf("%w: %v", ErrInvariant, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(p.Folders) > 0 || hasKind(p.Deleted, KindFolder) {
		if err := model.CheckFolders(s.foldersAfter(p)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvariant, err)
		}
	}

	s.apply(p)
	s.bump()
	return nil
}

// Restore applies p wholesale like ApplyPatch, but where the restored
// folders conflict with folders changed since, the restored membership
// wins and the project is removed from the other folders. It is used to
// roll back a failed mutation, whose captured state was valid when taken.
func (s *Store) Restore(p Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.apply(p)
	if len(p.Folders) > 0 {
		for fid, f := range p.Folders {
			for _, projectID := range f.ProjectIDs {
				s.removeFromOtherFolders(projectID, fid)
			}
		}
	}
	s.bump()
}

// apply must be called with the write lock held.
func (s *Store) apply(p Patch) {
	for k := range p.Deleted {
		switch k.Kind {
		case KindProject:
			delete(s.projects, k.ID)
		case KindFolder:
			delete(s.folders, k.ID)
		case KindTeam:
			delete(s.teams, k.ID)
		case KindUser:
			delete(s.users, k.ID)
		case KindDirectMessage:
			delete(s.directMessages, k.ID)
		case KindNotification:
			delete(s.notifications, k.ID)
		}
	}
	for id, v := range p.Projects {
		s.projects[id] = v.Clone()
	}
	for id, v := range p.Folders {
		s.folders[id] = v.Clone()
	}
	for id, v := range p.Teams {
		s.teams[id] = v.Clone()
	}
	for id, v := range p.Users {
		s.users[id] = v
	}
	for id, v := range p.DirectMessages {
		s.directMessages[id] = v
	}
	for id, v := range p.Notifications {
		s.notifications[id] = v
	}
}

func (s *Store) foldersAfter(p Patch) map[string]model.Folder {
	out := make(map[string]model.Folder, len(s.folders)+len(p.Folders))
	for id, f := range s.folders {
		if p.Deleted.Has(FolderKey(id)) {
			continue
		}
		out[id] = f
	}
	for id, f := range p.Folders {
		out[id] = f
	}
	return out
}

func (s *Store) removeFromOtherFolders(projectID, keepFolderID string) {
	for id, f := range s.folders {
		if id == keepFolderID {
			continue
		}
		if idx := model.IndexOf(f.ProjectIDs, projectID); idx >= 0 {
			f = f.Clone()
			f.ProjectIDs = append(f.ProjectIDs[:idx], f.ProjectIDs[idx+1:]...)
			s.folders[id] = f
		}
	}
}

// ReplaceResult describes what ReplaceAll did with a snapshot.
type ReplaceResult struct {
	// Kept lists the keys whose local value survived the replacement.
	Kept []Key
	// Repaired lists project ids the snapshot sent in an invalid shape.
	Repaired []string
}

// ReplaceAll swaps the whole dataset for snap, except that entities named
// in keep retain their current local value (or stay absent when absent
// locally). When snap carries no folders the local folders are kept.
func (s *Store) ReplaceAll(snap model.Snapshot, keep KeySet) ReplaceResult {
	return s.ReplaceAllFunc(snap, func() KeySet { return keep })
}

// ReplaceAllFunc is ReplaceAll with the keep set computed while the write
// lock is held, so a patch cannot slip in between computing it and
// replacing.
func (s *Store) ReplaceAllFunc(snap model.Snapshot, keepFn func() KeySet) ReplaceResult {
	var res ReplaceResult

	projects := make(map[string]model.Project, len(snap.Projects))
	for id, pr := range snap.Projects {
		pr = pr.Clone()
		pr.ID = id
		if model.NormalizeProject(&pr) {
			res.Repaired = append(res.Repaired, id)
		}
		projects[id] = pr
	}
	sort.Strings(res.Repaired)

	s.mu.Lock()
	defer s.mu.Unlock()

	keep := keepFn()
	teams := cloneMap(snap.Teams, model.Team.Clone)
	users := cloneMap(snap.Users, func(u model.User) model.User { return u })
	dms := cloneMap(snap.DirectMessages, func(d model.DirectMessage) model.DirectMessage { return d })
	notifications := make(map[string]model.Notification, len(snap.Notifications))
	for _, n := range snap.Notifications {
		notifications[n.ID] = n
	}
	folders := s.folders
	if snap.Folders != nil {
		folders = cloneMap(snap.Folders, model.Folder.Clone)
	}

	for k := range keep {
		switch k.Kind {
		case KindProject:
			keepLocal(projects, s.projects, k.ID)
		case KindFolder:
			keepLocal(folders, s.folders, k.ID)
		case KindTeam:
			keepLocal(teams, s.teams, k.ID)
		case KindUser:
			keepLocal(users, s.users, k.ID)
		case KindDirectMessage:
			keepLocal(dms, s.directMessages, k.ID)
		case KindNotification:
			keepLocal(notifications, s.notifications, k.ID)
		}
	}
	res.Kept = keep.Sorted()

	s.projects = projects
	s.teams = teams
	s.users = users
	s.directMessages = dms
	s.notifications = notifications
	s.folders = folders

	if err := model.CheckFolders(s.folders); err != nil {
		// Kept local folders win over the snapshot's.
		for _, k := range res.Kept {
			if k.Kind != KindFolder {
				continue
			}
			if f, ok := s.folders[k.ID]; ok {
				for _, projectID := range f.ProjectIDs {
					s.removeFromOtherFolders(projectID, k.ID)
				}
			}
		}
		if err := model.CheckFolders(s.folders); err != nil {
			logging.Logger.WithError(err).Warn("refresh left duplicate folder membership; dropping duplicates")
			s.dedupeFolders()
		}
	}

	if len(res.Repaired) > 0 {
		logging.Logger.WithFields(logrus.Fields{
			"projects": res.Repaired,
		}).Warn("refresh snapshot violated board invariants; repaired")
	}

	s.bump()
	return res
}

func (s *Store) dedupeFolders() {
	ids := make([]string, 0, len(s.folders))
	for id := range s.folders {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		for _, projectID := range s.folders[id].ProjectIDs {
			s.removeFromOtherFolders(projectID, id)
		}
	}
}

func keepLocal[V any](next, local map[string]V, id string) {
	if v, ok := local[id]; ok {
		next[id] = v
	} else {
		delete(next, id)
	}
}

func cloneMap[V any](in map[string]V, clone func(V) V) map[string]V {
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[k] = clone(v)
	}
	return out
}

func hasKind(s KeySet, kind Kind) bool {
	for k := range s {
		if k.Kind == kind {
			return true
		}
	}
	return false
}

// Capture returns a patch that, applied with Restore, puts every entity in
// keys back to its current state: present entities are copied, absent
// ones are scheduled for deletion.
func (s *Store) Capture(keys KeySet) Patch {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p Patch
	for k := range keys {
		switch k.Kind {
		case KindProject:
			if v, ok := s.projects[k.ID]; ok {
				p.PutProject(v.Clone())
				continue
			}
		case KindFolder:
			if v, ok := s.folders[k.ID]; ok {
				p.PutFolder(v.Clone())
				continue
			}
		case KindTeam:
			if v, ok := s.teams[k.ID]; ok {
				p.PutTeam(v.Clone())
				continue
			}
		case KindUser:
			if v, ok := s.users[k.ID]; ok {
				p.PutUser(v)
				continue
			}
		case KindDirectMessage:
			if v, ok := s.directMessages[k.ID]; ok {
				p.PutDirectMessage(v)
				continue
			}
		case KindNotification:
			if v, ok := s.notifications[k.ID]; ok {
				p.PutNotification(v)
				continue
			}
		}
		p.Delete(k)
	}
	return p
}

// Clear drops every entity, as on logout.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.bump()
}
