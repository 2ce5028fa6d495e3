package cache

import "sort"

// Kind names an entity collection held by the store.
type Kind string

const (
	KindProject       Kind = "project"
	KindFolder        Kind = "folder"
	KindTeam          Kind = "team"
	KindUser          Kind = "user"
	KindDirectMessage Kind = "direct_message"
	KindNotification  Kind = "notification"
)

// Key identifies one entity. Columns and tasks are addressed through
// their owning project.
type Key struct {
	Kind Kind
	ID   string
}

func (k Key) String() string {
	return string(k.Kind) + ":" + k.ID
}

// ProjectKey returns the key of a project.
func ProjectKey(id string) Key { return Key{Kind: KindProject, ID: id} }

// FolderKey returns the key of a folder.
func FolderKey(id string) Key { return Key{Kind: KindFolder, ID: id} }

// TeamKey returns the key of a team.
func TeamKey(id string) Key { return Key{Kind: KindTeam, ID: id} }

// KeySet is an unordered set of entity keys.
type KeySet map[Key]struct{}

// NewKeySet builds a set from keys.
func NewKeySet(keys ...Key) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Add inserts k.
func (s KeySet) Add(k Key) { s[k] = struct{}{} }

// Has reports whether k is in the set. A nil set is empty.
func (s KeySet) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Merge adds every key of other to s.
func (s KeySet) Merge(other KeySet) {
	for k := range other {
		s[k] = struct{}{}
	}
}

// Sorted returns the keys in a stable order, for logs and tests.
func (s KeySet) Sorted() []Key {
	out := make([]Key, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].ID < out[j].ID
	})
	return out
}
