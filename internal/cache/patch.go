package cache

import "github.com/nhle/boardsync/internal/model"

// Patch is a partial snapshot: whole entities to put and ids to delete,
// per collection. Applying it replaces each listed entity wholesale.
type Patch struct {
	Projects       map[string]model.Project
	Folders        map[string]model.Folder
	Teams          map[string]model.Team
	Users          map[string]model.User
	DirectMessages map[string]model.DirectMessage
	Notifications  map[string]model.Notification

	Deleted KeySet
}

// PutProject schedules p to replace the project with the same id.
func (p *Patch) PutProject(pr model.Project) *Patch {
	if p.Projects == nil {
		p.Projects = map[string]model.Project{}
	}
	p.Projects[pr.ID] = pr
	p.undelete(ProjectKey(pr.ID))
	return p
}

// PutFolder schedules f to replace the folder with the same id.
func (p *Patch) PutFolder(f model.Folder) *Patch {
	if p.Folders == nil {
		p.Folders = map[string]model.Folder{}
	}
	p.Folders[f.ID] = f
	p.undelete(FolderKey(f.ID))
	return p
}

// PutTeam schedules t to replace the team with the same id.
func (p *Patch) PutTeam(t model.Team) *Patch {
	if p.Teams == nil {
		p.Teams = map[string]model.Team{}
	}
	p.Teams[t.ID] = t
	p.undelete(TeamKey(t.ID))
	return p
}

// PutUser schedules u to replace the user with the same id.
func (p *Patch) PutUser(u model.User) *Patch {
	if p.Users == nil {
		p.Users = map[string]model.User{}
	}
	p.Users[u.ID] = u
	p.undelete(Key{Kind: KindUser, ID: u.ID})
	return p
}

// PutDirectMessage schedules dm to replace the message with the same id.
func (p *Patch) PutDirectMessage(dm model.DirectMessage) *Patch {
	if p.DirectMessages == nil {
		p.DirectMessages = map[string]model.DirectMessage{}
	}
	p.DirectMessages[dm.ID] = dm
	p.undelete(Key{Kind: KindDirectMessage, ID: dm.ID})
	return p
}

// PutNotification schedules n to replace the notification with the same id.
func (p *Patch) PutNotification(n model.Notification) *Patch {
	if p.Notifications == nil {
		p.Notifications = map[string]model.Notification{}
	}
	p.Notifications[n.ID] = n
	p.undelete(Key{Kind: KindNotification, ID: n.ID})
	return p
}

// Delete schedules the entity identified by k for removal.
func (p *Patch) Delete(k Key) *Patch {
	if p.Deleted == nil {
		p.Deleted = KeySet{}
	}
	switch k.Kind {
	case KindProject:
		delete(p.Projects, k.ID)
	case KindFolder:
		delete(p.Folders, k.ID)
	case KindTeam:
		delete(p.Teams, k.ID)
	case KindUser:
		delete(p.Users, k.ID)
	case KindDirectMessage:
		delete(p.DirectMessages, k.ID)
	case KindNotification:
		delete(p.Notifications, k.ID)
	}
	p.Deleted.Add(k)
	return p
}

func (p *Patch) undelete(k Key) {
	delete(p.Deleted, k)
}

// Keys returns every entity key the patch touches.
func (p Patch) Keys() KeySet {
	keys := KeySet{}
	for id := range p.Projects {
		keys.Add(ProjectKey(id))
	}
	for id := range p.Folders {
		keys.Add(FolderKey(id))
	}
	for id := range p.Teams {
		keys.Add(TeamKey(id))
	}
	for id := range p.Users {
		keys.Add(Key{Kind: KindUser, ID: id})
	}
	for id := range p.DirectMessages {
		keys.Add(Key{Kind: KindDirectMessage, ID: id})
	}
	for id := range p.Notifications {
		keys.Add(Key{Kind: KindNotification, ID: id})
	}
	keys.Merge(p.Deleted)
	return keys
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return len(p.Keys()) == 0
}
