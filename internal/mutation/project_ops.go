package mutation

import (
	"context"
	"fmt"

	"github.com/nhle/boardsync/internal/cache"
	"github.com/nhle/boardsync/internal/logging"
	"github.com/nhle/boardsync/internal/model"
)

// CreateProject adds an empty project to a team.
type CreateProject struct {
	Name        string
	Description string
	TeamID      string
}

func (CreateProject) Op() string { return "create project" }

func (c CreateProject) plan(d *Dispatcher) (*op, error) {
	tmp := placeholderID()
	keys := cache.NewKeySet(cache.ProjectKey(tmp))

	var patch cache.Patch
	patch.PutProject(model.Project{
		ID:          tmp,
		Name:        c.Name,
		Description: c.Description,
		TeamID:      c.TeamID,
		Columns:     map[string]model.Column{},
		ColumnOrder: []string{},
		Tasks:       map[string]model.Task{},
	})
	if team, ok := d.store.Team(c.TeamID); ok {
		keys.Add(cache.TeamKey(team.ID))
		team.ProjectIDs = append(team.ProjectIDs, tmp)
		patch.PutTeam(team)
	}

	return &op{
		keys:       keys,
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			resp, err := d.client.CreateProject(ctx, c.Name, c.Description, c.TeamID)
			if err != nil {
				return nil, err
			}
			return func() (cache.Patch, Result) {
				var patch cache.Patch
				patch.Delete(cache.ProjectKey(tmp))
				patch.PutProject(normalized(resp.NewProject))
				if resp.UpdatedTeam.ID != "" {
					patch.PutTeam(resp.UpdatedTeam)
				} else if team, ok := d.store.Team(c.TeamID); ok {
					if i := model.IndexOf(team.ProjectIDs, tmp); i >= 0 {
						team.ProjectIDs[i] = resp.NewProject.ID
						patch.PutTeam(team)
					}
				}
				patch.Folders = d.renameInFolders(tmp, resp.NewProject.ID)
				return patch, Result{ID: resp.NewProject.ID}
			}, nil
		},
		failure: "Failed to create project.",
		success: "Project created successfully!",
	}, nil
}

// UpdateProject replaces a project's editable fields.
type UpdateProject struct {
	Project model.Project
}

func (UpdateProject) Op() string { return "update project" }

func (c UpdateProject) plan(d *Dispatcher) (*op, error) {
	if _, err := d.project(c.Project.ID); err != nil {
		return nil, err
	}
	next := c.Project.Clone()
	model.NormalizeProject(&next)

	var patch cache.Patch
	patch.PutProject(next)
	return &op{
		keys:       cache.NewKeySet(cache.ProjectKey(next.ID)),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			saved, err := d.client.UpdateProject(ctx, next)
			if err != nil {
				return nil, err
			}
			return func() (cache.Patch, Result) {
				var patch cache.Patch
				patch.PutProject(normalized(saved))
				return patch, Result{}
			}, nil
		},
		failure: "Failed to update project.",
	}, nil
}

// DeleteProject removes a project along with its folder and team
// membership.
type DeleteProject struct {
	ID string
}

func (DeleteProject) Op() string { return "delete project" }

func (c DeleteProject) plan(d *Dispatcher) (*op, error) {
	p, err := d.project(c.ID)
	if err != nil {
		return nil, err
	}
	keys := cache.NewKeySet(cache.ProjectKey(p.ID))

	var patch cache.Patch
	patch.Delete(cache.ProjectKey(p.ID))
	if folderID := model.FolderOf(d.store.Folders(), p.ID); folderID != "" {
		f, _ := d.store.Folder(folderID)
		f.ProjectIDs = model.Remove(f.ProjectIDs, p.ID)
		keys.Add(cache.FolderKey(f.ID))
		patch.PutFolder(f)
	}
	if team, ok := d.store.Team(p.TeamID); ok {
		team.ProjectIDs = model.Remove(team.ProjectIDs, p.ID)
		keys.Add(cache.TeamKey(team.ID))
		patch.PutTeam(team)
	}

	return &op{
		keys:       keys,
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			return nil, d.client.DeleteProject(ctx, p.ID)
		},
		failure:     "Failed to delete project.",
		success:     "Project deleted.",
		successKind: NoticeInfo,
	}, nil
}

// SendChatMessage posts to a project's chat.
type SendChatMessage struct {
	ProjectID string
	Content   string
}

func (SendChatMessage) Op() string { return "send chat message" }

func (c SendChatMessage) plan(d *Dispatcher) (*op, error) {
	p, err := d.project(c.ProjectID)
	if err != nil {
		return nil, err
	}
	me := d.currentUser()
	placeholder := model.ChatMessage{
		ID:        placeholderID(),
		ProjectID: p.ID,
		Author:    model.Author{ID: me.ID, Name: me.Name, AvatarURL: me.AvatarURL},
		Content:   c.Content,
		Timestamp: d.now(),
	}
	p.ChatMessages = append(p.ChatMessages, placeholder)

	var patch cache.Patch
	patch.PutProject(p)
	return &op{
		keys:       cache.NewKeySet(cache.ProjectKey(p.ID)),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			saved, err := d.client.SendChatMessage(ctx, c.ProjectID, c.Content)
			if err != nil {
				return nil, err
			}
			return d.patchProject(c.ProjectID, func(p *model.Project) {
				p.ChatMessages = replaceChatMessage(p.ChatMessages, placeholder.ID, saved)
			}), nil
		},
		failure: "Failed to send message.",
		success: "Message sent!",
	}, nil
}

func replaceChatMessage(msgs []model.ChatMessage, placeholderID string, saved model.ChatMessage) []model.ChatMessage {
	out := make([]model.ChatMessage, 0, len(msgs)+1)
	placed := false
	for _, m := range msgs {
		switch m.ID {
		case placeholderID:
			if !placed {
				out = append(out, saved)
				placed = true
			}
		case saved.ID:
			if !placed {
				out = append(out, m)
				placed = true
			}
		default:
			out = append(out, m)
		}
	}
	if !placed {
		out = append(out, saved)
	}
	return out
}

// renameInFolders returns the folders listing oldID with newID in its
// place, for a placeholder project filed before the server answered.
func (d *Dispatcher) renameInFolders(oldID, newID string) map[string]model.Folder {
	var out map[string]model.Folder
	for id, f := range d.store.Folders() {
		i := model.IndexOf(f.ProjectIDs, oldID)
		if i < 0 {
			continue
		}
		f.ProjectIDs[i] = newID
		if out == nil {
			out = map[string]model.Folder{}
		}
		out[id] = f
	}
	return out
}

// normalized returns p repaired to satisfy the project invariants.
func normalized(p model.Project) model.Project {
	if model.NormalizeProject(&p) && p.ID != "" {
		logRepaired(p.ID)
	}
	return p
}

func logRepaired(projectID string) {
	logging.Logger.WithField("project", projectID).Warn("server sent an inconsistent project; repaired")
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}
