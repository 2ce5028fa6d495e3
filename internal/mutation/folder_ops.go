package mutation

import (
	"context"
	"slices"

	"github.com/nhle/boardsync/internal/api"
	"github.com/nhle/boardsync/internal/cache"
	"github.com/nhle/boardsync/internal/model"
)

// CreateFolder adds an empty sidebar folder.
type CreateFolder struct {
	Name string
}

func (CreateFolder) Op() string { return "create folder" }

func (c CreateFolder) plan(d *Dispatcher) (*op, error) {
	tmp := placeholderID()
	var patch cache.Patch
	patch.PutFolder(model.Folder{ID: tmp, Name: c.Name, ProjectIDs: []string{}})
	return &op{
		keys:       cache.NewKeySet(cache.FolderKey(tmp)),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			saved, err := d.client.CreateFolder(ctx, c.Name)
			if err != nil {
				return nil, err
			}
			return func() (cache.Patch, Result) {
				var patch cache.Patch
				// Projects filed under the placeholder meanwhile move over.
				if local, ok := d.store.Folder(tmp); ok {
					for _, id := range local.ProjectIDs {
						if model.IndexOf(saved.ProjectIDs, id) < 0 {
							saved.ProjectIDs = append(saved.ProjectIDs, id)
						}
					}
				}
				patch.Delete(cache.FolderKey(tmp))
				patch.PutFolder(saved)
				return patch, Result{ID: saved.ID}
			}, nil
		},
		failure: "Failed to create folder.",
		success: "Folder created!",
	}, nil
}

// UpdateFolder replaces a folder's name and project list.
type UpdateFolder struct {
	Folder model.Folder
}

func (UpdateFolder) Op() string { return "update folder" }

func (c UpdateFolder) plan(d *Dispatcher) (*op, error) {
	if _, ok := d.store.Folder(c.Folder.ID); !ok {
		return nil, notFound("folder", c.Folder.ID)
	}
	next := c.Folder.Clone()
	var patch cache.Patch
	patch.PutFolder(next)
	return &op{
		keys:       cache.NewKeySet(cache.FolderKey(next.ID)),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			saved, err := d.client.UpdateFolder(ctx, next)
			if err != nil {
				return nil, err
			}
			return putFolders(saved), nil
		},
		failure: "Failed to update folder.",
	}, nil
}

// DeleteFolder removes a folder. Its projects become uncategorized.
type DeleteFolder struct {
	ID string
}

func (DeleteFolder) Op() string { return "delete folder" }

func (c DeleteFolder) plan(d *Dispatcher) (*op, error) {
	if _, ok := d.store.Folder(c.ID); !ok {
		return nil, notFound("folder", c.ID)
	}
	var patch cache.Patch
	patch.Delete(cache.FolderKey(c.ID))
	return &op{
		keys:       cache.NewKeySet(cache.FolderKey(c.ID)),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			return nil, d.client.DeleteFolder(ctx, c.ID)
		},
		failure:     "Failed to delete folder.",
		success:     "Folder deleted.",
		successKind: NoticeInfo,
	}, nil
}

// MoveProjectToFolder files a project under a folder at a position, or
// makes it uncategorized when ToFolderID is empty. A negative position
// appends.
type MoveProjectToFolder struct {
	ProjectID  string
	ToFolderID string
	Position   int
}

func (MoveProjectToFolder) Op() string { return "move project" }

func (c MoveProjectToFolder) plan(d *Dispatcher) (*op, error) {
	if _, err := d.project(c.ProjectID); err != nil {
		return nil, err
	}
	folders := d.store.Folders()
	fromID := model.FolderOf(folders, c.ProjectID)
	var to model.Folder
	if c.ToFolderID != "" {
		var ok bool
		if to, ok = folders[c.ToFolderID]; !ok {
			return nil, notFound("folder", c.ToFolderID)
		}
	}

	if fromID == c.ToFolderID {
		if fromID == "" {
			return nil, nil
		}
		idx := model.IndexOf(to.ProjectIDs, c.ProjectID)
		pos := c.Position
		if pos < 0 {
			pos = len(to.ProjectIDs) - 1
		}
		if clamp(pos, len(to.ProjectIDs)-1) == idx {
			return nil, nil
		}
		to.ProjectIDs = model.ArrayMove(to.ProjectIDs, idx, pos)
		return d.reorderInFolder(to), nil
	}

	keys := cache.KeySet{}
	var patch cache.Patch
	if fromID != "" {
		from := folders[fromID]
		from.ProjectIDs = model.Remove(from.ProjectIDs, c.ProjectID)
		keys.Add(cache.FolderKey(fromID))
		patch.PutFolder(from)
	}
	appendAt := c.Position < 0 || c.Position >= len(to.ProjectIDs)
	if c.ToFolderID != "" {
		if appendAt {
			to.ProjectIDs = append(to.ProjectIDs, c.ProjectID)
		} else {
			to.ProjectIDs = model.Insert(to.ProjectIDs, c.Position, c.ProjectID)
		}
		keys.Add(cache.FolderKey(to.ID))
		patch.PutFolder(to)
	}
	wanted := to.ProjectIDs

	return &op{
		keys:       keys,
		optimistic: patch,
		// The server moves a project with one call per folder. If the add
		// fails after the remove succeeded, the rollback shows the old
		// folder until the next refresh.
		call: func(ctx context.Context) (settleFunc, error) {
			var saved []model.Folder
			if fromID != "" {
				f, err := d.client.MoveProjectInFolder(ctx, fromID, c.ProjectID, api.FolderRemove)
				if err != nil {
					return nil, err
				}
				saved = append(saved, f)
			}
			if c.ToFolderID != "" {
				f, err := d.client.MoveProjectInFolder(ctx, c.ToFolderID, c.ProjectID, api.FolderAdd)
				if err != nil {
					return nil, err
				}
				if !appendAt && !slices.Equal(f.ProjectIDs, wanted) {
					f.ProjectIDs = wanted
					if f, err = d.client.UpdateFolder(ctx, f); err != nil {
						return nil, err
					}
				}
				saved = append(saved, f)
			}
			return putFolders(saved...), nil
		},
		failure: "Failed to move project.",
	}, nil
}

func (d *Dispatcher) reorderInFolder(f model.Folder) *op {
	var patch cache.Patch
	patch.PutFolder(f)
	return &op{
		keys:       cache.NewKeySet(cache.FolderKey(f.ID)),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			saved, err := d.client.UpdateFolder(ctx, f)
			if err != nil {
				return nil, err
			}
			return putFolders(saved), nil
		},
		failure: "Failed to move project.",
	}
}

// ReorderFolders persists the sidebar order of folders. Folders carry no
// order locally, so only the server's answer is applied.
type ReorderFolders struct {
	IDs []string
}

func (ReorderFolders) Op() string { return "reorder folders" }

func (c ReorderFolders) plan(d *Dispatcher) (*op, error) {
	keys := cache.KeySet{}
	for _, id := range c.IDs {
		keys.Add(cache.FolderKey(id))
	}
	ids := append([]string(nil), c.IDs...)
	return &op{
		keys: keys,
		call: func(ctx context.Context) (settleFunc, error) {
			saved, err := d.client.ReorderFolders(ctx, ids)
			if err != nil {
				return nil, err
			}
			return putFolders(saved...), nil
		},
		failure: "Failed to reorder folders.",
	}, nil
}

func putFolders(folders ...model.Folder) settleFunc {
	return func() (cache.Patch, Result) {
		var patch cache.Patch
		for _, f := range folders {
			if f.ProjectIDs == nil {
				f.ProjectIDs = []string{}
			}
			patch.PutFolder(f)
		}
		return patch, Result{}
	}
}
