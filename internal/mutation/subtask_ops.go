package mutation

import (
	"context"

	"github.com/nhle/boardsync/internal/api"
	"github.com/nhle/boardsync/internal/cache"
	"github.com/nhle/boardsync/internal/model"
)

// CreateSubtask appends a checklist entry to a task.
type CreateSubtask struct {
	ProjectID string
	TaskID    string
	Title     string
}

func (CreateSubtask) Op() string { return "create subtask" }

func (c CreateSubtask) plan(d *Dispatcher) (*op, error) {
	p, t, err := d.task(c.ProjectID, c.TaskID)
	if err != nil {
		return nil, err
	}
	tmp := placeholderID()
	t.Subtasks = append(t.Subtasks, model.Subtask{ID: tmp, Title: c.Title})
	p.Tasks[t.ID] = t

	var patch cache.Patch
	patch.PutProject(p)
	return &op{
		keys:       cache.NewKeySet(cache.ProjectKey(p.ID)),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			saved, err := d.client.CreateSubtask(ctx, c.TaskID, c.Title)
			if err != nil {
				return nil, err
			}
			return func() (cache.Patch, Result) {
				patch, _ := d.patchProject(c.ProjectID, func(p *model.Project) {
					editSubtasks(p, c.TaskID, func(subs []model.Subtask) []model.Subtask {
						return replaceSubtask(subs, tmp, saved)
					})
				})()
				return patch, Result{ID: saved.ID}
			}, nil
		},
		failure: "Failed to add subtask.",
	}, nil
}

// UpdateSubtask changes a subtask's title or completion. Nil fields are
// left as they are.
type UpdateSubtask struct {
	ProjectID string
	TaskID    string
	SubtaskID string
	Title     *string
	Completed *bool
}

func (UpdateSubtask) Op() string { return "update subtask" }

func (c UpdateSubtask) plan(d *Dispatcher) (*op, error) {
	p, t, err := d.task(c.ProjectID, c.TaskID)
	if err != nil {
		return nil, err
	}
	found := false
	subs := append([]model.Subtask(nil), t.Subtasks...)
	for i, s := range subs {
		if s.ID != c.SubtaskID {
			continue
		}
		if c.Title != nil {
			s.Title = *c.Title
		}
		if c.Completed != nil {
			s.Completed = *c.Completed
		}
		subs[i] = s
		found = true
	}
	if !found {
		return nil, notFound("subtask", c.SubtaskID)
	}
	t.Subtasks = subs
	p.Tasks[t.ID] = t

	var patch cache.Patch
	patch.PutProject(p)
	return &op{
		keys:       cache.NewKeySet(cache.ProjectKey(p.ID)),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			saved, err := d.client.UpdateSubtask(ctx, c.TaskID, c.SubtaskID,
				api.SubtaskPatch{Title: c.Title, Completed: c.Completed})
			if err != nil {
				return nil, err
			}
			return d.patchProject(c.ProjectID, func(p *model.Project) {
				editSubtasks(p, c.TaskID, func(subs []model.Subtask) []model.Subtask {
					return replaceSubtask(subs, c.SubtaskID, saved)
				})
			}), nil
		},
		failure: "Failed to update subtask.",
	}, nil
}

// DeleteSubtask removes a checklist entry.
type DeleteSubtask struct {
	ProjectID string
	TaskID    string
	SubtaskID string
}

func (DeleteSubtask) Op() string { return "delete subtask" }

func (c DeleteSubtask) plan(d *Dispatcher) (*op, error) {
	p, t, err := d.task(c.ProjectID, c.TaskID)
	if err != nil {
		return nil, err
	}
	kept := make([]model.Subtask, 0, len(t.Subtasks))
	for _, s := range t.Subtasks {
		if s.ID != c.SubtaskID {
			kept = append(kept, s)
		}
	}
	t.Subtasks = kept
	p.Tasks[t.ID] = t

	var patch cache.Patch
	patch.PutProject(p)
	return &op{
		keys:       cache.NewKeySet(cache.ProjectKey(p.ID)),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			return nil, d.client.DeleteSubtask(ctx, c.TaskID, c.SubtaskID)
		},
		failure: "Failed to delete subtask.",
	}, nil
}

func editSubtasks(p *model.Project, taskID string, edit func([]model.Subtask) []model.Subtask) {
	t, ok := p.Tasks[taskID]
	if !ok {
		return
	}
	t.Subtasks = edit(t.Subtasks)
	p.Tasks[taskID] = t
}

// replaceSubtask puts saved in the slot of id, or appends it.
func replaceSubtask(subs []model.Subtask, id string, saved model.Subtask) []model.Subtask {
	out := make([]model.Subtask, 0, len(subs)+1)
	placed := false
	for _, s := range subs {
		if s.ID == id || s.ID == saved.ID {
			if !placed {
				out = append(out, saved)
				placed = true
			}
			continue
		}
		out = append(out, s)
	}
	if !placed {
		out = append(out, saved)
	}
	return out
}
