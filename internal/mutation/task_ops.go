package mutation

import (
	"context"
	"io"

	"github.com/nhle/boardsync/internal/api"
	"github.com/nhle/boardsync/internal/cache"
	"github.com/nhle/boardsync/internal/model"
)

// CreateTask appends a task to a column.
type CreateTask struct {
	ProjectID string
	ColumnID  string
	Task      model.Task
}

func (CreateTask) Op() string { return "create task" }

func (c CreateTask) plan(d *Dispatcher) (*op, error) {
	p, err := d.project(c.ProjectID)
	if err != nil {
		return nil, err
	}
	col, ok := p.Columns[c.ColumnID]
	if !ok {
		return nil, notFound("column", c.ColumnID)
	}
	t := c.Task.Clone()
	t.ID = placeholderID()
	t.ProjectID = p.ID
	t.CreatedAt = d.now()
	t.UpdatedAt = t.CreatedAt
	p.Tasks[t.ID] = t
	col.TaskIDs = append(col.TaskIDs, t.ID)
	p.Columns[col.ID] = col

	var patch cache.Patch
	patch.PutProject(p)
	return &op{
		keys:       cache.NewKeySet(cache.ProjectKey(p.ID)),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			saved, err := d.client.CreateTask(ctx, api.NewTaskInput(c.ProjectID, c.ColumnID, c.Task))
			if err != nil {
				return nil, err
			}
			return func() (cache.Patch, Result) {
				patch, _ := d.patchProject(c.ProjectID, func(p *model.Project) {
					replacePlaceholderTask(p, t.ID, c.ColumnID, saved)
				})()
				return patch, Result{ID: saved.ID}
			}, nil
		},
		failure: "Failed to create task.",
		success: "Task created successfully!",
	}, nil
}

// replacePlaceholderTask swaps the placeholder for the saved task in the
// same column slot. If a refresh already brought the saved task, the
// placeholder is just dropped.
func replacePlaceholderTask(p *model.Project, placeholder, columnID string, saved model.Task) {
	colID, hadPlaceholder := p.ColumnOf(placeholder)
	if !hadPlaceholder {
		colID = columnID
	}
	delete(p.Tasks, placeholder)
	_, exists := p.Tasks[saved.ID]
	p.Tasks[saved.ID] = saved
	if exists {
		removeFromColumns(p, placeholder)
		return
	}
	col, ok := p.Columns[colID]
	if !ok {
		// Column is gone; normalization files the task under the first one.
		removeFromColumns(p, placeholder)
		return
	}
	if i := model.IndexOf(col.TaskIDs, placeholder); i >= 0 {
		col.TaskIDs = append([]string(nil), col.TaskIDs...)
		col.TaskIDs[i] = saved.ID
	} else {
		col.TaskIDs = append(col.TaskIDs, saved.ID)
	}
	p.Columns[colID] = col
}

func removeFromColumns(p *model.Project, taskID string) {
	for id, c := range p.Columns {
		if model.IndexOf(c.TaskIDs, taskID) >= 0 {
			c.TaskIDs = model.Remove(c.TaskIDs, taskID)
			p.Columns[id] = c
		}
	}
}

// UpdateTask replaces a task's fields.
type UpdateTask struct {
	ProjectID string
	Task      model.Task
}

func (UpdateTask) Op() string { return "update task" }

func (c UpdateTask) plan(d *Dispatcher) (*op, error) {
	p, _, err := d.task(c.ProjectID, c.Task.ID)
	if err != nil {
		return nil, err
	}
	t := c.Task.Clone()
	t.ProjectID = p.ID
	t.UpdatedAt = d.now()
	p.Tasks[t.ID] = t

	var patch cache.Patch
	patch.PutProject(p)
	return &op{
		keys:       cache.NewKeySet(cache.ProjectKey(p.ID)),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			saved, err := d.client.UpdateTask(ctx, t.ID, api.NewTaskInput(c.ProjectID, "", t))
			if err != nil {
				return nil, err
			}
			return d.patchProject(c.ProjectID, func(p *model.Project) {
				putTask(p, saved)
			}), nil
		},
		failure: "Failed to update task.",
		success: "Task updated successfully!",
	}, nil
}

// putTask replaces a task that is still on the board.
func putTask(p *model.Project, t model.Task) {
	if _, ok := p.Tasks[t.ID]; ok {
		p.Tasks[t.ID] = t
	}
}

// MoveTask moves a task to a position in a column of the same project.
// Position is the index in the target column after the task has left its
// source column.
type MoveTask struct {
	ProjectID  string
	TaskID     string
	ToColumnID string
	Position   int
}

func (MoveTask) Op() string { return "move task" }

func (c MoveTask) plan(d *Dispatcher) (*op, error) {
	p, _, err := d.task(c.ProjectID, c.TaskID)
	if err != nil {
		return nil, err
	}
	fromID, _ := p.ColumnOf(c.TaskID)
	from := p.Columns[fromID]
	to, ok := p.Columns[c.ToColumnID]
	if !ok {
		return nil, notFound("column", c.ToColumnID)
	}
	// The server appends for a negative position.
	pos := c.Position
	if fromID == c.ToColumnID {
		if pos < 0 {
			pos = len(from.TaskIDs) - 1
		}
		idx := model.IndexOf(from.TaskIDs, c.TaskID)
		if clamp(pos, len(from.TaskIDs)-1) == idx {
			return nil, nil
		}
		from.TaskIDs = model.ArrayMove(from.TaskIDs, idx, pos)
		p.Columns[fromID] = from
	} else {
		if pos < 0 {
			pos = len(to.TaskIDs)
		}
		from.TaskIDs = model.Remove(from.TaskIDs, c.TaskID)
		to.TaskIDs = model.Insert(to.TaskIDs, pos, c.TaskID)
		p.Columns[fromID] = from
		p.Columns[to.ID] = to
	}

	var patch cache.Patch
	patch.PutProject(p)
	return &op{
		keys:       cache.NewKeySet(cache.ProjectKey(p.ID)),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			moved, err := d.client.MoveTask(ctx, c.TaskID, c.ToColumnID, c.Position)
			if err != nil {
				return nil, err
			}
			return d.patchProject(c.ProjectID, func(p *model.Project) {
				mergeColumns(p, moved.Columns)
			}), nil
		},
		failure: "Failed to move task.",
		success: "Task moved successfully!",
	}, nil
}

// DeleteTask removes a task from its project.
type DeleteTask struct {
	ProjectID string
	TaskID    string
}

func (DeleteTask) Op() string { return "delete task" }

func (c DeleteTask) plan(d *Dispatcher) (*op, error) {
	p, _, err := d.task(c.ProjectID, c.TaskID)
	if err != nil {
		return nil, err
	}
	delete(p.Tasks, c.TaskID)
	removeFromColumns(&p, c.TaskID)

	var patch cache.Patch
	patch.PutProject(p)
	return &op{
		keys:       cache.NewKeySet(cache.ProjectKey(p.ID)),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			return nil, d.client.DeleteTask(ctx, c.TaskID)
		},
		failure:     "Failed to delete task.",
		success:     "Task deleted.",
		successKind: NoticeInfo,
	}, nil
}

// AddComment posts a comment on a task.
type AddComment struct {
	ProjectID string
	TaskID    string
	Content   string
}

func (AddComment) Op() string { return "add comment" }

func (c AddComment) plan(d *Dispatcher) (*op, error) {
	p, t, err := d.task(c.ProjectID, c.TaskID)
	if err != nil {
		return nil, err
	}
	placeholder := model.Comment{
		ID:        placeholderID(),
		Author:    d.currentUser(),
		Content:   c.Content,
		Timestamp: d.now(),
	}
	t.Comments = append(t.Comments, placeholder)
	p.Tasks[t.ID] = t

	var patch cache.Patch
	patch.PutProject(p)
	return &op{
		keys:       cache.NewKeySet(cache.ProjectKey(p.ID)),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			saved, err := d.client.AddComment(ctx, c.TaskID, c.Content)
			if err != nil {
				return nil, err
			}
			return d.patchProject(c.ProjectID, func(p *model.Project) {
				t, ok := p.Tasks[c.TaskID]
				if !ok {
					return
				}
				comments := make([]model.Comment, 0, len(t.Comments))
				for _, cm := range t.Comments {
					if cm.ID != placeholder.ID && cm.ID != saved.ID {
						comments = append(comments, cm)
					}
				}
				t.Comments = append(comments, saved)
				p.Tasks[t.ID] = t
			}), nil
		},
		failure: "Failed to post comment.",
		success: "Commented successfully!",
	}, nil
}

// AddAttachment uploads a file to a task. The server mints the attachment,
// so nothing changes locally until it answers.
type AddAttachment struct {
	ProjectID string
	TaskID    string
	FileName  string
	Content   io.Reader
}

func (AddAttachment) Op() string { return "add attachment" }

func (c AddAttachment) plan(d *Dispatcher) (*op, error) {
	if _, _, err := d.task(c.ProjectID, c.TaskID); err != nil {
		return nil, err
	}
	return &op{
		keys: cache.NewKeySet(cache.ProjectKey(c.ProjectID)),
		call: func(ctx context.Context) (settleFunc, error) {
			added, err := d.client.UploadAttachment(ctx, c.TaskID, c.FileName, c.Content)
			if err != nil {
				return nil, err
			}
			return d.patchProject(c.ProjectID, func(p *model.Project) {
				t, ok := p.Tasks[c.TaskID]
				if !ok {
					return
				}
				for _, a := range added {
					if !hasAttachment(t.Attachments, a.ID) {
						t.Attachments = append(t.Attachments, a)
					}
				}
				p.Tasks[t.ID] = t
			}), nil
		},
		failure: "Failed to upload attachment.",
		success: "Attachment uploaded successfully!",
	}, nil
}

func hasAttachment(as []model.Attachment, id string) bool {
	for _, a := range as {
		if a.ID == id {
			return true
		}
	}
	return false
}

// DeleteAttachment removes an attachment from a task.
type DeleteAttachment struct {
	ProjectID    string
	TaskID       string
	AttachmentID string
}

func (DeleteAttachment) Op() string { return "delete attachment" }

func (c DeleteAttachment) plan(d *Dispatcher) (*op, error) {
	p, t, err := d.task(c.ProjectID, c.TaskID)
	if err != nil {
		return nil, err
	}
	kept := make([]model.Attachment, 0, len(t.Attachments))
	for _, a := range t.Attachments {
		if a.ID != c.AttachmentID {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(t.Attachments) {
		return nil, notFound("attachment", c.AttachmentID)
	}
	t.Attachments = kept
	p.Tasks[t.ID] = t

	var patch cache.Patch
	patch.PutProject(p)
	return &op{
		keys:       cache.NewKeySet(cache.ProjectKey(p.ID)),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			return nil, d.client.DeleteAttachment(ctx, c.AttachmentID)
		},
		failure:     "Failed to delete attachment.",
		success:     "Attachment deleted.",
		successKind: NoticeInfo,
	}, nil
}
