package mutation

import (
	"context"

	"github.com/nhle/boardsync/internal/cache"
	"github.com/nhle/boardsync/internal/model"
)

// CreateColumn appends a column to a project.
type CreateColumn struct {
	ProjectID string
	Title     string
}

func (CreateColumn) Op() string { return "create column" }

func (c CreateColumn) plan(d *Dispatcher) (*op, error) {
	p, err := d.project(c.ProjectID)
	if err != nil {
		return nil, err
	}
	before := make(map[string]bool, len(p.Columns))
	for id := range p.Columns {
		before[id] = true
	}
	tmp := placeholderID()
	p.Columns[tmp] = model.Column{ID: tmp, Title: c.Title, TaskIDs: []string{}}
	p.ColumnOrder = append(p.ColumnOrder, tmp)

	var patch cache.Patch
	patch.PutProject(p)
	return &op{
		keys:       cache.NewKeySet(cache.ProjectKey(p.ID)),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			layout, err := d.client.CreateColumn(ctx, c.ProjectID, c.Title)
			if err != nil {
				return nil, err
			}
			var created string
			for _, id := range layout.ColumnOrder {
				if !before[id] {
					created = id
				}
			}
			return func() (cache.Patch, Result) {
				patch, _ := d.patchProject(c.ProjectID, func(p *model.Project) {
					delete(p.Columns, tmp)
					p.ColumnOrder = model.Remove(p.ColumnOrder, tmp)
					mergeColumns(p, layout.Columns)
					p.ColumnOrder = mergeOrder(layout.ColumnOrder, p.ColumnOrder)
				})()
				return patch, Result{ID: created}
			}, nil
		},
		failure: "Failed to create column.",
		success: "Column added!",
	}, nil
}

// UpdateColumn renames a column.
type UpdateColumn struct {
	ProjectID string
	ColumnID  string
	Title     string
}

func (UpdateColumn) Op() string { return "update column" }

func (c UpdateColumn) plan(d *Dispatcher) (*op, error) {
	p, err := d.project(c.ProjectID)
	if err != nil {
		return nil, err
	}
	col, ok := p.Columns[c.ColumnID]
	if !ok {
		return nil, notFound("column", c.ColumnID)
	}
	col.Title = c.Title
	p.Columns[c.ColumnID] = col

	var patch cache.Patch
	patch.PutProject(p)
	return &op{
		keys:       cache.NewKeySet(cache.ProjectKey(p.ID)),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			saved, err := d.client.UpdateColumn(ctx, c.ColumnID, c.Title)
			if err != nil {
				return nil, err
			}
			if saved.ID == "" {
				saved.ID = c.ColumnID
			}
			return d.patchProject(c.ProjectID, func(p *model.Project) {
				mergeColumns(p, map[string]model.Column{saved.ID: saved})
			}), nil
		},
		failure: "Failed to change column title.",
		success: "Column title changed successfully!",
	}, nil
}

// MoveColumn moves a column to a new index within its project.
type MoveColumn struct {
	ProjectID string
	ColumnID  string
	ToIndex   int
}

func (MoveColumn) Op() string { return "move column" }

func (c MoveColumn) plan(d *Dispatcher) (*op, error) {
	p, err := d.project(c.ProjectID)
	if err != nil {
		return nil, err
	}
	from := p.ColumnIndex(c.ColumnID)
	if from < 0 {
		return nil, notFound("column", c.ColumnID)
	}
	if clamp(c.ToIndex, len(p.ColumnOrder)-1) == from {
		return nil, nil
	}
	order := model.ArrayMove(p.ColumnOrder, from, c.ToIndex)
	p.ColumnOrder = order

	var patch cache.Patch
	patch.PutProject(p)
	return &op{
		keys:       cache.NewKeySet(cache.ProjectKey(p.ID)),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			saved, err := d.client.MoveColumns(ctx, c.ProjectID, order)
			if err != nil {
				return nil, err
			}
			return d.patchProject(c.ProjectID, func(p *model.Project) {
				p.ColumnOrder = mergeOrder(saved, p.ColumnOrder)
			}), nil
		},
		failure: "Failed to move column.",
		success: "Column moved successfully!",
	}, nil
}

// DeleteColumn removes a column. Its tasks move to the first remaining
// column, as the server does.
type DeleteColumn struct {
	ProjectID string
	ColumnID  string
}

func (DeleteColumn) Op() string { return "delete column" }

func (c DeleteColumn) plan(d *Dispatcher) (*op, error) {
	p, err := d.project(c.ProjectID)
	if err != nil {
		return nil, err
	}
	col, ok := p.Columns[c.ColumnID]
	if !ok {
		return nil, notFound("column", c.ColumnID)
	}
	if len(p.ColumnOrder) <= 1 {
		return nil, ErrLastColumn
	}
	delete(p.Columns, c.ColumnID)
	p.ColumnOrder = model.Remove(p.ColumnOrder, c.ColumnID)
	first := p.Columns[p.ColumnOrder[0]]
	first.TaskIDs = append(first.TaskIDs, col.TaskIDs...)
	p.Columns[first.ID] = first

	var patch cache.Patch
	patch.PutProject(p)
	return &op{
		keys:       cache.NewKeySet(cache.ProjectKey(p.ID)),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			return nil, d.client.DeleteColumn(ctx, c.ColumnID)
		},
		failure:     "Failed to delete column.",
		success:     "Column deleted.",
		successKind: NoticeInfo,
	}, nil
}

// mergeColumns replaces p's columns with the server's. Local columns the
// server did not send are kept, minus any task the server placed
// elsewhere.
func mergeColumns(p *model.Project, cols map[string]model.Column) {
	placed := map[string]bool{}
	for _, c := range cols {
		for _, id := range c.TaskIDs {
			placed[id] = true
		}
	}
	for id, c := range p.Columns {
		if _, ok := cols[id]; ok {
			continue
		}
		kept := make([]string, 0, len(c.TaskIDs))
		for _, taskID := range c.TaskIDs {
			if !placed[taskID] {
				kept = append(kept, taskID)
			}
		}
		c.TaskIDs = kept
		p.Columns[id] = c
	}
	for id, c := range cols {
		if c.ID == "" {
			c.ID = id
		}
		if c.TaskIDs == nil {
			c.TaskIDs = []string{}
		}
		p.Columns[id] = c
	}
}

// mergeOrder returns the server's order followed by local ids it lacks.
func mergeOrder(server, local []string) []string {
	out := append([]string(nil), server...)
	for _, id := range local {
		if model.IndexOf(out, id) < 0 {
			out = append(out, id)
		}
	}
	return out
}

// clamp limits i to [0, hi].
func clamp(i, hi int) int {
	if i > hi {
		i = hi
	}
	if i < 0 {
		i = 0
	}
	return i
}
