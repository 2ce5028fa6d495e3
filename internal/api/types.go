package api

import (
	"encoding/json"
	"time"

	"github.com/nhle/boardsync/internal/model"
)

// CreatedProject is the response to project creation.
type CreatedProject struct {
	NewProject  model.Project `json:"newProject"`
	UpdatedTeam model.Team    `json:"updatedTeam"`
}

// ColumnLayout is a project's columns and their order, as returned by
// column creation.
type ColumnLayout struct {
	Columns     map[string]model.Column `json:"columns"`
	ColumnOrder []string                `json:"columnOrder"`
}

// MovedTask is the response to a task move: the project's full column map.
type MovedTask struct {
	Columns map[string]model.Column `json:"columns"`
}

// TaskInput is the body of task create and update requests: the task
// fields plus the owning ids.
type TaskInput struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	DueDate       *time.Time `json:"dueDate"`
	Priority      string     `json:"priority"`
	Tags          []string   `json:"tags"`
	Weight        int        `json:"weight"`
	Completed     bool       `json:"completed"`
	ProjectID     string     `json:"projectId"`
	ColumnID      string     `json:"columnId,omitempty"`
	AssigneeIDs   []string   `json:"assigneeIds"`
	AttachmentIDs []string   `json:"attachmentIds"`
}

// NewTaskInput builds a request body from a task.
func NewTaskInput(projectID, columnID string, t model.Task) TaskInput {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return TaskInput{
		Title:         t.Title,
		Description:   t.Description,
		DueDate:       t.DueDate,
		Priority:      t.Priority,
		Tags:          tags,
		Weight:        t.Weight,
		Completed:     t.Completed,
		ProjectID:     projectID,
		ColumnID:      columnID,
		AssigneeIDs:   t.AssigneeIDs(),
		AttachmentIDs: t.AttachmentIDs(),
	}
}

// SubtaskPatch carries the fields of a partial subtask update. Nil fields
// are left unchanged.
type SubtaskPatch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// JoinDecision is the response to approving or denying a join request.
type JoinDecision struct {
	Message string     `json:"message"`
	Team    model.Team `json:"team"`
}

// Attachments decodes an upload response, which is either one attachment
// or a list of them.
type Attachments []model.Attachment

func (a *Attachments) UnmarshalJSON(data []byte) error {
	var list []model.Attachment
	if err := json.Unmarshal(data, &list); err == nil {
		*a = list
		return nil
	}
	var one model.Attachment
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*a = Attachments{one}
	return nil
}
