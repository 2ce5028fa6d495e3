package model

import "time"

// Task priority values as sent by the server.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Attachment is a file attached to a task or message.
type Attachment struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment is a discussion entry on a task.
type Comment struct {
	ID        string    `json:"id"`
	Author    User      `json:"author"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Subtask is a checklist entry within a task.
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Task is a card on a project board. It belongs to exactly one column of
// its project at a time.
type Task struct {
	ID          string       `json:"id"`
	ProjectID   string       `json:"projectId"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Assignees   []User       `json:"assignees"`
	DueDate     *time.Time   `json:"dueDate"`
	Priority    string       `json:"priority"`
	Tags        []string     `json:"tags"`
	Attachments []Attachment `json:"attachments"`
	Comments    []Comment    `json:"comments"`
	Weight      int          `json:"weight"`
	Completed   bool         `json:"completed"`
	Subtasks    []Subtask    `json:"subtasks"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	out.Assignees = append([]User(nil), t.Assignees...)
	out.Tags = append([]string(nil), t.Tags...)
	out.Attachments = append([]Attachment(nil), t.Attachments...)
	out.Comments = append([]Comment(nil), t.Comments...)
	out.Subtasks = append([]Subtask(nil), t.Subtasks...)
	if t.DueDate != nil {
		d := *t.DueDate
		out.DueDate = &d
	}
	return out
}

// AssigneeIDs returns the ids of the task's assignees.
func (t Task) AssigneeIDs() []string {
	ids := make([]string, 0, len(t.Assignees))
	for _, u := range t.Assignees {
		ids = append(ids, u.ID)
	}
	return ids
}

// AttachmentIDs returns the ids of the task's attachments.
func (t Task) AttachmentIDs() []string {
	ids := make([]string, 0, len(t.Attachments))
	for _, a := range t.Attachments {
		ids = append(ids, a.ID)
	}
	return ids
}
