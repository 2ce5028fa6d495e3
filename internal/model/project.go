package model

import "time"

// Column is an ordered container of task ids within a project.
type Column struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	TaskIDs []string `json:"taskIds"`
}

// ChatMessage is a message posted in a project's chat panel.
type ChatMessage struct {
	ID          string       `json:"id"`
	ProjectID   string       `json:"projectId"`
	Author      Author       `json:"author"`
	Content     string       `json:"content"`
	Timestamp   time.Time    `json:"timestamp"`
	Attachments []Attachment `json:"attachments,omitempty"`
	ParentID    string       `json:"parentId,omitempty"`
}

// Author is the compact user reference embedded in chat messages.
type Author struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// Project is a kanban board owned by a team. Columns and tasks are
// embedded and only ever replaced together with the project.
type Project struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	TeamID       string            `json:"teamId"`
	Columns      map[string]Column `json:"columns"`
	ColumnOrder  []string          `json:"columnOrder"`
	Tasks        map[string]Task   `json:"tasks"`
	ChatMessages []ChatMessage     `json:"chatMessages"`
}

// Clone returns a deep copy of the project.
func (p Project) Clone() Project {
	out := p
	out.Columns = make(map[string]Column, len(p.Columns))
	for id, c := range p.Columns {
		c.TaskIDs = cloneIDs(c.TaskIDs)
		out.Columns[id] = c
	}
	out.ColumnOrder = cloneIDs(p.ColumnOrder)
	out.Tasks = make(map[string]Task, len(p.Tasks))
	for id, t := range p.Tasks {
		out.Tasks[id] = t.Clone()
	}
	if p.ChatMessages != nil {
		out.ChatMessages = make([]ChatMessage, len(p.ChatMessages))
		for i, m := range p.ChatMessages {
			m.Attachments = append([]Attachment(nil), m.Attachments...)
			out.ChatMessages[i] = m
		}
	}
	return out
}

// ColumnOf returns the id of the column holding taskID.
func (p Project) ColumnOf(taskID string) (string, bool) {
	for _, colID := range p.ColumnOrder {
		for _, id := range p.Columns[colID].TaskIDs {
			if id == taskID {
				return colID, true
			}
		}
	}
	// Columns missing from the order are still searched so a malformed
	// project does not hide a task.
	for colID, c := range p.Columns {
		for _, id := range c.TaskIDs {
			if id == taskID {
				return colID, true
			}
		}
	}
	return "", false
}

// ColumnIndex returns the position of columnID in ColumnOrder, or -1.
func (p Project) ColumnIndex(columnID string) int {
	return IndexOf(p.ColumnOrder, columnID)
}

// IndexOf returns the index of id in ids, or -1.
func IndexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func cloneIDs(ids []string) []string {
	if ids == nil {
		return nil
	}
	return append(make([]string, 0, len(ids)), ids...)
}
