package api

import (
	"context"
	"io"
	"net/url"

	"github.com/nhle/boardsync/internal/model"
)

// CreateProject creates a project in a team.
func (c *Client) CreateProject(ctx context.Context, name, description, teamID string) (CreatedProject, error) {
	var resp CreatedProject
	body := map[string]string{"name": name, "description": description, "team": teamID}
	err := c.post(ctx, "/projects/", body, &resp)
	return resp, err
}

// UpdateProject replaces a project's fields.
func (c *Client) UpdateProject(ctx context.Context, p model.Project) (model.Project, error) {
	body := struct {
		model.Project
		Team string `json:"team"`
	}{Project: p, Team: p.TeamID}
	var resp model.Project
	err := c.put(ctx, "/projects/"+url.PathEscape(p.ID)+"/", body, &resp)
	return resp, err
}

// DeleteProject deletes a project.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.delete(ctx, "/projects/"+url.PathEscape(id)+"/")
}

// SendChatMessage posts a message to a project's chat.
func (c *Client) SendChatMessage(ctx context.Context, projectID, content string) (model.ChatMessage, error) {
	var resp model.ChatMessage
	err := c.post(ctx, "/projects/"+url.PathEscape(projectID)+"/chatmessages/",
		map[string]string{"content": content}, &resp)
	return resp, err
}

// CreateColumn appends a column to a project.
func (c *Client) CreateColumn(ctx context.Context, projectID, title string) (ColumnLayout, error) {
	var resp ColumnLayout
	err := c.post(ctx, "/columns/", map[string]string{"title": title, "projectId": projectID}, &resp)
	return resp, err
}

// UpdateColumn renames a column.
func (c *Client) UpdateColumn(ctx context.Context, columnID, title string) (model.Column, error) {
	var resp model.Column
	err := c.put(ctx, "/columns/"+url.PathEscape(columnID)+"/", map[string]string{"newTitle": title}, &resp)
	return resp, err
}

// MoveColumns sets a project's full column order.
func (c *Client) MoveColumns(ctx context.Context, projectID string, order []string) ([]string, error) {
	var resp []string
	body := struct {
		ProjectID string   `json:"projectId"`
		NewOrder  []string `json:"newOrder"`
	}{projectID, order}
	err := c.put(ctx, "/columns/move/", body, &resp)
	return resp, err
}

// DeleteColumn deletes a column; the server moves its tasks to the first
// remaining column.
func (c *Client) DeleteColumn(ctx context.Context, columnID string) error {
	return c.delete(ctx, "/columns/"+url.PathEscape(columnID)+"/")
}

// CreateTask creates a task at the end of a column.
func (c *Client) CreateTask(ctx context.Context, in TaskInput) (model.Task, error) {
	var resp model.Task
	err := c.post(ctx, "/tasks/", in, &resp)
	return resp, err
}

// UpdateTask replaces a task's fields.
func (c *Client) UpdateTask(ctx context.Context, taskID string, in TaskInput) (model.Task, error) {
	var resp model.Task
	err := c.put(ctx, "/tasks/"+url.PathEscape(taskID)+"/", in, &resp)
	return resp, err
}

// MoveTask places a task in a column at position.
func (c *Client) MoveTask(ctx context.Context, taskID, toColumnID string, position int) (MovedTask, error) {
	var resp MovedTask
	body := struct {
		ToColumnID string `json:"toColumnId"`
		Position   int    `json:"position"`
	}{toColumnID, position}
	err := c.patch(ctx, "/tasks/"+url.PathEscape(taskID)+"/move/", body, &resp)
	return resp, err
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.delete(ctx, "/tasks/"+url.PathEscape(taskID)+"/")
}

// AddComment posts a comment on a task.
func (c *Client) AddComment(ctx context.Context, taskID, content string) (model.Comment, error) {
	var resp model.Comment
	err := c.post(ctx, "/tasks/"+url.PathEscape(taskID)+"/comments/", map[string]string{"content": content}, &resp)
	return resp, err
}

// UploadAttachment attaches a file to a task.
func (c *Client) UploadAttachment(ctx context.Context, taskID, fileName string, content io.Reader) ([]model.Attachment, error) {
	var resp Attachments
	err := c.upload(ctx, "/tasks/"+url.PathEscape(taskID)+"/attachments/", fileName, content, &resp)
	return resp, err
}

// DeleteAttachment deletes an attachment.
func (c *Client) DeleteAttachment(ctx context.Context, attachmentID string) error {
	return c.delete(ctx, "/attachments/"+url.PathEscape(attachmentID)+"/")
}

// CreateSubtask adds a subtask to a task.
func (c *Client) CreateSubtask(ctx context.Context, taskID, title string) (model.Subtask, error) {
	var resp model.Subtask
	body := struct {
		Title     string `json:"title"`
		Completed bool   `json:"completed"`
	}{Title: title}
	err := c.post(ctx, "/tasks/"+url.PathEscape(taskID)+"/subtasks/", body, &resp)
	return resp, err
}

// UpdateSubtask changes a subtask's title or completion.
func (c *Client) UpdateSubtask(ctx context.Context, taskID, subtaskID string, p SubtaskPatch) (model.Subtask, error) {
	var resp model.Subtask
	err := c.patch(ctx, "/tasks/"+url.PathEscape(taskID)+"/subtasks/"+url.PathEscape(subtaskID)+"/", p, &resp)
	return resp, err
}

// DeleteSubtask deletes a subtask.
func (c *Client) DeleteSubtask(ctx context.Context, taskID, subtaskID string) error {
	return c.delete(ctx, "/tasks/"+url.PathEscape(taskID)+"/subtasks/"+url.PathEscape(subtaskID)+"/")
}
