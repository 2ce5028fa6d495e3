package api

import (
	"context"
	"net/url"

	"github.com/nhle/boardsync/internal/model"
)

// Folder move actions.
const (
	FolderAdd    = "add"
	FolderRemove = "remove"
)

// CreateFolder creates an empty folder.
func (c *Client) CreateFolder(ctx context.Context, name string) (model.Folder, error) {
	var resp model.Folder
	body := struct {
		Name       string   `json:"name"`
		ProjectIDs []string `json:"projectIds"`
	}{name, []string{}}
	err := c.post(ctx, "/folders/", body, &resp)
	return resp, err
}

// UpdateFolder replaces a folder's name and project list.
func (c *Client) UpdateFolder(ctx context.Context, f model.Folder) (model.Folder, error) {
	var resp model.Folder
	body := struct {
		Name       string   `json:"name"`
		ProjectIDs []string `json:"projectIds"`
	}{f.Name, f.ProjectIDs}
	err := c.put(ctx, "/folders/"+url.PathEscape(f.ID)+"/", body, &resp)
	return resp, err
}

// DeleteFolder deletes a folder; its projects become uncategorized.
func (c *Client) DeleteFolder(ctx context.Context, id string) error {
	return c.delete(ctx, "/folders/"+url.PathEscape(id)+"/")
}

// MoveProjectInFolder adds a project to, or removes it from, a folder.
func (c *Client) MoveProjectInFolder(ctx context.Context, folderID, projectID, action string) (model.Folder, error) {
	var resp model.Folder
	body := map[string]string{"projectId": projectID, "action": action}
	err := c.post(ctx, "/folders/"+url.PathEscape(folderID)+"/move-project/", body, &resp)
	return resp, err
}

// ReorderFolders sets the folder display order.
func (c *Client) ReorderFolders(ctx context.Context, ids []string) ([]model.Folder, error) {
	var resp []model.Folder
	body := struct {
		FolderIDs []string `json:"folderIds"`
	}{ids}
	err := c.post(ctx, "/folders/reorder/", body, &resp)
	return resp, err
}

// CreateTeam creates a team owned by the session's user.
func (c *Client) CreateTeam(ctx context.Context, name, description, icon string) (model.Team, error) {
	var resp model.Team
	body := map[string]string{"name": name, "description": description, "icon": icon}
	err := c.post(ctx, "/teams/", body, &resp)
	return resp, err
}

// UpdateTeam replaces a team's fields.
func (c *Client) UpdateTeam(ctx context.Context, t model.Team) (model.Team, error) {
	var resp model.Team
	err := c.put(ctx, "/teams/"+url.PathEscape(t.ID)+"/", t, &resp)
	return resp, err
}

// DeleteTeam deletes a team.
func (c *Client) DeleteTeam(ctx context.Context, id string) error {
	return c.delete(ctx, "/teams/"+url.PathEscape(id)+"/")
}

// InviteMember adds the user with email to a team.
func (c *Client) InviteMember(ctx context.Context, teamID, email string) (model.Team, error) {
	var resp model.Team
	err := c.post(ctx, "/teams/"+url.PathEscape(teamID)+"/invite/", map[string]string{"email": email}, &resp)
	return resp, err
}

// RequestToJoin asks to join a team.
func (c *Client) RequestToJoin(ctx context.Context, teamID string) error {
	return c.post(ctx, "/teams/"+url.PathEscape(teamID)+"/join/", nil, nil)
}

// ManageJoinRequest approves or denies a pending join request.
func (c *Client) ManageJoinRequest(ctx context.Context, teamID, userID string, approve bool) (JoinDecision, error) {
	action := "deny"
	if approve {
		action = "approve"
	}
	var resp JoinDecision
	err := c.post(ctx, "/teams/"+url.PathEscape(teamID)+"/requests/"+url.PathEscape(userID)+"/",
		map[string]string{"action": action}, &resp)
	return resp, err
}

// SendDirectMessage sends a message to another user.
func (c *Client) SendDirectMessage(ctx context.Context, receiverID, content string) (model.DirectMessage, error) {
	var resp model.DirectMessage
	body := map[string]string{"receiverId": receiverID, "content": content}
	err := c.post(ctx, "/messages/", body, &resp)
	return resp, err
}

// MarkNotificationRead flags a notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) (model.Notification, error) {
	var resp model.Notification
	err := c.patch(ctx, "/notifications/"+url.PathEscape(id)+"/", map[string]bool{"read": true}, &resp)
	return resp, err
}
