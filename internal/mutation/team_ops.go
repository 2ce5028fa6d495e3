package mutation

import (
	"context"
	"fmt"

	"github.com/nhle/boardsync/internal/cache"
	"github.com/nhle/boardsync/internal/model"
)

// CreateTeam creates a team with the current user as its admin.
type CreateTeam struct {
	Name        string
	Description string
	Icon        string
}

func (CreateTeam) Op() string { return "create team" }

func (c CreateTeam) plan(d *Dispatcher) (*op, error) {
	tmp := placeholderID()
	team := model.Team{
		ID:           tmp,
		Name:         c.Name,
		Description:  c.Description,
		Icon:         c.Icon,
		ProjectIDs:   []string{},
		JoinRequests: []string{},
	}
	if me := d.currentUser(); me.ID != "" {
		team.Members = []model.TeamMember{{User: me, Role: model.RoleAdmin}}
	}
	var patch cache.Patch
	patch.PutTeam(team)
	return &op{
		keys:       cache.NewKeySet(cache.TeamKey(tmp)),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			saved, err := d.client.CreateTeam(ctx, c.Name, c.Description, c.Icon)
			if err != nil {
				return nil, err
			}
			return func() (cache.Patch, Result) {
				var patch cache.Patch
				patch.Delete(cache.TeamKey(tmp))
				patch.PutTeam(saved)
				return patch, Result{ID: saved.ID}
			}, nil
		},
		failure: "Failed to create team.",
		success: "Team created!",
	}, nil
}

// UpdateTeam replaces a team's fields.
type UpdateTeam struct {
	Team model.Team
}

func (UpdateTeam) Op() string { return "update team" }

func (c UpdateTeam) plan(d *Dispatcher) (*op, error) {
	if _, ok := d.store.Team(c.Team.ID); !ok {
		return nil, notFound("team", c.Team.ID)
	}
	next := c.Team.Clone()
	var patch cache.Patch
	patch.PutTeam(next)
	return &op{
		keys:       cache.NewKeySet(cache.TeamKey(next.ID)),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			saved, err := d.client.UpdateTeam(ctx, next)
			if err != nil {
				return nil, err
			}
			return putTeam(saved), nil
		},
		failure: "Failed to update team.",
	}, nil
}

// DeleteTeam removes a team. Its projects disappear with the next
// refresh.
type DeleteTeam struct {
	ID string
}

func (DeleteTeam) Op() string { return "delete team" }

func (c DeleteTeam) plan(d *Dispatcher) (*op, error) {
	if _, ok := d.store.Team(c.ID); !ok {
		return nil, notFound("team", c.ID)
	}
	var patch cache.Patch
	patch.Delete(cache.TeamKey(c.ID))
	return &op{
		keys:       cache.NewKeySet(cache.TeamKey(c.ID)),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			return nil, d.client.DeleteTeam(ctx, c.ID)
		},
		failure:     "Failed to delete team.",
		success:     "Team deleted.",
		successKind: NoticeInfo,
	}, nil
}

// InviteMember adds the user with the given email to a team.
type InviteMember struct {
	TeamID string
	Email  string
}

func (InviteMember) Op() string { return "invite member" }

func (c InviteMember) plan(d *Dispatcher) (*op, error) {
	team, ok := d.store.Team(c.TeamID)
	if !ok {
		return nil, notFound("team", c.TeamID)
	}
	who := c.Email
	var patch cache.Patch
	if u, ok := userByEmail(d.store.Users(), c.Email); ok {
		who = u.Name
		if !team.HasMember(u.ID) {
			team.Members = append(team.Members, model.TeamMember{User: u, Role: model.RoleMember})
			patch.PutTeam(team)
		}
	}
	return &op{
		keys:       cache.NewKeySet(cache.TeamKey(c.TeamID)),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			saved, err := d.client.InviteMember(ctx, c.TeamID, c.Email)
			if err != nil {
				return nil, err
			}
			return func() (cache.Patch, Result) {
				patch, _ := putTeam(saved)()
				return patch, Result{Message: fmt.Sprintf("Successfully added %s to %s.", who, saved.Name)}
			}, nil
		},
		failure: "Failed to invite member.",
	}, nil
}

func userByEmail(users map[string]model.User, email string) (model.User, bool) {
	for _, u := range users {
		if u.Email != "" && u.Email == email {
			return u, true
		}
	}
	return model.User{}, false
}

// RequestToJoin asks to join a team. Nothing changes locally; the admins
// see the request after their next refresh.
type RequestToJoin struct {
	TeamID string
}

func (RequestToJoin) Op() string { return "request to join" }

func (c RequestToJoin) plan(d *Dispatcher) (*op, error) {
	name := c.TeamID
	if team, ok := d.store.Team(c.TeamID); ok {
		name = team.Name
	}
	return &op{
		keys: cache.NewKeySet(cache.TeamKey(c.TeamID)),
		call: func(ctx context.Context) (settleFunc, error) {
			return nil, d.client.RequestToJoin(ctx, c.TeamID)
		},
		failure: "Failed to send join request.",
		success: fmt.Sprintf("Your request to join %s has been sent.", name),
	}, nil
}

// ManageJoinRequest approves or denies a pending join request.
type ManageJoinRequest struct {
	TeamID  string
	UserID  string
	Approve bool
}

func (ManageJoinRequest) Op() string { return "manage join request" }

func (c ManageJoinRequest) plan(d *Dispatcher) (*op, error) {
	team, ok := d.store.Team(c.TeamID)
	if !ok {
		return nil, notFound("team", c.TeamID)
	}
	team.JoinRequests = model.Remove(team.JoinRequests, c.UserID)
	if c.Approve && !team.HasMember(c.UserID) {
		u, ok := d.store.User(c.UserID)
		if !ok {
			u = model.User{ID: c.UserID}
		}
		team.Members = append(team.Members, model.TeamMember{User: u, Role: model.RoleMember})
	}
	var patch cache.Patch
	patch.PutTeam(team)
	return &op{
		keys:       cache.NewKeySet(cache.TeamKey(c.TeamID)),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			decision, err := d.client.ManageJoinRequest(ctx, c.TeamID, c.UserID, c.Approve)
			if err != nil {
				return nil, err
			}
			return func() (cache.Patch, Result) {
				var patch cache.Patch
				if decision.Team.ID != "" {
					patch.PutTeam(decision.Team)
				}
				return patch, Result{Message: decision.Message}
			}, nil
		},
		failure:     "Failed to update join request.",
		successKind: NoticeInfo,
	}, nil
}

func putTeam(t model.Team) settleFunc {
	return func() (cache.Patch, Result) {
		var patch cache.Patch
		patch.PutTeam(t)
		return patch, Result{}
	}
}
