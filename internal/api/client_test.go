package api_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/nhle/boardsync/internal/api"
	"github.com/nhle/boardsync/internal/logging"
	"github.com/nhle/boardsync/internal/model"
	"github.com/nhle/boardsync/tests/testutil"
)

func init() {
	logging.Discard()
}

type staticToken string

func (s staticToken) Token() (string, error) { return string(s), nil }

type failingToken struct{ err error }

func (f failingToken) Token() (string, error) { return "", f.err }

func seed() model.Snapshot {
	return model.Snapshot{
		Users: map[string]model.User{"u1": {ID: "u1", Name: "Ann", Email: "ann@example.com"}},
		Teams: map[string]model.Team{"team1": {ID: "team1", Name: "Core"}},
		Projects: map[string]model.Project{
			"p1": {
				ID: "p1", Name: "Launch", TeamID: "team1",
				Columns: map[string]model.Column{
					"a": {ID: "a", Title: "To do", TaskIDs: []string{"t1", "t2"}},
					"b": {ID: "b", Title: "Done", TaskIDs: []string{}},
				},
				ColumnOrder: []string{"a", "b"},
				Tasks: map[string]model.Task{
					"t1": {ID: "t1", ProjectID: "p1", Title: "one"},
					"t2": {ID: "t2", ProjectID: "p1", Title: "two"},
				},
			},
		},
		Notifications: []model.Notification{{ID: "n1", Message: "hello"}},
	}
}

func newClient(t *testing.T) (*api.Client, *testutil.FakeAPI) {
	t.Helper()
	fake := testutil.NewFakeAPI(t, seed())
	fake.SetToken("secret")
	return api.NewClient(fake.URL(), staticToken("secret"), 5*time.Second), fake
}

func TestFetchSnapshot(t *testing.T) {
	c, _ := newClient(t)

	snap, err := c.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatalf("FetchSnapshot() error = %v", err)
	}
	if len(snap.Projects) != 1 || snap.Projects["p1"].Name != "Launch" {
		t.Errorf("Projects = %+v, want p1 Launch", snap.Projects)
	}
	if snap.Folders == nil {
		t.Error("Folders = nil, want the empty map the server sent")
	}
	if len(snap.Notifications) != 1 {
		t.Errorf("Notifications = %d, want 1", len(snap.Notifications))
	}
}

func TestSessionExpired(t *testing.T) {
	fake := testutil.NewFakeAPI(t, seed())
	fake.SetToken("secret")
	c := api.NewClient(fake.URL(), staticToken("stale"), 5*time.Second)

	_, err := c.FetchSnapshot(context.Background())
	if !api.IsSessionExpired(err) {
		t.Fatalf("FetchSnapshot() error = %v, want SessionExpiredError", err)
	}
}

func TestUnauthorizedExemptEndpoints(t *testing.T) {
	c, fake := newClient(t)
	fake.Fail("token", http.StatusUnauthorized, `{"detail":"No active account found"}`)
	fake.Fail("push-register", http.StatusUnauthorized, `{}`)

	_, err := c.Login(context.Background(), "ann@example.com", "pw")
	if api.IsSessionExpired(err) {
		t.Fatal("login 401 treated as session expiry")
	}
	ae, ok := api.AsAPIError(err)
	if !ok || ae.Status != http.StatusUnauthorized || ae.Message != "No active account found" {
		t.Errorf("Login() error = %v, want APIError 401 with detail", err)
	}

	err = c.RegisterPushToken(context.Background(), "device", "terminal")
	if api.IsSessionExpired(err) || err == nil {
		t.Errorf("RegisterPushToken() error = %v, want plain APIError", err)
	}
}

func TestErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "detail", body: `{"detail":"Not allowed"}`, want: "Not allowed"},
		{name: "message", body: `{"message":"Bad title"}`, want: "Bad title"},
		{name: "error", body: `{"error":"Column not found"}`, want: "Column not found"},
		{name: "unstructured", body: `oops`, want: "API request failed with status 400"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, fake := newClient(t)
			fake.Fail("column-update", http.StatusBadRequest, tt.body)

			_, err := c.UpdateColumn(context.Background(), "a", "New")
			ae, ok := api.AsAPIError(err)
			if !ok {
				t.Fatalf("UpdateColumn() error = %v, want APIError", err)
			}
			if ae.Message != tt.want {
				t.Errorf("Message = %q, want %q", ae.Message, tt.want)
			}
			if !api.IsClientError(err) {
				t.Error("IsClientError() = false for a 400")
			}
		})
	}
}

func TestNetworkError(t *testing.T) {
	c := api.NewClient("http://127.0.0.1:1", nil, time.Second)
	_, err := c.FetchSnapshot(context.Background())
	if !api.IsNetwork(err) {
		t.Fatalf("FetchSnapshot() error = %v, want NetworkError", err)
	}
}

func TestTokenSourceError(t *testing.T) {
	fake := testutil.NewFakeAPI(t, seed())
	boom := errors.New("keyring locked")
	c := api.NewClient(fake.URL(), failingToken{err: boom}, time.Second)

	_, err := c.FetchSnapshot(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("FetchSnapshot() error = %v, want wrapped token error", err)
	}
	if fake.Calls("data") != 0 {
		t.Error("request sent despite token error")
	}
}

func TestMoveTaskReturnsColumns(t *testing.T) {
	c, _ := newClient(t)

	moved, err := c.MoveTask(context.Background(), "t1", "b", 0)
	if err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}
	if got := moved.Columns["b"].TaskIDs; len(got) != 1 || got[0] != "t1" {
		t.Errorf("column b = %v, want [t1]", got)
	}
	if got := moved.Columns["a"].TaskIDs; len(got) != 1 || got[0] != "t2" {
		t.Errorf("column a = %v, want [t2]", got)
	}
}

func TestUploadAttachment(t *testing.T) {
	c, _ := newClient(t)

	atts, err := c.UploadAttachment(context.Background(), "t1", "notes.txt", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("UploadAttachment() error = %v", err)
	}
	if len(atts) != 1 || atts[0].Name != "notes.txt" {
		t.Errorf("attachments = %+v, want one named notes.txt", atts)
	}
}

func TestDeleteReturnsNoContent(t *testing.T) {
	c, fake := newClient(t)
	if err := c.DeleteTask(context.Background(), "t2"); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if _, ok := fake.Snapshot().Projects["p1"].Tasks["t2"]; ok {
		t.Error("task t2 still on the server")
	}
}

func TestManageJoinRequest(t *testing.T) {
	c, _ := newClient(t)
	dec, err := c.ManageJoinRequest(context.Background(), "team1", "u1", true)
	if err != nil {
		t.Fatalf("ManageJoinRequest() error = %v", err)
	}
	if !dec.Team.HasMember("u1") {
		t.Error("approved user is not a member")
	}
}
