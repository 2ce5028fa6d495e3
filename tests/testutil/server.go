package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/nhle/boardsync/internal/model"
)

// failure is a canned response returned instead of the real handler.
type failure struct {
	status int
	body   string
}

// FakeAPI is an in-process board service backed by a model.Snapshot.
// Routes are named so tests can inject failures per endpoint.
type FakeAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	token    string
	data     model.Snapshot
	failures map[string][]failure
	calls    map[string]int
}

// NewFakeAPI starts a fake service seeded with snap and closes it when the
// test completes.
func NewFakeAPI(t *testing.T, snap model.Snapshot) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		data:     snap,
		failures: map[string][]failure{},
		calls:    map[string]int{},
	}
	ensureMaps(&f.data)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(f.intercept)

	api.HandleFunc("/data/", f.getData).Methods(http.MethodGet).Name("data")
	api.HandleFunc("/token/", f.login).Methods(http.MethodPost).Name("token")
	api.HandleFunc("/users/me/", f.me).Methods(http.MethodGet).Name("me")
	api.HandleFunc("/push-tokens/", f.noContent).Methods(http.MethodPost).Name("push-register")
	api.HandleFunc("/push-tokens/unregister/", f.noContent).Methods(http.MethodPost).Name("push-unregister")

	api.HandleFunc("/projects/", f.createProject).Methods(http.MethodPost).Name("project-create")
	api.HandleFunc("/projects/{id}/", f.updateProject).Methods(http.MethodPut).Name("project-update")
	api.HandleFunc("/projects/{id}/", f.deleteProject).Methods(http.MethodDelete).Name("project-delete")
	api.HandleFunc("/projects/{id}/chatmessages/", f.chatMessage).Methods(http.MethodPost).Name("chat-send")

	api.HandleFunc("/columns/", f.createColumn).Methods(http.MethodPost).Name("column-create")
	api.HandleFunc("/columns/move/", f.moveColumns).Methods(http.MethodPut).Name("column-move")
	api.HandleFunc("/columns/{id}/", f.updateColumn).Methods(http.MethodPut).Name("column-update")
	api.HandleFunc("/columns/{id}/", f.deleteColumn).Methods(http.MethodDelete).Name("column-delete")

	api.HandleFunc("/tasks/", f.createTask).Methods(http.MethodPost).Name("task-create")
	api.HandleFunc("/tasks/{id}/", f.updateTask).Methods(http.MethodPut).Name("task-update")
	api.HandleFunc("/tasks/{id}/", f.deleteTask).Methods(http.MethodDelete).Name("task-delete")
	api.HandleFunc("/tasks/{id}/move/", f.moveTask).Methods(http.MethodPatch).Name("task-move")
	api.HandleFunc("/tasks/{id}/comments/", f.addComment).Methods(http.MethodPost).Name("comment-create")
	api.HandleFunc("/tasks/{id}/attachments/", f.uploadAttachment).Methods(http.MethodPost).Name("attachment-upload")
	api.HandleFunc("/attachments/{id}/", f.noContent).Methods(http.MethodDelete).Name("attachment-delete")
	api.HandleFunc("/tasks/{id}/subtasks/", f.createSubtask).Methods(http.MethodPost).Name("subtask-create")
	api.HandleFunc("/tasks/{id}/subtasks/{sid}/", f.updateSubtask).Methods(http.MethodPatch).Name("subtask-update")
	api.HandleFunc("/tasks/{id}/subtasks/{sid}/", f.noContent).Methods(http.MethodDelete).Name("subtask-delete")

	api.HandleFunc("/folders/", f.createFolder).Methods(http.MethodPost).Name("folder-create")
	api.HandleFunc("/folders/reorder/", f.reorderFolders).Methods(http.MethodPost).Name("folder-reorder")
	api.HandleFunc("/folders/{id}/", f.updateFolder).Methods(http.MethodPut).Name("folder-update")
	api.HandleFunc("/folders/{id}/", f.deleteFolder).Methods(http.MethodDelete).Name("folder-delete")
	api.HandleFunc("/folders/{id}/move-project/", f.moveProjectInFolder).Methods(http.MethodPost).Name("folder-move-project")

	api.HandleFunc("/teams/", f.createTeam).Methods(http.MethodPost).Name("team-create")
	api.HandleFunc("/teams/{id}/", f.updateTeam).Methods(http.MethodPut).Name("team-update")
	api.HandleFunc("/teams/{id}/", f.deleteTeam).Methods(http.MethodDelete).Name("team-delete")
	api.HandleFunc("/teams/{id}/invite/", f.inviteMember).Methods(http.MethodPost).Name("team-invite")
	api.HandleFunc("/teams/{id}/join/", f.joinTeam).Methods(http.MethodPost).Name("team-join")
	api.HandleFunc("/teams/{id}/requests/{uid}/", f.manageRequest).Methods(http.MethodPost).Name("team-request")

	api.HandleFunc("/messages/", f.directMessage).Methods(http.MethodPost).Name("dm-send")
	api.HandleFunc("/notifications/{id}/", f.markRead).Methods(http.MethodPatch).Name("notification-read")

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

func ensureMaps(s *model.Snapshot) {
	if s.Users == nil {
		s.Users = map[string]model.User{}
	}
	if s.Teams == nil {
		s.Teams = map[string]model.Team{}
	}
	if s.Projects == nil {
		s.Projects = map[string]model.Project{}
	}
	if s.DirectMessages == nil {
		s.DirectMessages = map[string]model.DirectMessage{}
	}
	if s.Folders == nil {
		s.Folders = map[string]model.Folder{}
	}
}

// URL returns the service root, without the /api prefix.
// SetToken makes token the required bearer token on every route except
// login, and the token login hands out. "" disables the check.
func (f *FakeAPI) SetToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *FakeAPI) URL() string {
	return f.Server.URL
}

// Fail makes the next call to the named route answer status with body
// instead of running the handler. Calls queue up.
func (f *FakeAPI) Fail(route string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[route] = append(f.failures[route], failure{status: status, body: body})
}

// Calls returns how many requests reached the named route.
func (f *FakeAPI) Calls(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[route]
}

// Snapshot returns the server-side dataset.
func (f *FakeAPI) Snapshot() model.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneSnapshot(f.data)
}

// SetSnapshot replaces the server-side dataset.
func (f *FakeAPI) SetSnapshot(s model.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = cloneSnapshot(s)
	ensureMaps(&f.data)
}

func cloneSnapshot(s model.Snapshot) model.Snapshot {
	raw, _ := json.Marshal(s)
	var out model.Snapshot
	_ = json.Unmarshal(raw, &out)
	ensureMaps(&out)
	return out
}

func (f *FakeAPI) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if route := mux.CurrentRoute(r); route != nil {
			name = route.GetName()
		}

		f.mu.Lock()
		f.calls[name]++
		var fail *failure
		if queue := f.failures[name]; len(queue) > 0 {
			fail = &queue[0]
			f.failures[name] = queue[1:]
		}
		token := f.token
		f.mu.Unlock()

		if fail != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(fail.status)
			_, _ = io.WriteString(w, fail.body)
			return
		}
		if token != "" && name != "token" &&
			r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decode(r *http.Request, v interface{}) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}

func (f *FakeAPI) noContent(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeAPI) getData(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	snap := cloneSnapshot(f.data)
	f.mu.Unlock()
	// Folders are always sent, even when empty.
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users":          snap.Users,
		"teams":          snap.Teams,
		"projects":       snap.Projects,
		"directMessages": snap.DirectMessages,
		"notifications":  snap.Notifications,
		"folders":        snap.Folders,
	})
}

func (f *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(r, &body) || body.Password == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
		return
	}
	f.mu.Lock()
	token := f.token
	f.mu.Unlock()
	if token == "" {
		token = "token-" + body.Email
	}
	writeJSON(w, http.StatusOK, map[string]string{"access": token})
}

func (f *FakeAPI) me(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.data.Users {
		writeJSON(w, http.StatusOK, u)
		return
	}
	writeError(w, http.StatusNotFound, "user not found")
}

// projectOfTask finds the project holding taskID. Lock must be held.
func (f *FakeAPI) projectOfTask(taskID string) (model.Project, bool) {
	for _, p := range f.data.Projects {
		if _, ok := p.Tasks[taskID]; ok {
			return p.Clone(), true
		}
	}
	return model.Project{}, false
}

// projectOfColumn finds the project holding columnID. Lock must be held.
func (f *FakeAPI) projectOfColumn(columnID string) (model.Project, bool) {
	for _, p := range f.data.Projects {
		if _, ok := p.Columns[columnID]; ok {
			return p.Clone(), true
		}
	}
	return model.Project{}, false
}

func (f *FakeAPI) createProject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Team        string `json:"team"`
	}
	if !decode(r, &body) || body.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	team, ok := f.data.Teams[body.Team]
	if !ok {
		writeError(w, http.StatusBadRequest, "team not found")
		return
	}
	p := model.Project{
		ID:          uuid.NewString(),
		Name:        body.Name,
		Description: body.Description,
		TeamID:      body.Team,
		Columns:     map[string]model.Column{},
		ColumnOrder: []string{},
		Tasks:       map[string]model.Task{},
	}
	f.data.Projects[p.ID] = p
	team = team.Clone()
	team.ProjectIDs = append(team.ProjectIDs, p.ID)
	f.data.Teams[team.ID] = team
	writeJSON(w, http.StatusCreated, map[string]interface{}{"newProject": p, "updatedTeam": team})
}

func (f *FakeAPI) updateProject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body model.Project
	if !decode(r, &body) {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.data.Projects[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	p = p.Clone()
	p.Name = body.Name
	p.Description = body.Description
	f.data.Projects[id] = p
	writeJSON(w, http.StatusOK, p)
}

func (f *FakeAPI) deleteProject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data.Projects, id)
	for fid, folder := range f.data.Folders {
		if idx := model.IndexOf(folder.ProjectIDs, id); idx >= 0 {
			folder = folder.Clone()
			folder.ProjectIDs = append(folder.ProjectIDs[:idx], folder.ProjectIDs[idx+1:]...)
			f.data.Folders[fid] = folder
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeAPI) chatMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body struct {
		Content string `json:"content"`
	}
	if !decode(r, &body) || body.Content == "" {
		writeError(w, http.StatusBadRequest, "Message content required")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.data.Projects[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	msg := model.ChatMessage{
		ID:        uuid.NewString(),
		ProjectID: id,
		Content:   body.Content,
		Timestamp: time.Now().UTC(),
	}
	p = p.Clone()
	p.ChatMessages = append(p.ChatMessages, msg)
	f.data.Projects[id] = p
	writeJSON(w, http.StatusCreated, msg)
}

func (f *FakeAPI) createColumn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title     string `json:"title"`
		ProjectID string `json:"projectId"`
	}
	if !decode(r, &body) || body.Title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.data.Projects[body.ProjectID]
	if !ok {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	p = p.Clone()
	col := model.Column{ID: uuid.NewString(), Title: body.Title, TaskIDs: []string{}}
	p.Columns[col.ID] = col
	p.ColumnOrder = append(p.ColumnOrder, col.ID)
	f.data.Projects[p.ID] = p
	writeJSON(w, http.StatusCreated, map[string]interface{}{"columns": p.Columns, "columnOrder": p.ColumnOrder})
}

func (f *FakeAPI) updateColumn(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body struct {
		NewTitle string `json:"newTitle"`
	}
	if !decode(r, &body) || body.NewTitle == "" {
		writeError(w, http.StatusBadRequest, "newTitle is required")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projectOfColumn(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Column not found")
		return
	}
	col := p.Columns[id]
	col.Title = body.NewTitle
	p.Columns[id] = col
	f.data.Projects[p.ID] = p
	writeJSON(w, http.StatusOK, col)
}

func (f *FakeAPI) moveColumns(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProjectID string   `json:"projectId"`
		NewOrder  []string `json:"newOrder"`
	}
	if !decode(r, &body) {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.data.Projects[body.ProjectID]
	if !ok {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	p = p.Clone()
	p.ColumnOrder = body.NewOrder
	if err := model.CheckProject(p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f.data.Projects[p.ID] = p
	writeJSON(w, http.StatusOK, p.ColumnOrder)
}

func (f *FakeAPI) deleteColumn(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projectOfColumn(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Column not found")
		return
	}
	if len(p.ColumnOrder) <= 1 {
		writeError(w, http.StatusBadRequest, "Cannot delete the only column in a project.")
		return
	}
	idx := p.ColumnIndex(id)
	p.ColumnOrder = append(p.ColumnOrder[:idx], p.ColumnOrder[idx+1:]...)
	first := p.Columns[p.ColumnOrder[0]]
	first.TaskIDs = append(first.TaskIDs, p.Columns[id].TaskIDs...)
	p.Columns[first.ID] = first
	delete(p.Columns, id)
	f.data.Projects[p.ID] = p
	w.WriteHeader(http.StatusNoContent)
}

// taskBody mirrors the fields of a task create or update request.
type taskBody struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Priority    string     `json:"priority"`
	Tags        []string   `json:"tags"`
	Weight      int        `json:"weight"`
	Completed   bool       `json:"completed"`
	ProjectID   string     `json:"projectId"`
	ColumnID    string     `json:"columnId"`
	AssigneeIDs []string   `json:"assigneeIds"`
}

func (f *FakeAPI) applyTaskBody(t *model.Task, b taskBody) {
	t.Title = b.Title
	t.Description = b.Description
	t.DueDate = b.DueDate
	t.Priority = b.Priority
	t.Tags = b.Tags
	t.Weight = b.Weight
	t.Completed = b.Completed
	t.Assignees = nil
	for _, id := range b.AssigneeIDs {
		if u, ok := f.data.Users[id]; ok {
			t.Assignees = append(t.Assignees, u)
		}
	}
}

func (f *FakeAPI) createTask(w http.ResponseWriter, r *http.Request) {
	var body taskBody
	if !decode(r, &body) || body.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.data.Projects[body.ProjectID]
	if !ok {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	p = p.Clone()
	col, ok := p.Columns[body.ColumnID]
	if !ok {
		writeError(w, http.StatusNotFound, "Column not found")
		return
	}
	now := time.Now().UTC()
	t := model.Task{ID: uuid.NewString(), ProjectID: p.ID, CreatedAt: now, UpdatedAt: now}
	f.applyTaskBody(&t, body)
	p.Tasks[t.ID] = t
	col.TaskIDs = append(col.TaskIDs, t.ID)
	p.Columns[col.ID] = col
	f.data.Projects[p.ID] = p
	writeJSON(w, http.StatusCreated, t)
}

func (f *FakeAPI) updateTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body taskBody
	if !decode(r, &body) {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projectOfTask(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	t := p.Tasks[id]
	f.applyTaskBody(&t, body)
	t.UpdatedAt = time.Now().UTC()
	p.Tasks[id] = t
	f.data.Projects[p.ID] = p
	writeJSON(w, http.StatusOK, t)
}

func (f *FakeAPI) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projectOfTask(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	delete(p.Tasks, id)
	for cid, col := range p.Columns {
		if idx := model.IndexOf(col.TaskIDs, id); idx >= 0 {
			col.TaskIDs = append(col.TaskIDs[:idx], col.TaskIDs[idx+1:]...)
			p.Columns[cid] = col
		}
	}
	f.data.Projects[p.ID] = p
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeAPI) moveTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body struct {
		ToColumnID string `json:"toColumnId"`
		Position   int    `json:"position"`
	}
	if !decode(r, &body) || body.ToColumnID == "" {
		writeError(w, http.StatusBadRequest, "toColumnId required")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projectOfTask(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	to, ok := p.Columns[body.ToColumnID]
	if !ok {
		writeError(w, http.StatusBadRequest, "column and task project mismatch")
		return
	}
	for cid, col := range p.Columns {
		if idx := model.IndexOf(col.TaskIDs, id); idx >= 0 {
			col.TaskIDs = append(col.TaskIDs[:idx], col.TaskIDs[idx+1:]...)
			p.Columns[cid] = col
		}
	}
	to = p.Columns[body.ToColumnID]
	pos := body.Position
	if pos < 0 || pos > len(to.TaskIDs) {
		pos = len(to.TaskIDs)
	}
	to.TaskIDs = append(to.TaskIDs[:pos], append([]string{id}, to.TaskIDs[pos:]...)...)
	p.Columns[to.ID] = to
	f.data.Projects[p.ID] = p
	writeJSON(w, http.StatusOK, map[string]interface{}{"columns": p.Columns})
}

func (f *FakeAPI) addComment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body struct {
		Content string `json:"content"`
	}
	if !decode(r, &body) || body.Content == "" {
		writeError(w, http.StatusBadRequest, "content required")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projectOfTask(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	c := model.Comment{ID: uuid.NewString(), Content: body.Content, Timestamp: time.Now().UTC()}
	t := p.Tasks[id]
	t.Comments = append(t.Comments, c)
	p.Tasks[id] = t
	f.data.Projects[p.ID] = p
	writeJSON(w, http.StatusCreated, c)
}

func (f *FakeAPI) uploadAttachment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	file, header, err := r.FormFile("files")
	if err != nil {
		writeError(w, http.StatusBadRequest, "files required")
		return
	}
	file.Close()
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projectOfTask(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	a := model.Attachment{
		ID:        uuid.NewString(),
		Name:      header.Filename,
		URL:       "/media/" + header.Filename,
		CreatedAt: time.Now().UTC(),
	}
	t := p.Tasks[id]
	t.Attachments = append(t.Attachments, a)
	p.Tasks[id] = t
	f.data.Projects[p.ID] = p
	writeJSON(w, http.StatusCreated, []model.Attachment{a})
}

func (f *FakeAPI) createSubtask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body struct {
		Title     string `json:"title"`
		Completed bool   `json:"completed"`
	}
	if !decode(r, &body) || body.Title == "" {
		writeError(w, http.StatusBadRequest, "title required")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projectOfTask(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	st := model.Subtask{ID: uuid.NewString(), Title: body.Title, Completed: body.Completed}
	t := p.Tasks[id]
	t.Subtasks = append(t.Subtasks, st)
	p.Tasks[id] = t
	f.data.Projects[p.ID] = p
	writeJSON(w, http.StatusCreated, st)
}

func (f *FakeAPI) updateSubtask(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var body struct {
		Title     *string `json:"title"`
		Completed *bool   `json:"completed"`
	}
	if !decode(r, &body) {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projectOfTask(vars["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	t := p.Tasks[vars["id"]]
	for i, st := range t.Subtasks {
		if st.ID != vars["sid"] {
			continue
		}
		if body.Title != nil {
			st.Title = *body.Title
		}
		if body.Completed != nil {
			st.Completed = *body.Completed
		}
		t.Subtasks[i] = st
		p.Tasks[t.ID] = t
		f.data.Projects[p.ID] = p
		writeJSON(w, http.StatusOK, st)
		return
	}
	writeError(w, http.StatusNotFound, "Subtask not found")
}

func (f *FakeAPI) createFolder(w http.ResponseWriter, r *http.Request) {
	var body model.Folder
	if !decode(r, &body) || strings.TrimSpace(body.Name) == "" {
		writeError(w, http.StatusBadRequest, "name required")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	folder := model.Folder{ID: uuid.NewString(), Name: body.Name, ProjectIDs: []string{}}
	f.data.Folders[folder.ID] = folder
	writeJSON(w, http.StatusCreated, folder)
}

func (f *FakeAPI) updateFolder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body model.Folder
	if !decode(r, &body) {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	folder, ok := f.data.Folders[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Folder not found")
		return
	}
	folder.Name = body.Name
	if body.ProjectIDs != nil {
		folder.ProjectIDs = body.ProjectIDs
	}
	f.data.Folders[id] = folder
	writeJSON(w, http.StatusOK, folder)
}

func (f *FakeAPI) deleteFolder(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data.Folders, mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeAPI) moveProjectInFolder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body struct {
		ProjectID string `json:"projectId"`
		Action    string `json:"action"`
	}
	if !decode(r, &body) || (body.Action != "add" && body.Action != "remove") {
		writeError(w, http.StatusBadRequest, "invalid action")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	folder, ok := f.data.Folders[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Folder not found")
		return
	}
	folder = folder.Clone()
	idx := model.IndexOf(folder.ProjectIDs, body.ProjectID)
	switch {
	case body.Action == "add" && idx < 0:
		folder.ProjectIDs = append(folder.ProjectIDs, body.ProjectID)
	case body.Action == "remove" && idx >= 0:
		folder.ProjectIDs = append(folder.ProjectIDs[:idx], folder.ProjectIDs[idx+1:]...)
	}
	f.data.Folders[id] = folder
	writeJSON(w, http.StatusOK, folder)
}

func (f *FakeAPI) reorderFolders(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FolderIDs []string `json:"folderIds"`
	}
	if !decode(r, &body) {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Folder, 0, len(body.FolderIDs))
	for _, id := range body.FolderIDs {
		if folder, ok := f.data.Folders[id]; ok {
			out = append(out, folder)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) createTeam(w http.ResponseWriter, r *http.Request) {
	var body model.Team
	if !decode(r, &body) || body.Name == "" {
		writeError(w, http.StatusBadRequest, "name required")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	team := model.Team{
		ID:          uuid.NewString(),
		Name:        body.Name,
		Description: body.Description,
		Icon:        body.Icon,
		ProjectIDs:  []string{},
	}
	f.data.Teams[team.ID] = team
	writeJSON(w, http.StatusCreated, team)
}

func (f *FakeAPI) updateTeam(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body model.Team
	if !decode(r, &body) {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	team, ok := f.data.Teams[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Team not found")
		return
	}
	team.Name = body.Name
	team.Description = body.Description
	team.Icon = body.Icon
	f.data.Teams[id] = team
	writeJSON(w, http.StatusOK, team)
}

func (f *FakeAPI) deleteTeam(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data.Teams, mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeAPI) inviteMember(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body struct {
		Email string `json:"email"`
	}
	if !decode(r, &body) || body.Email == "" {
		writeError(w, http.StatusBadRequest, "email required")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	team, ok := f.data.Teams[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Team not found")
		return
	}
	for _, u := range f.data.Users {
		if u.Email == body.Email {
			team = team.Clone()
			if !team.HasMember(u.ID) {
				team.Members = append(team.Members, model.TeamMember{User: u, Role: model.RoleMember})
			}
			f.data.Teams[id] = team
			writeJSON(w, http.StatusOK, team)
			return
		}
	}
	writeError(w, http.StatusNotFound, "user not found")
}

func (f *FakeAPI) joinTeam(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	team, ok := f.data.Teams[mux.Vars(r)["id"]]
	if !ok {
		writeError(w, http.StatusNotFound, "Team not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "join request submitted", "name": team.Name})
}

func (f *FakeAPI) manageRequest(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var body struct {
		Action string `json:"action"`
	}
	if !decode(r, &body) || (body.Action != "approve" && body.Action != "deny") {
		writeError(w, http.StatusBadRequest, "invalid action")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	team, ok := f.data.Teams[vars["id"]]
	if !ok {
		writeError(w, http.StatusNotFound, "Team not found")
		return
	}
	user, ok := f.data.Users[vars["uid"]]
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	team = team.Clone()
	if idx := model.IndexOf(team.JoinRequests, user.ID); idx >= 0 {
		team.JoinRequests = append(team.JoinRequests[:idx], team.JoinRequests[idx+1:]...)
	}
	if body.Action == "approve" && !team.HasMember(user.ID) {
		team.Members = append(team.Members, model.TeamMember{User: user, Role: model.RoleMember})
	}
	f.data.Teams[team.ID] = team
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": body.Action + "d", "team": team})
}

func (f *FakeAPI) directMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ReceiverID string `json:"receiverId"`
		Content    string `json:"content"`
	}
	if !decode(r, &body) || body.Content == "" {
		writeError(w, http.StatusBadRequest, "content required")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	dm := model.DirectMessage{
		ID:         uuid.NewString(),
		ReceiverID: body.ReceiverID,
		Content:    body.Content,
		Timestamp:  time.Now().UTC(),
	}
	f.data.DirectMessages[dm.ID] = dm
	writeJSON(w, http.StatusCreated, dm)
}

func (f *FakeAPI) markRead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.data.Notifications {
		if n.ID == id {
			n.Read = true
			f.data.Notifications[i] = n
			writeJSON(w, http.StatusOK, n)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Notification not found")
}
