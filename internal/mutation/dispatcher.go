package mutation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/nhle/boardsync/internal/api"
	"github.com/nhle/boardsync/internal/cache"
	"github.com/nhle/boardsync/internal/logging"
	"github.com/nhle/boardsync/internal/model"
)

var (
	// ErrNotFound is returned when a command names an entity the store
	// does not hold.
	ErrNotFound = errors.New("not found")
	// ErrLastColumn is returned when deleting the only column of a project.
	ErrLastColumn = errors.New("cannot delete the only column in a project")
)

// Client is the subset of the API client the dispatcher calls.
type Client interface {
	CreateProject(ctx context.Context, name, description, teamID string) (api.CreatedProject, error)
	UpdateProject(ctx context.Context, p model.Project) (model.Project, error)
	DeleteProject(ctx context.Context, id string) error
	SendChatMessage(ctx context.Context, projectID, content string) (model.ChatMessage, error)

	CreateColumn(ctx context.Context, projectID, title string) (api.ColumnLayout, error)
	UpdateColumn(ctx context.Context, columnID, title string) (model.Column, error)
	MoveColumns(ctx context.Context, projectID string, order []string) ([]string, error)
	DeleteColumn(ctx context.Context, columnID string) error

	CreateTask(ctx context.Context, in api.TaskInput) (model.Task, error)
	UpdateTask(ctx context.Context, taskID string, in api.TaskInput) (model.Task, error)
	MoveTask(ctx context.Context, taskID, toColumnID string, position int) (api.MovedTask, error)
	DeleteTask(ctx context.Context, taskID string) error
	AddComment(ctx context.Context, taskID, content string) (model.Comment, error)
	UploadAttachment(ctx context.Context, taskID, fileName string, content io.Reader) ([]model.Attachment, error)
	DeleteAttachment(ctx context.Context, attachmentID string) error
	CreateSubtask(ctx context.Context, taskID, title string) (model.Subtask, error)
	UpdateSubtask(ctx context.Context, taskID, subtaskID string, p api.SubtaskPatch) (model.Subtask, error)
	DeleteSubtask(ctx context.Context, taskID, subtaskID string) error

	CreateFolder(ctx context.Context, name string) (model.Folder, error)
	UpdateFolder(ctx context.Context, f model.Folder) (model.Folder, error)
	DeleteFolder(ctx context.Context, id string) error
	MoveProjectInFolder(ctx context.Context, folderID, projectID, action string) (model.Folder, error)
	ReorderFolders(ctx context.Context, ids []string) ([]model.Folder, error)

	CreateTeam(ctx context.Context, name, description, icon string) (model.Team, error)
	UpdateTeam(ctx context.Context, t model.Team) (model.Team, error)
	DeleteTeam(ctx context.Context, id string) error
	InviteMember(ctx context.Context, teamID, email string) (model.Team, error)
	RequestToJoin(ctx context.Context, teamID string) error
	ManageJoinRequest(ctx context.Context, teamID, userID string, approve bool) (api.JoinDecision, error)

	SendDirectMessage(ctx context.Context, receiverID, content string) (model.DirectMessage, error)
	MarkNotificationRead(ctx context.Context, id string) (model.Notification, error)
}

// Command is a user-issued mutation. Op names it in logs.
type Command interface {
	Op() string
	plan(d *Dispatcher) (*op, error)
}

// Result carries what a caller may need after a command succeeds.
type Result struct {
	// ID is the server id of a created entity.
	ID string
	// Message replaces the command's success notice when set.
	Message string
}

// settleFunc computes the authoritative patch once the server answered.
// It runs after the call so it sees the store as it is then.
type settleFunc func() (cache.Patch, Result)

// op is a planned command. successKind defaults to NoticeSuccess.
type op struct {
	keys        cache.KeySet
	optimistic  cache.Patch
	call        func(ctx context.Context) (settleFunc, error)
	failure     string
	success     string
	successKind NoticeKind
}

// Options configures a Dispatcher.
type Options struct {
	Tracker          *Tracker
	Notifier         Notifier
	MaxFailures      uint32
	OpenTimeout      time.Duration
	OnSessionExpired func()
	// CurrentUser returns the signed-in user, used as the author of
	// placeholder messages.
	CurrentUser func() model.User
}

// Dispatcher runs commands against the store and the server: the
// optimistic patch first, then the call, then either the server's answer
// or a rollback.
type Dispatcher struct {
	client      Client
	store       *cache.Store
	tracker     *Tracker
	notifier    Notifier
	breaker     *gobreaker.CircuitBreaker
	onExpired   func()
	currentUser func() model.User
	now         func() time.Time
}

// NewDispatcher creates a dispatcher writing to s.
func NewDispatcher(client Client, s *cache.Store, opts Options) *Dispatcher {
	if opts.Tracker == nil {
		opts.Tracker = NewTracker()
	}
	if opts.Notifier == nil {
		opts.Notifier = NewNotices(0)
	}
	if opts.MaxFailures == 0 {
		opts.MaxFailures = 5
	}
	if opts.OpenTimeout == 0 {
		opts.OpenTimeout = 30 * time.Second
	}
	if opts.CurrentUser == nil {
		opts.CurrentUser = func() model.User { return model.User{} }
	}
	maxFailures := opts.MaxFailures

	d := &Dispatcher{
		client:      client,
		store:       s,
		tracker:     opts.Tracker,
		notifier:    opts.Notifier,
		onExpired:   opts.OnSessionExpired,
		currentUser: opts.CurrentUser,
		now:         time.Now,
	}
	d.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "mutations",
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || api.IsClientError(err) || api.IsSessionExpired(err) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})
	return d
}

// Tracker returns the tracker recording in-flight mutations. The refresh
// scheduler reads it to keep their entities.
func (d *Dispatcher) Tracker() *Tracker {
	return d.tracker
}

// BreakerState reports the mutation circuit breaker's state.
func (d *Dispatcher) BreakerState() gobreaker.State {
	return d.breaker.State()
}

// Dispatch runs cmd. On failure the affected entities are back to their
// state before the command, a notice has been published and the error is
// returned.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	log := logging.Logger.WithField("command", cmd.Op())

	o, err := cmd.plan(d)
	if err != nil {
		log.WithError(err).Info("command rejected")
		d.notify(NoticeError, rejectMessage(err))
		return Result{}, fmt.Errorf("%s: %w", cmd.Op(), err)
	}
	if o == nil {
		log.Debug("command changes nothing")
		return Result{}, nil
	}

	seq := d.tracker.Begin(o.keys)
	defer d.tracker.End(seq)

	undo := d.store.Capture(o.keys)
	if !o.optimistic.Empty() {
		if err := d.store.ApplyPatch(o.optimistic); err != nil {
			log.WithError(err).Error("optimistic patch rejected")
			d.notify(NoticeError, o.failure)
			return Result{}, fmt.Errorf("%s: %w", cmd.Op(), err)
		}
	}

	var settle settleFunc
	_, err = d.breaker.Execute(func() (interface{}, error) {
		s, err := o.call(ctx)
		settle = s
		return nil, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = &api.NetworkError{Method: "DISPATCH", Path: cmd.Op(), Err: err}
		}
		d.store.Restore(undo)
		log.WithError(err).Warn("command failed; rolled back")
		d.fail(o.failure, err)
		return Result{}, err
	}

	var res Result
	if settle != nil {
		var patch cache.Patch
		patch, res = settle()
		if !patch.Empty() {
			d.tracker.Touch(seq, patch.Keys())
			if err := d.store.ApplyPatch(patch); err != nil {
				// The optimistic state stays; the next refresh corrects it.
				log.WithError(err).Warn("server response rejected by store")
			}
		}
	}
	if res.Message != "" {
		o.success = res.Message
	}
	if o.success != "" {
		kind := o.successKind
		if kind == "" {
			kind = NoticeSuccess
		}
		d.notify(kind, o.success)
	}
	log.Debug("command applied")
	return res, nil
}

func (d *Dispatcher) fail(fallback string, err error) {
	if api.IsSessionExpired(err) {
		if d.onExpired != nil {
			d.onExpired()
		}
		return
	}
	if apiErr, ok := api.AsAPIError(err); ok && api.IsClientError(err) {
		d.notify(NoticeError, apiErr.Message)
		return
	}
	d.notify(NoticeError, fallback)
}

func (d *Dispatcher) notify(kind NoticeKind, msg string) {
	d.notifier.Notify(Notice{Kind: kind, Message: msg, At: d.now()})
}

func rejectMessage(err error) string {
	switch {
	case errors.Is(err, ErrLastColumn):
		return "Cannot delete the only column in a project."
	case errors.Is(err, ErrNotFound):
		return "That item no longer exists."
	default:
		return err.Error()
	}
}

func placeholderID() string {
	return "tmp-" + uuid.NewString()
}

// project returns the stored project or ErrNotFound.
func (d *Dispatcher) project(id string) (model.Project, error) {
	p, ok := d.store.Project(id)
	if !ok {
		return model.Project{}, notFound("project", id)
	}
	return p, nil
}

func (d *Dispatcher) task(projectID, taskID string) (model.Project, model.Task, error) {
	p, err := d.project(projectID)
	if err != nil {
		return p, model.Task{}, err
	}
	t, ok := p.Tasks[taskID]
	if !ok {
		return p, t, notFound("task", taskID)
	}
	return p, t, nil
}

// patchProject builds a settle step that re-reads the project, lets edit
// change it and repairs whatever the server's answer left inconsistent.
func (d *Dispatcher) patchProject(projectID string, edit func(p *model.Project)) settleFunc {
	return func() (cache.Patch, Result) {
		var patch cache.Patch
		p, ok := d.store.Project(projectID)
		if !ok {
			return patch, Result{}
		}
		edit(&p)
		if model.NormalizeProject(&p) {
			logRepaired(p.ID)
		}
		patch.PutProject(p)
		return patch, Result{}
	}
}
