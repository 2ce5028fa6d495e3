package mutation

import (
	"context"

	"github.com/nhle/boardsync/internal/cache"
	"github.com/nhle/boardsync/internal/model"
)

// SendDirectMessage sends a one-to-one message.
type SendDirectMessage struct {
	ReceiverID string
	Content    string
}

func (SendDirectMessage) Op() string { return "send direct message" }

func (c SendDirectMessage) plan(d *Dispatcher) (*op, error) {
	tmp := placeholderID()
	key := cache.Key{Kind: cache.KindDirectMessage, ID: tmp}

	var patch cache.Patch
	patch.PutDirectMessage(model.DirectMessage{
		ID:         tmp,
		SenderID:   d.currentUser().ID,
		ReceiverID: c.ReceiverID,
		Content:    c.Content,
		Timestamp:  d.now(),
	})
	return &op{
		keys:       cache.NewKeySet(key),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			saved, err := d.client.SendDirectMessage(ctx, c.ReceiverID, c.Content)
			if err != nil {
				return nil, err
			}
			return func() (cache.Patch, Result) {
				var patch cache.Patch
				patch.Delete(key)
				patch.PutDirectMessage(saved)
				return patch, Result{ID: saved.ID}
			}, nil
		},
		failure: "Failed to send message.",
	}, nil
}

// MarkNotificationRead marks a notification as read.
type MarkNotificationRead struct {
	ID string
}

func (MarkNotificationRead) Op() string { return "mark notification read" }

func (c MarkNotificationRead) plan(d *Dispatcher) (*op, error) {
	var current model.Notification
	found := false
	for _, n := range d.store.Notifications() {
		if n.ID == c.ID {
			current, found = n, true
			break
		}
	}
	if !found {
		return nil, notFound("notification", c.ID)
	}
	if current.Read {
		return nil, nil
	}
	current.Read = true

	var patch cache.Patch
	patch.PutNotification(current)
	return &op{
		keys:       cache.NewKeySet(cache.Key{Kind: cache.KindNotification, ID: c.ID}),
		optimistic: patch,
		call: func(ctx context.Context) (settleFunc, error) {
			saved, err := d.client.MarkNotificationRead(ctx, c.ID)
			if err != nil {
				return nil, err
			}
			return func() (cache.Patch, Result) {
				var patch cache.Patch
				if saved.ID == "" {
					return patch, Result{}
				}
				patch.PutNotification(saved)
				return patch, Result{}
			}, nil
		},
		failure: "Failed to update notification.",
	}, nil
}
