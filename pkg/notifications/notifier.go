package notifications

import (
	"context"
	"time"
)

type Store interface {
	Add(ctx context.Context, n *Notification) (interface{}, error)
}

// Notifier creates notification records for qualifying events. Callers treat
// it as best-effort: a failed insert must not fail the triggering write.
type Notifier struct {
	Store Store
}

func NewNotifier(store Store) *Notifier {
	return &Notifier{Store: store}
}

// NewComment records a NEW_COMMENT notification for the post author.
// Self-comments are suppressed, a recipient never equals the sender.
func (n *Notifier) NewComment(ctx context.Context, postID interface{}, recipientID, senderID int64) error {
	if recipientID == senderID {
		return nil
	}

	_, err := n.Store.Add(ctx, &Notification{
		Type:        TypeNewComment,
		PostID:      postID,
		RecipientID: recipientID,
		SenderID:    senderID,
		Read:        false,
		IsCleared:   false,
		Created:     time.Now(),
	})

	return err
}
