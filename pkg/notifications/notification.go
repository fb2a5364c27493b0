package notifications

import "time"

type Type string

const (
	TypeNewComment Type = "NEW_COMMENT"
	// TypeNewUpvote is part of the client contract but nothing produces it yet.
	TypeNewUpvote Type = "NEW_UPVOTE"
)

type Notification struct {
	ID          interface{} `bson:"_id,omitempty"`
	Type        Type        `bson:"type"`
	PostID      interface{} `bson:"postID"`
	RecipientID int64       `bson:"recipientID"`
	SenderID    int64       `bson:"senderID"`
	Read        bool        `bson:"read"`
	IsCleared   bool        `bson:"isCleared"`
	Created     time.Time   `bson:"created"`
}
