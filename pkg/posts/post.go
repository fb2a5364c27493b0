package posts

import (
	"time"
)

type Post struct {
	ID       interface{} `bson:"_id,omitempty"`
	Title    string      `bson:"title"`
	Content  string      `bson:"content"`
	MediaURL string      `bson:"mediaURL,omitempty"`
	Upvotes  int         `bson:"upvotes"`
	AuthorID int64       `bson:"authorID"`
	Created  time.Time   `bson:"created"`
	Updated  time.Time   `bson:"updated"`
}
