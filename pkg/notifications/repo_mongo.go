package notifications

import (
	"context"
	"socialfeed/pkg/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationsRepoMongo struct {
	collection common.CollectionHelper
}

func NewNotificationsRepoMongo(db *mongo.Database) *NotificationsRepoMongo {
	return &NotificationsRepoMongo{collection: &common.MongoCollection{Collection: db.Collection("notifications")}}
}

func (repo *NotificationsRepoMongo) Add(ctx context.Context, n *Notification) (interface{}, error) {
	res, err := repo.collection.InsertOne(ctx, n)
	if err != nil {
		return nil, err
	}

	return res.GetInsertedID(), nil
}

// GetByRecipient returns the user's notifications, newest first. A nil
// cleared leaves the isCleared filter off, so cleared and active records
// come back together. limit <= 0 means no limit.
func (repo *NotificationsRepoMongo) GetByRecipient(ctx context.Context, userID int64, limit int64, cleared *bool) ([]*Notification, error) {
	filter := bson.M{"recipientID": userID}
	if cleared != nil {
		filter["isCleared"] = *cleared
	}

	opts := options.Find().SetSort(bson.D{{Key: "created", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cur, err := repo.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	defer cur.Close(ctx)

	var result []*Notification
	err = cur.All(ctx, &result)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (repo *NotificationsRepoMongo) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return repo.collection.CountDocuments(ctx, bson.M{
		"recipientID": userID,
		"read":        false,
		"isCleared":   false,
	})
}

// MarkAllRead flips read on the user's unread notifications. isCleared is
// left untouched.
func (repo *NotificationsRepoMongo) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	res, err := repo.collection.UpdateMany(ctx,
		bson.M{"recipientID": userID, "read": false},
		bson.D{
			{Key: "$set", Value: bson.D{{Key: "read", Value: true}}},
		})
	if err != nil {
		return 0, err
	}

	return res.GetModifiedCount(), nil
}

// ClearAll sets isCleared on all of the user's notifications regardless of
// their read state.
func (repo *NotificationsRepoMongo) ClearAll(ctx context.Context, userID int64) (int64, error) {
	res, err := repo.collection.UpdateMany(ctx,
		bson.M{"recipientID": userID},
		bson.D{
			{Key: "$set", Value: bson.D{{Key: "isCleared", Value: true}}},
		})
	if err != nil {
		return 0, err
	}

	return res.GetModifiedCount(), nil
}

// DeleteByPostID removes the notifications referencing a deleted post.
func (repo *NotificationsRepoMongo) DeleteByPostID(ctx context.Context, postID interface{}) (int64, error) {
	res, err := repo.collection.DeleteMany(ctx, bson.M{"postID": postID})
	if err != nil {
		return 0, err
	}

	return res.GetDeletedCount(), nil
}
