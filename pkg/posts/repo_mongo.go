package posts

import (
	"context"
	"socialfeed/pkg/common"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PostsRepoMongo struct {
	collection common.CollectionHelper
}

func NewMongoClient(ctx context.Context, uri string) (*mongo.Client, error) {
	return mongo.Connect(ctx, options.Client().ApplyURI(uri))
}

func NewPostsRepoMongo(db *mongo.Database) *PostsRepoMongo {
	return &PostsRepoMongo{collection: &common.MongoCollection{Collection: db.Collection("posts")}}
}

// ListOther returns the feed of posts authored by anyone but excludeAuthorID,
// most recently updated first, along with the total count matching the filter.
func (r *PostsRepoMongo) ListOther(ctx context.Context, excludeAuthorID, limit, offset int64) ([]*Post, int64, error) {
	filter := bson.M{"authorID": bson.M{"$ne": excludeAuthorID}}

	opts := options.Find().
		SetSort(bson.D{{Key: "updated", Value: -1}}).
		SetSkip(offset).
		SetLimit(limit)

	posts, err := r.getByFilter(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *PostsRepoMongo) GetByAuthorID(ctx context.Context, authorID int64) ([]*Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created", Value: -1}})
	return r.getByFilter(ctx, bson.M{"authorID": authorID}, opts)
}

func (r *PostsRepoMongo) GetByID(ctx context.Context, id interface{}) (*Post, error) {
	res := r.collection.FindOne(ctx, bson.M{"_id": id})

	post := &Post{}
	err := res.Decode(post)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return post, nil
}

func (r *PostsRepoMongo) Add(ctx context.Context, p *Post) (interface{}, error) {
	res, err := r.collection.InsertOne(ctx, p)
	if err != nil {
		return nil, err
	}

	return res.GetInsertedID(), nil
}

func (r *PostsRepoMongo) Update(ctx context.Context, id interface{}, title, content string, updated time.Time) (bool, error) {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id},
		bson.D{
			{Key: "$set", Value: bson.D{{Key: "title", Value: title}, {Key: "content", Value: content}, {Key: "updated", Value: updated}}},
		})
	if err != nil {
		return false, err
	}

	return res.GetMatchedCount() > 0, nil
}

func (r *PostsRepoMongo) Delete(ctx context.Context, id interface{}) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}

	if res.GetDeletedCount() == 0 {
		return false, nil
	}

	return true, nil
}

func (r *PostsRepoMongo) Upvote(ctx context.Context, id interface{}) (bool, error) {
	return r.incUpvotes(ctx, id, 1)
}

func (r *PostsRepoMongo) Unvote(ctx context.Context, id interface{}) (bool, error) {
	return r.incUpvotes(ctx, id, -1)
}

func (r *PostsRepoMongo) ParseID(in string) (interface{}, error) {
	return primitive.ObjectIDFromHex(in)
}

// incUpvotes is an unconditional $inc. The counter has no floor, an
// unvote can push it below zero.
func (r *PostsRepoMongo) incUpvotes(ctx context.Context, id interface{}, delta int) (bool, error) {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id},
		bson.D{
			{Key: "$inc", Value: bson.D{{Key: "upvotes", Value: delta}}},
		})
	if err != nil {
		return false, err
	}

	return res.GetMatchedCount() > 0, nil
}

func (r *PostsRepoMongo) getByFilter(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]*Post, error) {
	cur, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}

	defer cur.Close(ctx)

	var posts []*Post
	err = cur.All(ctx, &posts)
	if err != nil {
		return nil, err
	}

	return posts, nil
}
