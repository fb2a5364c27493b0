package comments

import (
	"context"
	"socialfeed/pkg/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CommentsRepoMongo struct {
	collection common.CollectionHelper
}

func NewCommentsRepoMongo(db *mongo.Database) *CommentsRepoMongo {
	return &CommentsRepoMongo{collection: &common.MongoCollection{Collection: db.Collection("comments")}}
}

// GetByPostID returns the post's comments, newest first.
func (repo *CommentsRepoMongo) GetByPostID(ctx context.Context, postID interface{}) ([]*Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created", Value: -1}})
	cur, err := repo.collection.Find(ctx, bson.M{"postID": postID}, opts)
	if err != nil {
		return nil, err
	}

	defer cur.Close(ctx)

	var comments []*Comment
	err = cur.All(ctx, &comments)
	if err != nil {
		return nil, err
	}

	return comments, nil
}

func (repo *CommentsRepoMongo) GetByID(ctx context.Context, id interface{}) (*Comment, error) {
	res := repo.collection.FindOne(ctx, bson.M{"_id": id})

	comment := &Comment{}
	err := res.Decode(comment)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return comment, nil
}

func (repo *CommentsRepoMongo) Count(ctx context.Context, postID interface{}) (int64, error) {
	return repo.collection.CountDocuments(ctx, bson.M{"postID": postID})
}

func (repo *CommentsRepoMongo) Add(ctx context.Context, comment *Comment) (interface{}, error) {
	res, err := repo.collection.InsertOne(ctx, comment)
	if err != nil {
		return nil, err
	}

	return res.GetInsertedID(), nil
}

func (repo *CommentsRepoMongo) Delete(ctx context.Context, id interface{}) (bool, error) {
	res, err := repo.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}

	if res.GetDeletedCount() == 0 {
		return false, nil
	}

	return true, nil
}

// DeleteByPostID removes every comment of a deleted post.
func (repo *CommentsRepoMongo) DeleteByPostID(ctx context.Context, postID interface{}) (int64, error) {
	res, err := repo.collection.DeleteMany(ctx, bson.M{"postID": postID})
	if err != nil {
		return 0, err
	}

	return res.GetDeletedCount(), nil
}

func (repo *CommentsRepoMongo) ParseID(in string) (interface{}, error) {
	return primitive.ObjectIDFromHex(in)
}
