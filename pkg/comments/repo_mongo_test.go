package comments

import (
	"context"
	"errors"
	"reflect"
	"socialfeed/pkg/common"
	"testing"
	"time"

	gomock "github.com/golang/mock/gomock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var postID = primitive.NewObjectID()

func testComments() []*Comment {
	created := time.Date(2026, 2, 16, 21, 45, 2, 0, time.UTC)
	return []*Comment{
		{ID: primitive.NewObjectID(), PostID: postID, AuthorID: 2, Content: "Nice!", Created: created.Add(time.Minute)},
		{ID: primitive.NewObjectID(), PostID: postID, AuthorID: 3, Content: "Well put.", Created: created},
	}
}

func TestGetByPostID(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	mockCursor := common.NewMockCursorHelper(ctrl)
	repo := &CommentsRepoMongo{collection: mockCollection}

	ctx := context.Background()
	expected := testComments()
	expectedOpts := options.Find().SetSort(bson.D{{Key: "created", Value: -1}})

	mockCollection.EXPECT().Find(ctx, gomock.Eq(bson.M{"postID": postID}), gomock.Eq(expectedOpts)).Return(mockCursor, nil)
	mockCursor.EXPECT().All(ctx, gomock.AssignableToTypeOf(&expected)).
		SetArg(1, expected).Return(nil)
	mockCursor.EXPECT().Close(ctx).Return(nil)

	res, err := repo.GetByPostID(ctx, postID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	if !reflect.DeepEqual(res, expected) {
		t.Errorf("expected %v but was %v", expected, res)
	}

	// error
	findErr := errors.New("error while calling find")
	mockCollection.EXPECT().Find(ctx, gomock.Any(), gomock.Any()).Return(mockCursor, findErr)

	_, err = repo.GetByPostID(ctx, postID)
	if err != findErr {
		t.Errorf("expected error %v but was %v", findErr, err)
	}
}

func TestGetCommentByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	mockResult := common.NewMockSingleResultHelper(ctrl)
	repo := &CommentsRepoMongo{collection: mockCollection}

	ctx := context.Background()
	expected := testComments()[0]

	mockCollection.EXPECT().FindOne(ctx, bson.M{"_id": expected.ID}).Return(mockResult)
	mockResult.EXPECT().Decode(gomock.AssignableToTypeOf(&Comment{})).
		SetArg(0, *expected).Return(nil)

	res, err := repo.GetByID(ctx, expected.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	if !reflect.DeepEqual(res, expected) {
		t.Errorf("expected %v but was %v", expected, res)
	}

	// missing comment
	missingID := primitive.NewObjectID()
	mockCollection.EXPECT().FindOne(ctx, bson.M{"_id": missingID}).Return(mockResult)
	mockResult.EXPECT().Decode(gomock.Any()).Return(mongo.ErrNoDocuments)

	res, err = repo.GetByID(ctx, missingID)
	if res != nil || err != nil {
		t.Errorf("expected both nil for a missing comment but was %v, %v", res, err)
	}
}

func TestCount(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	repo := &CommentsRepoMongo{collection: mockCollection}

	ctx := context.Background()

	mockCollection.EXPECT().CountDocuments(ctx, bson.M{"postID": postID}).Return(int64(7), nil)

	count, err := repo.Count(ctx, postID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}
	if count != 7 {
		t.Errorf("expected 7 but was %d", count)
	}
}

func TestAddComment(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	mockInsertRes := common.NewMockInsertOneResultHelper(ctrl)
	repo := &CommentsRepoMongo{collection: mockCollection}

	ctx := context.Background()
	comment := testComments()[0]
	comment.ID = nil
	insertedID := primitive.NewObjectID().Hex()

	mockCollection.EXPECT().InsertOne(ctx, comment).Return(mockInsertRes, nil)
	mockInsertRes.EXPECT().GetInsertedID().Return(insertedID)

	id, err := repo.Add(ctx, comment)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	if id != insertedID {
		t.Errorf("expected %v but was %v", insertedID, id)
	}

	// error
	mockCollection.EXPECT().InsertOne(ctx, comment).Return(mockInsertRes, errors.New("insert error"))

	_, err = repo.Add(ctx, comment)
	if err == nil {
		t.Fatalf("expected error but was nil")
	}
}

func TestDeleteComment(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	mockDeleteRes := common.NewMockDeleteResultHelper(ctrl)
	repo := &CommentsRepoMongo{collection: mockCollection}

	ctx := context.Background()
	commentID := primitive.NewObjectID()

	mockCollection.EXPECT().DeleteOne(ctx, bson.M{"_id": commentID}).Return(mockDeleteRes, nil)
	mockDeleteRes.EXPECT().GetDeletedCount().Return(int64(1))

	ok, err := repo.Delete(ctx, commentID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}
	if !ok {
		t.Errorf("expected delete to report success")
	}

	// already gone
	mockCollection.EXPECT().DeleteOne(ctx, bson.M{"_id": commentID}).Return(mockDeleteRes, nil)
	mockDeleteRes.EXPECT().GetDeletedCount().Return(int64(0))

	ok, err = repo.Delete(ctx, commentID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}
	if ok {
		t.Errorf("expected delete of a missing comment to report failure")
	}
}

func TestDeleteByPostID(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	mockDeleteRes := common.NewMockDeleteResultHelper(ctrl)
	repo := &CommentsRepoMongo{collection: mockCollection}

	ctx := context.Background()

	mockCollection.EXPECT().DeleteMany(ctx, bson.M{"postID": postID}).Return(mockDeleteRes, nil)
	mockDeleteRes.EXPECT().GetDeletedCount().Return(int64(3))

	deleted, err := repo.DeleteByPostID(ctx, postID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}
	if deleted != 3 {
		t.Errorf("expected 3 deleted but was %d", deleted)
	}
}
