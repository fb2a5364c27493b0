package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"socialfeed/pkg/comments"
	"socialfeed/pkg/session"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	commentID   = primitive.NewObjectID()
	testComment = &comments.Comment{
		ID:       commentID,
		PostID:   postID,
		AuthorID: viewerID,
		Content:  "nice post",
		Created:  testTime,
	}
)

func newCommentHandler(ctrl *gomock.Controller) (*CommentHandler, *MockPostsRepo, *MockCommentsRepo, *MockNotifier, *MockUsersRepo, *session.MockSessionManager) {
	postsRepo := NewMockPostsRepo(ctrl)
	commentsRepo := NewMockCommentsRepo(ctrl)
	notifier := NewMockNotifier(ctrl)
	usersRepo := NewMockUsersRepo(ctrl)
	sm := session.NewMockSessionManager(ctrl)
	h := &CommentHandler{
		PostsRepo:    postsRepo,
		CommentsRepo: commentsRepo,
		UsersRepo:    usersRepo,
		Notifier:     notifier,
		Sm:           sm,
		Logger:       zap.NewNop().Sugar(),
	}
	return h, postsRepo, commentsRepo, notifier, usersRepo, sm
}

func TestAddComment(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, postsRepo, commentsRepo, notifier, usersRepo, _ := newCommentHandler(ctrl)

	commentsRepo.EXPECT().ParseID(postID.Hex()).Return(postID, nil)
	postsRepo.EXPECT().GetByID(gomock.Any(), postID).Return(testPost, nil)
	commentsRepo.EXPECT().
		Add(gomock.Any(), gomock.AssignableToTypeOf(&comments.Comment{})).
		Return(commentID, nil)
	notifier.EXPECT().
		NewComment(gomock.Any(), postID, testPost.AuthorID, viewerID).
		Return(nil).
		Times(1)
	usersRepo.EXPECT().GetByID(viewerID).Return(testAuthor, nil)

	body, _ := json.Marshal(&AddCommentRequest{Content: "nice post", AuthorID: viewerID})
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/posts/"+postID.Hex()+"/comment", bytes.NewBuffer(body))
	r = mux.SetURLVars(r, map[string]string{"post_id": postID.Hex()})

	h.Add(w, r)

	if w.Result().StatusCode != http.StatusCreated {
		t.Fatalf("wrong status code: %d, body %s", w.Result().StatusCode, w.Body.String())
	}

	var resp CommentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %s", w.Body.String())
	}
	if resp.Content != "nice post" || resp.AuthorID != viewerID {
		t.Errorf("unexpected comment: %+v", resp)
	}
}

func TestAddCommentNotifierFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, postsRepo, commentsRepo, notifier, usersRepo, _ := newCommentHandler(ctrl)

	commentsRepo.EXPECT().ParseID(postID.Hex()).Return(postID, nil)
	postsRepo.EXPECT().GetByID(gomock.Any(), postID).Return(testPost, nil)
	commentsRepo.EXPECT().Add(gomock.Any(), gomock.Any()).Return(commentID, nil)
	notifier.EXPECT().
		NewComment(gomock.Any(), postID, testPost.AuthorID, viewerID).
		Return(errors.New("mongo down"))
	usersRepo.EXPECT().GetByID(viewerID).Return(testAuthor, nil)

	body, _ := json.Marshal(&AddCommentRequest{Content: "nice post", AuthorID: viewerID})
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/posts/"+postID.Hex()+"/comment", bytes.NewBuffer(body))
	r = mux.SetURLVars(r, map[string]string{"post_id": postID.Hex()})

	h.Add(w, r)

	if w.Result().StatusCode != http.StatusCreated {
		t.Fatalf("a failed notification must not fail the comment, got %d", w.Result().StatusCode)
	}
}

func TestAddCommentPostNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, postsRepo, commentsRepo, _, _, _ := newCommentHandler(ctrl)

	commentsRepo.EXPECT().ParseID(postID.Hex()).Return(postID, nil)
	postsRepo.EXPECT().GetByID(gomock.Any(), postID).Return(nil, nil)

	body, _ := json.Marshal(&AddCommentRequest{Content: "nice post", AuthorID: viewerID})
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/posts/"+postID.Hex()+"/comment", bytes.NewBuffer(body))
	r = mux.SetURLVars(r, map[string]string{"post_id": postID.Hex()})

	h.Add(w, r)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Fatalf("wrong status code: %d", w.Result().StatusCode)
	}
	if got := w.Body.String(); got != `{"error":"Post not found"}` {
		t.Errorf("unexpected response: %s", got)
	}
}

func TestAddCommentMissingFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, _, commentsRepo, _, _, _ := newCommentHandler(ctrl)

	commentsRepo.EXPECT().ParseID(postID.Hex()).Return(postID, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/posts/"+postID.Hex()+"/comment", bytes.NewBufferString(`{"content":"no author"}`))
	r = mux.SetURLVars(r, map[string]string{"post_id": postID.Hex()})

	h.Add(w, r)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("wrong status code: %d", w.Result().StatusCode)
	}
	if got := w.Body.String(); got != `{"error":"Missing content or authorId"}` {
		t.Errorf("unexpected response: %s", got)
	}
}

func TestListComments(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, _, commentsRepo, _, usersRepo, _ := newCommentHandler(ctrl)

	commentsRepo.EXPECT().ParseID(postID.Hex()).Return(postID, nil)
	commentsRepo.EXPECT().GetByPostID(gomock.Any(), postID).Return([]*comments.Comment{testComment}, nil)
	usersRepo.EXPECT().GetByID(viewerID).Return(testAuthor, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/posts/"+postID.Hex()+"/comments", nil)
	r = mux.SetURLVars(r, map[string]string{"post_id": postID.Hex()})

	h.List(w, r)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("wrong status code: %d", w.Result().StatusCode)
	}

	var resp []*CommentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %s", w.Body.String())
	}
	if len(resp) != 1 || resp[0].Content != testComment.Content {
		t.Errorf("unexpected comments: %+v", resp)
	}
	if resp[0].Author == nil || resp[0].Author.Username != testAuthor.Username {
		t.Errorf("author not embedded: %+v", resp[0].Author)
	}
}

func TestCountComments(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, _, commentsRepo, _, _, _ := newCommentHandler(ctrl)

	commentsRepo.EXPECT().ParseID(postID.Hex()).Return(postID, nil)
	commentsRepo.EXPECT().Count(gomock.Any(), postID).Return(int64(7), nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/posts/"+postID.Hex()+"/comments/count", nil)
	r = mux.SetURLVars(r, map[string]string{"post_id": postID.Hex()})

	h.Count(w, r)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("wrong status code: %d", w.Result().StatusCode)
	}
	if got := w.Body.String(); got != `{"count":7}` {
		t.Errorf("unexpected response: %s", got)
	}
}

func TestDeleteComment(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, _, commentsRepo, _, _, _ := newCommentHandler(ctrl)

	commentsRepo.EXPECT().ParseID(commentID.Hex()).Return(commentID, nil)
	commentsRepo.EXPECT().GetByID(gomock.Any(), commentID).Return(testComment, nil)
	commentsRepo.EXPECT().Delete(gomock.Any(), commentID).Return(true, nil)

	body, _ := json.Marshal(&DeleteCommentRequest{UserID: viewerID})
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodDelete, "/api/comments/"+commentID.Hex(), bytes.NewBuffer(body))
	r = mux.SetURLVars(r, map[string]string{"id": commentID.Hex()})

	h.Delete(w, r)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("wrong status code: %d, body %s", w.Result().StatusCode, w.Body.String())
	}
	if got := w.Body.String(); got != `{"message":"Comment deleted"}` {
		t.Errorf("unexpected response: %s", got)
	}
}

func TestDeleteCommentForbidden(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, _, commentsRepo, _, _, _ := newCommentHandler(ctrl)

	commentsRepo.EXPECT().ParseID(commentID.Hex()).Return(commentID, nil)
	commentsRepo.EXPECT().GetByID(gomock.Any(), commentID).Return(testComment, nil)

	body, _ := json.Marshal(&DeleteCommentRequest{UserID: authorID})
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodDelete, "/api/comments/"+commentID.Hex(), bytes.NewBuffer(body))
	r = mux.SetURLVars(r, map[string]string{"id": commentID.Hex()})

	h.Delete(w, r)

	if w.Result().StatusCode != http.StatusForbidden {
		t.Fatalf("wrong status code: %d", w.Result().StatusCode)
	}
	if got := w.Body.String(); got != `{"error":"You can only delete your own comments"}` {
		t.Errorf("unexpected response: %s", got)
	}
}

func TestDeleteCommentNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, _, commentsRepo, _, _, _ := newCommentHandler(ctrl)

	commentsRepo.EXPECT().ParseID(commentID.Hex()).Return(commentID, nil)
	commentsRepo.EXPECT().GetByID(gomock.Any(), commentID).Return(nil, nil)

	body, _ := json.Marshal(&DeleteCommentRequest{UserID: viewerID})
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodDelete, "/api/comments/"+commentID.Hex(), bytes.NewBuffer(body))
	r = mux.SetURLVars(r, map[string]string{"id": commentID.Hex()})

	h.Delete(w, r)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Fatalf("wrong status code: %d", w.Result().StatusCode)
	}
}

func TestDeleteCommentSessionOverride(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, _, commentsRepo, _, _, sm := newCommentHandler(ctrl)

	commentsRepo.EXPECT().ParseID(commentID.Hex()).Return(commentID, nil)
	commentsRepo.EXPECT().GetByID(gomock.Any(), commentID).Return(testComment, nil)
	commentsRepo.EXPECT().Delete(gomock.Any(), commentID).Return(true, nil)
	sm.EXPECT().Check(gomock.Any(), gomock.Any()).
		Return(&session.Session{User: &session.User{ID: viewerID, Username: "bob"}}, nil)

	// the body claims someone else, the session identity wins
	body, _ := json.Marshal(&DeleteCommentRequest{UserID: authorID})
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodDelete, "/api/comments/"+commentID.Hex(), bytes.NewBuffer(body))
	r.Header.Set("Authorization", "Bearer some.jwt.token")
	r = mux.SetURLVars(r, map[string]string{"id": commentID.Hex()})

	h.Delete(w, r)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("wrong status code: %d, body %s", w.Result().StatusCode, w.Body.String())
	}
}
