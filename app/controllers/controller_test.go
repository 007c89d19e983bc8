package controllers

import (
	"testing"

	"postboard/app/repositories/mock"
	"postboard/app/services"
	"postboard/app/views"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router   *mux.Router
	posts    *mock.PostRepository
	comments *mock.CommentRepository
	hook     *test.Hook
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger, hook := test.NewNullLogger()

	postRepo := mock.NewPostRepository()
	commentRepo := mock.NewCommentRepository(postRepo)
	postService := services.NewPostService(postRepo, logger)
	commentService := services.NewCommentService(commentRepo, postRepo, logger)

	tmpl, err := views.Load()
	require.NoError(t, err)

	pc := NewPostController(postService, commentService, tmpl, logger)
	cc := NewCommentController(commentService, logger)

	// Register routes manually; the routes package has its own tests.
	router := mux.NewRouter()
	router.HandleFunc("/post/list", pc.List).Methods("GET")
	router.HandleFunc("/post/search", pc.Search).Methods("GET")
	router.HandleFunc("/post/details", pc.Details).Methods("GET")
	router.HandleFunc("/post/create", pc.New).Methods("GET")
	router.HandleFunc("/post/create", pc.Create).Methods("POST")
	router.HandleFunc("/post/modify", pc.Modify).Methods("GET")
	router.HandleFunc("/post/update", pc.Update).Methods("POST")
	router.HandleFunc("/post/delete", pc.Delete).Methods("GET")

	router.HandleFunc("/api/post", pc.List).Methods("GET")
	router.HandleFunc("/api/post", pc.Create).Methods("POST")
	router.HandleFunc("/api/post/search", pc.Search).Methods("GET")
	router.HandleFunc("/api/post/{id}", pc.Details).Methods("GET")
	router.HandleFunc("/api/post/{id}", pc.Update).Methods("PUT")
	router.HandleFunc("/api/post/{id}", pc.Delete).Methods("DELETE")

	router.HandleFunc("/api/comment", cc.Register).Methods("POST")
	router.HandleFunc("/api/comment/all/{id}", cc.List).Methods("GET")
	router.HandleFunc("/api/comment/{id}", cc.Show).Methods("GET")

	return &testEnv{router: router, posts: postRepo, comments: commentRepo, hook: hook}
}
