package controllers

import (
	"net/http"
	"strconv"

	"postboard/app/models"
	"postboard/app/services"

	"github.com/sirupsen/logrus"
)

// CommentController serves the comment REST API.
type CommentController struct {
	commentService *services.CommentService
	log            logrus.FieldLogger
}

// NewCommentController creates a new CommentController
func NewCommentController(comments *services.CommentService, log logrus.FieldLogger) *CommentController {
	return &CommentController{
		commentService: comments,
		log:            log.WithField("controller", "comment"),
	}
}

// Register handles POST /api/comment.
func (cc *CommentController) Register(w http.ResponseWriter, r *http.Request) {
	var req models.CommentRegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, cc.log, "%v", err)
		return
	}

	comment, err := cc.commentService.Register(r.Context(), req)
	if err != nil {
		sendError(w, r, cc.log, err)
		return
	}

	w.Header().Set("Location", "/api/comment/"+strconv.FormatInt(comment.ID, 10))
	sendJSON(w, http.StatusCreated, comment)
}

// List handles GET /api/comment/all/{id}, where id is the post id.
func (cc *CommentController) List(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r)
	if err != nil {
		badRequest(w, r, cc.log, "%v", err)
		return
	}

	comments, err := cc.commentService.GetCommentList(r.Context(), postID)
	if err != nil {
		sendError(w, r, cc.log, err)
		return
	}
	sendJSON(w, http.StatusOK, comments)
}

// Show handles GET /api/comment/{id}.
func (cc *CommentController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, r, cc.log, "%v", err)
		return
	}

	comment, err := cc.commentService.Get(r.Context(), id)
	if err != nil {
		sendError(w, r, cc.log, err)
		return
	}
	if err := sendJSONWithETag(w, r, comment); err != nil {
		cc.log.WithError(err).Warn("write comment")
	}
}
