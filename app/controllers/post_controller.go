package controllers

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"postboard/app/models"
	"postboard/app/services"
	"postboard/app/views"

	"github.com/sirupsen/logrus"
)

// PostController serves the post pages under /post and the JSON API under /api/post.
type PostController struct {
	postService    *services.PostService
	commentService *services.CommentService
	views          *views.Templates
	log            logrus.FieldLogger
}

// NewPostController creates a new PostController
func NewPostController(posts *services.PostService, comments *services.CommentService, tmpl *views.Templates, log logrus.FieldLogger) *PostController {
	return &PostController{
		postService:    posts,
		commentService: comments,
		views:          tmpl,
		log:            log.WithField("controller", "post"),
	}
}

// List handles listing all posts
func (pc *PostController) List(w http.ResponseWriter, r *http.Request) {
	posts, err := pc.postService.Read(r.Context())
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}

	if isAPI(r) {
		sendJSON(w, http.StatusOK, posts)
		return
	}
	pc.render(w, r, http.StatusOK, views.List, views.ListData{Posts: posts, Category: models.SearchTitle})
}

// Search filters posts by keyword within a category (t, c, tc or a).
func (pc *PostController) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := models.PostSearchRequest{
		Category: models.SearchCategory(q.Get("category")),
		Keyword:  q.Get("keyword"),
	}
	if req.Category == "" {
		req.Category = models.SearchTitle
	}

	posts, err := pc.postService.Search(r.Context(), req)
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}

	if isAPI(r) {
		sendJSON(w, http.StatusOK, posts)
		return
	}
	pc.render(w, r, http.StatusOK, views.List, views.ListData{Posts: posts, Category: req.Category, Keyword: req.Keyword})
}

// Details shows one post with its comments.
func (pc *PostController) Details(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, r, pc.log, "%v", err)
		return
	}

	post, err := pc.postService.ReadByID(r.Context(), id)
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}

	if isAPI(r) {
		if err := sendJSONWithETag(w, r, post); err != nil {
			pc.log.WithError(err).Warn("write post")
		}
		return
	}

	comments, err := pc.commentService.GetCommentList(r.Context(), id)
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}
	pc.render(w, r, http.StatusOK, views.Details, views.DetailsData{Post: post, Comments: comments})
}

// New displays the form for creating a new post
func (pc *PostController) New(w http.ResponseWriter, r *http.Request) {
	pc.render(w, r, http.StatusOK, views.Create, views.CreateData{})
}

// Create stores a post from a form (then redirects to the list) or from JSON.
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	var req models.PostCreateRequest
	if isAPI(r) {
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, r, pc.log, "%v", err)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			badRequest(w, r, pc.log, "failed to parse form: %v", err)
			return
		}
		req.Title = r.PostFormValue("title")
		req.Content = r.PostFormValue("content")
		req.Author = r.PostFormValue("author")
	}

	post, err := pc.postService.Create(r.Context(), req)
	if err != nil {
		if !isAPI(r) && errors.Is(err, services.ErrInvalidInput) {
			pc.render(w, r, http.StatusBadRequest, views.Create, views.CreateData{Form: req, Error: err.Error()})
			return
		}
		sendError(w, r, pc.log, err)
		return
	}

	if isAPI(r) {
		w.Header().Set("Location", "/api/post/"+strconv.FormatInt(post.ID, 10))
		sendJSON(w, http.StatusCreated, post)
		return
	}
	http.Redirect(w, r, "/post/list", http.StatusSeeOther)
}

// Modify displays the edit form of a post.
func (pc *PostController) Modify(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, r, pc.log, "%v", err)
		return
	}

	post, err := pc.postService.ReadByID(r.Context(), id)
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}
	pc.render(w, r, http.StatusOK, views.Modify, views.ModifyData{Post: post})
}

// Update rewrites title and content. The form variant redirects to the details page.
func (pc *PostController) Update(w http.ResponseWriter, r *http.Request) {
	var req models.PostUpdateRequest
	if isAPI(r) {
		id, err := pathID(r)
		if err != nil {
			badRequest(w, r, pc.log, "%v", err)
			return
		}
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, r, pc.log, "%v", err)
			return
		}
		req.ID = id
	} else {
		if err := r.ParseForm(); err != nil {
			badRequest(w, r, pc.log, "failed to parse form: %v", err)
			return
		}
		id, err := strconv.ParseInt(r.PostFormValue("id"), 10, 64)
		if err != nil {
			badRequest(w, r, pc.log, "invalid id %q", r.PostFormValue("id"))
			return
		}
		req.ID = id
		req.Title = r.PostFormValue("title")
		req.Content = r.PostFormValue("content")
	}

	post, err := pc.postService.Update(r.Context(), req)
	if err != nil {
		sendError(w, r, pc.log, err)
		return
	}

	if isAPI(r) {
		sendJSON(w, http.StatusOK, post)
		return
	}
	http.Redirect(w, r, "/post/details?"+url.Values{"id": {strconv.FormatInt(post.ID, 10)}}.Encode(), http.StatusSeeOther)
}

// Delete handles deleting a post
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, r, pc.log, "%v", err)
		return
	}

	if err := pc.postService.Delete(r.Context(), id); err != nil {
		sendError(w, r, pc.log, err)
		return
	}

	if isAPI(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/post/list", http.StatusSeeOther)
}

func (pc *PostController) render(w http.ResponseWriter, r *http.Request, status int, page string, data interface{}) {
	var buf bytes.Buffer
	if err := pc.views.Render(&buf, page, data); err != nil {
		sendError(w, r, pc.log, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
