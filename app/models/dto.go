package models

import "strings"

// SearchCategory selects which post fields a keyword search looks at.
type SearchCategory string

const (
	SearchTitle        SearchCategory = "t"
	SearchContent      SearchCategory = "c"
	SearchTitleContent SearchCategory = "tc"
	SearchAuthor       SearchCategory = "a"
)

// PostCreateRequest carries the fields of a new post.
type PostCreateRequest struct {
	Title   string `json:"title" validate:"required,notblank,max=100"`
	Content string `json:"content" validate:"required,notblank"`
	Author  string `json:"author" validate:"required,notblank,max=50"`
}

// ToEntity builds the post to insert.
func (r PostCreateRequest) ToEntity() *Post {
	return &Post{
		Title:   strings.TrimSpace(r.Title),
		Content: r.Content,
		Author:  strings.TrimSpace(r.Author),
	}
}

// PostUpdateRequest carries the editable fields of an existing post.
type PostUpdateRequest struct {
	ID      int64  `json:"id" validate:"required,gt=0"`
	Title   string `json:"title" validate:"required,notblank,max=100"`
	Content string `json:"content" validate:"required,notblank"`
}

// ToEntity builds the post to update. Author and creation time are not editable.
func (r PostUpdateRequest) ToEntity() *Post {
	return &Post{
		ID:      r.ID,
		Title:   strings.TrimSpace(r.Title),
		Content: r.Content,
	}
}

// PostSearchRequest is a keyword search over posts.
type PostSearchRequest struct {
	Category SearchCategory `json:"category" validate:"required,oneof=t c tc a"`
	Keyword  string         `json:"keyword" validate:"required"`
}

// CommentRegisterRequest carries a new comment for an existing post.
type CommentRegisterRequest struct {
	PostID  int64  `json:"postId" validate:"required,gt=0"`
	Content string `json:"content" validate:"required,notblank,max=1000"`
	Writer  string `json:"writer" validate:"required,notblank,max=50"`
}

// ToEntity builds the comment to insert.
func (r CommentRegisterRequest) ToEntity() *Comment {
	return &Comment{
		PostID:  r.PostID,
		Content: r.Content,
		Writer:  strings.TrimSpace(r.Writer),
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
