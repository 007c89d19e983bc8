package models

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// notblank rejects strings made only of whitespace, which "required" lets through.
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// Post represents a blog post. Rows of the POSTS table scan directly into it.
type Post struct {
	ID           int64     `json:"id" db:"id"`
	Title        string    `json:"title" db:"title" validate:"required,notblank,max=100"`
	Content      string    `json:"content" db:"content" validate:"required,notblank"`
	Author       string    `json:"author" db:"author" validate:"required,notblank,max=50"`
	CreatedTime  time.Time `json:"createdTime" db:"created_time"`
	ModifiedTime time.Time `json:"modifiedTime" db:"modified_time"`
}

// Comment represents a comment on a blog post.
type Comment struct {
	ID           int64     `json:"id" db:"id"`
	PostID       int64     `json:"postId" db:"post_id" validate:"required,gt=0"`
	Content      string    `json:"content" db:"content" validate:"required,notblank,max=1000"`
	Writer       string    `json:"writer" db:"writer" validate:"required,notblank,max=50"`
	CreatedTime  time.Time `json:"createdTime" db:"created_time"`
	ModifiedTime time.Time `json:"modifiedTime" db:"modified_time"`
}

// Validate runs the struct tag rules of any model or request type.
func Validate(v interface{}) error {
	return validate.Struct(v)
}

// ValidateFields runs the tag rules of the named struct fields only.
func ValidateFields(v interface{}, fields ...string) error {
	return validate.StructPartial(v, fields...)
}
