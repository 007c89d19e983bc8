package models

import "time"

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	return validate.Struct(p)
}

// BeforeCreate stamps the creation and modification times of a new post.
func (p *Post) BeforeCreate() {
	now := time.Now().UTC()
	if p.CreatedTime.IsZero() {
		p.CreatedTime = now
	}
	p.ModifiedTime = p.CreatedTime
}

// Touch refreshes the modification time after a write.
func (p *Post) Touch() {
	p.ModifiedTime = time.Now().UTC()
}

// Matches reports whether the post matches keyword in the given search category.
// Matching is case-insensitive.
func (p *Post) Matches(category SearchCategory, keyword string) bool {
	switch category {
	case SearchTitle:
		return containsFold(p.Title, keyword)
	case SearchContent:
		return containsFold(p.Content, keyword)
	case SearchTitleContent:
		return containsFold(p.Title, keyword) || containsFold(p.Content, keyword)
	case SearchAuthor:
		return containsFold(p.Author, keyword)
	}
	return false
}
