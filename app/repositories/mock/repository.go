package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"postboard/app/models"
	"postboard/app/repositories"
)

// PostRepository is an in-memory repositories.PostRepository. Setting Err
// makes every call fail with it. Deleting a post drops its comments from the
// CommentRepository built on top of it.
type PostRepository struct {
	posts    map[int64]*models.Post
	nextID   int64
	mutex    sync.RWMutex
	comments *CommentRepository
	Err      error
}

// CommentRepository is an in-memory repositories.CommentRepository. It
// checks parent posts against Posts when set.
type CommentRepository struct {
	comments map[int64]*models.Comment
	nextID   int64
	mutex    sync.RWMutex
	Posts    *PostRepository
	Err      error
}

func NewPostRepository() *PostRepository {
	return &PostRepository{
		posts:  make(map[int64]*models.Post),
		nextID: 1,
	}
}

func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[int64]*models.Post)
	m.nextID = 1
}

func NewCommentRepository(posts *PostRepository) *CommentRepository {
	repo := &CommentRepository{
		comments: make(map[int64]*models.Comment),
		nextID:   1,
		Posts:    posts,
	}
	if posts != nil {
		posts.mutex.Lock()
		posts.comments = repo
		posts.mutex.Unlock()
	}
	return repo
}

// PostRepository implementation
func (m *PostRepository) List(ctx context.Context) ([]*models.Post, error) {
	return m.filter(func(*models.Post) bool { return true })
}

func (m *PostRepository) Search(ctx context.Context, category models.SearchCategory, keyword string) ([]*models.Post, error) {
	return m.filter(func(p *models.Post) bool { return p.Matches(category, keyword) })
}

func (m *PostRepository) filter(keep func(*models.Post) bool) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	posts := make([]*models.Post, 0, len(m.posts))
	for _, p := range m.posts {
		if keep(p) {
			copied := *p
			posts = append(posts, &copied)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID > posts[j].ID })
	return posts, nil
}

func (m *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	post, exists := m.posts[id]
	if !exists {
		return nil, nil
	}
	copied := *post
	return &copied, nil
}

func (m *PostRepository) Insert(ctx context.Context, post *models.Post) (int64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}

	post.ID = m.nextID
	m.nextID++
	post.BeforeCreate()
	stored := *post
	m.posts[post.ID] = &stored
	return 1, nil
}

func (m *PostRepository) Update(ctx context.Context, post *models.Post) (int64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}

	existing, exists := m.posts[post.ID]
	if !exists {
		return 0, nil
	}
	existing.Title = post.Title
	existing.Content = post.Content
	existing.ModifiedTime = time.Now().UTC()
	*post = *existing
	return 1, nil
}

func (m *PostRepository) Delete(ctx context.Context, id int64) (int64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}

	if _, exists := m.posts[id]; !exists {
		return 0, nil
	}
	delete(m.posts, id)
	if m.comments != nil {
		m.comments.deleteByPost(id)
	}
	return 1, nil
}

func (m *PostRepository) exists(id int64) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	_, ok := m.posts[id]
	return ok
}

// CommentRepository implementation
func (m *CommentRepository) Insert(ctx context.Context, comment *models.Comment) (int64, error) {
	if m.Posts != nil && !m.Posts.exists(comment.PostID) {
		return 0, repositories.NewStoreError("comment.insert", repositories.KindConstraint,
			fmt.Errorf("post %d does not exist", comment.PostID))
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}

	comment.ID = m.nextID
	m.nextID++
	comment.BeforeCreate()
	stored := *comment
	m.comments[comment.ID] = &stored
	return 1, nil
}

func (m *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	comment, exists := m.comments[id]
	if !exists {
		return nil, nil
	}
	copied := *comment
	return &copied, nil
}

func (m *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	comments := make([]*models.Comment, 0)
	for _, c := range m.comments {
		if c.PostID == postID {
			copied := *c
			comments = append(comments, &copied)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

func (m *CommentRepository) deleteByPost(postID int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for id, c := range m.comments {
		if c.PostID == postID {
			delete(m.comments, id)
		}
	}
}

var (
	_ repositories.PostRepository    = (*PostRepository)(nil)
	_ repositories.CommentRepository = (*CommentRepository)(nil)
)
