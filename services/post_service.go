package services

import (
	"context"
	"errors"
	"time"

	"devconnector/apperror"
	"devconnector/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgPostNotFound    = "Post not found"
	msgCommentNotFound = "Comment does not exist"
	msgNotAuthorized   = "User not authorized"
)

type PostService struct {
	posts PostStore
	users UserStore
	now   func() time.Time
}

func NewPostService(posts PostStore, users UserStore) *PostService {
	return &PostService{posts: posts, users: users, now: time.Now}
}

// author loads the caller so their name and avatar can be copied onto new
// content.
func (s *PostService) author(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.InvalidToken(err)
	}
	return u, err
}

func (s *PostService) Create(ctx context.Context, userID primitive.ObjectID, text string) (*models.Post, error) {
	if blank(text) {
		return nil, apperror.ValidationField("text", "Text is required")
	}
	u, err := s.author(ctx, userID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:        primitive.NewObjectID(),
		UserID:    u.ID,
		Text:      text,
		Name:      u.Name,
		Avatar:    u.Avatar,
		Likes:     []models.Like{},
		Comments:  []models.Comment{},
		CreatedAt: s.now().UTC(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// List returns all posts, newest first.
func (s *PostService) List(ctx context.Context) ([]models.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

func (s *PostService) Get(ctx context.Context, postHex string) (*models.Post, error) {
	id, err := parseID(postHex, msgPostNotFound)
	if err != nil {
		return nil, err
	}
	p, err := s.posts.Get(ctx, id)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.NotFound(msgPostNotFound)
	}
	return p, err
}

// Delete removes a post. Only its author may do so.
func (s *PostService) Delete(ctx context.Context, postHex string, requester primitive.ObjectID) error {
	p, err := s.Get(ctx, postHex)
	if err != nil {
		return err
	}
	if p.UserID != requester {
		return apperror.Unauthorized(msgNotAuthorized)
	}
	return s.posts.Delete(ctx, p.ID)
}

// Like records that userID likes the post and returns the updated likes.
func (s *PostService) Like(ctx context.Context, postHex string, userID primitive.ObjectID) ([]models.Like, error) {
	p, err := s.Get(ctx, postHex)
	if err != nil {
		return nil, err
	}
	if p.LikeIndex(userID) >= 0 {
		return nil, apperror.AlreadyLiked()
	}
	p.Likes = append(p.Likes, models.Like{UserID: userID})

	if err := s.posts.Save(ctx, p); err != nil {
		return nil, err
	}
	return p.Likes, nil
}

func (s *PostService) Unlike(ctx context.Context, postHex string, userID primitive.ObjectID) ([]models.Like, error) {
	p, err := s.Get(ctx, postHex)
	if err != nil {
		return nil, err
	}
	i := p.LikeIndex(userID)
	if i < 0 {
		return nil, apperror.NotLiked()
	}
	p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)

	if err := s.posts.Save(ctx, p); err != nil {
		return nil, err
	}
	return p.Likes, nil
}

// AddComment prepends a comment by userID and returns the post's comments.
func (s *PostService) AddComment(ctx context.Context, postHex string, userID primitive.ObjectID, text string) ([]models.Comment, error) {
	if blank(text) {
		return nil, apperror.ValidationField("text", "Text is required")
	}
	u, err := s.author(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, postHex)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    u.ID,
		Text:      text,
		Name:      u.Name,
		Avatar:    u.Avatar,
		CreatedAt: s.now().UTC(),
	}
	p.Comments = append([]models.Comment{comment}, p.Comments...)

	if err := s.posts.Save(ctx, p); err != nil {
		return nil, err
	}
	return p.Comments, nil
}

// RemoveComment deletes one comment. Only the comment's author may do so.
func (s *PostService) RemoveComment(ctx context.Context, postHex, commentHex string, requester primitive.ObjectID) ([]models.Comment, error) {
	p, err := s.Get(ctx, postHex)
	if err != nil {
		return nil, err
	}
	commentID, err := parseID(commentHex, msgCommentNotFound)
	if err != nil {
		return nil, err
	}
	i := p.CommentIndex(commentID)
	if i < 0 {
		return nil, apperror.NotFound(msgCommentNotFound)
	}
	if p.Comments[i].UserID != requester {
		return nil, apperror.Unauthorized(msgNotAuthorized)
	}
	p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)

	if err := s.posts.Save(ctx, p); err != nil {
		return nil, err
	}
	return p.Comments, nil
}
