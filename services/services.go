// Package services holds the DevConnector business rules. Each service works
// against the small store interfaces below so it can run on MongoDB in
// production and on in-memory stores in tests.
package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"devconnector/apperror"
	"devconnector/models"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ProfileStore interface {
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Upsert(ctx context.Context, userID primitive.ObjectID, fields models.ProfileFields) error
	Save(ctx context.Context, p *models.Profile) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}

type PostStore interface {
	Create(ctx context.Context, p *models.Post) error
	List(ctx context.Context) ([]models.Post, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	Save(ctx context.Context, p *models.Post) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// RepoLister fetches a GitHub user's public repositories.
type RepoLister interface {
	Repos(ctx context.Context, username string) (json.RawMessage, error)
}

var validate = validator.New()

// parseID turns a path parameter into an ObjectID. Malformed ids can never
// match a document, so they report notFound like a missing one.
func parseID(hex, notFound string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperror.NotFound(notFound)
	}
	return id, nil
}

// SplitSkills turns "go, rust,,js " into ["go" "rust" "js"].
func SplitSkills(raw string) []string {
	skills := []string{}
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
