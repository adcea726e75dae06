// Package testutil provides in-memory stores and fixtures for service and
// HTTP tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"devconnector/apperror"
	"devconnector/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemStore keeps users, profiles and posts in maps. It mirrors the MongoDB
// stores closely enough for the services: unique emails, one profile per
// user, owner joined on profile reads, copies in and out.
type MemStore struct {
	mu       sync.Mutex
	users    map[primitive.ObjectID]models.User
	profiles map[primitive.ObjectID]models.Profile // keyed by owner
	posts    map[primitive.ObjectID]models.Post
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:    map[primitive.ObjectID]models.User{},
		profiles: map[primitive.ObjectID]models.Profile{},
		posts:    map[primitive.ObjectID]models.Post{},
	}
}

func (m *MemStore) Users() *MemUsers       { return &MemUsers{m} }
func (m *MemStore) Profiles() *MemProfiles { return &MemProfiles{m} }
func (m *MemStore) Posts() *MemPosts       { return &MemPosts{m} }

// PostCount reports how many posts are stored.
func (m *MemStore) PostCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posts)
}

func (m *MemStore) ProfileCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.profiles)
}

type MemUsers struct{ m *MemStore }

func (s *MemUsers) Create(_ context.Context, u *models.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	for _, existing := range s.m.users {
		if existing.Email == u.Email {
			return apperror.DuplicateUser()
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.m.users[u.ID] = *u
	return nil
}

func (s *MemUsers) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	u, ok := s.m.users[id]
	if !ok {
		return nil, apperror.NotFound("User not found")
	}
	return &u, nil
}

func (s *MemUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	for _, u := range s.m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("User not found")
}

func (s *MemUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.users, id)
	return nil
}

type MemProfiles struct{ m *MemStore }

// withOwner copies p and attaches its owner. Callers hold the lock.
func (s *MemProfiles) withOwner(p models.Profile) models.Profile {
	p = copyProfile(p)
	if u, ok := s.m.users[p.UserID]; ok {
		p.Owner = u.Summary()
	}
	p.Normalize()
	return p
}

func (s *MemProfiles) GetByUser(_ context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	p, ok := s.m.profiles[userID]
	if !ok {
		return nil, apperror.NotFound("Profile not found")
	}
	out := s.withOwner(p)
	return &out, nil
}

func (s *MemProfiles) List(_ context.Context) ([]models.Profile, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	out := make([]models.Profile, 0, len(s.m.profiles))
	for _, p := range s.m.profiles {
		out = append(out, s.withOwner(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemProfiles) Upsert(_ context.Context, userID primitive.ObjectID, fields models.ProfileFields) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	p, ok := s.m.profiles[userID]
	if !ok {
		p = models.Profile{
			ID:         primitive.NewObjectID(),
			UserID:     userID,
			Experience: []models.Experience{},
			Education:  []models.Education{},
			CreatedAt:  time.Now().UTC(),
		}
	}
	fields.Apply(&p)
	p.Skills = append([]string(nil), p.Skills...)
	s.m.profiles[userID] = p
	return nil
}

func (s *MemProfiles) Save(_ context.Context, p *models.Profile) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	existing, ok := s.m.profiles[p.UserID]
	if !ok || existing.ID != p.ID {
		return apperror.NotFound("Profile not found")
	}
	stored := copyProfile(*p)
	stored.Owner = nil
	s.m.profiles[p.UserID] = stored
	return nil
}

func (s *MemProfiles) DeleteByUser(_ context.Context, userID primitive.ObjectID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.profiles, userID)
	return nil
}

type MemPosts struct{ m *MemStore }

func (s *MemPosts) Create(_ context.Context, p *models.Post) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.m.posts[p.ID] = copyPost(*p)
	return nil
}

func (s *MemPosts) List(_ context.Context) ([]models.Post, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	out := make([]models.Post, 0, len(s.m.posts))
	for _, p := range s.m.posts {
		out = append(out, copyPost(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemPosts) Get(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	p, ok := s.m.posts[id]
	if !ok {
		return nil, apperror.NotFound("Post not found")
	}
	out := copyPost(p)
	return &out, nil
}

func (s *MemPosts) Save(_ context.Context, p *models.Post) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if _, ok := s.m.posts[p.ID]; !ok {
		return apperror.NotFound("Post not found")
	}
	s.m.posts[p.ID] = copyPost(*p)
	return nil
}

func (s *MemPosts) Delete(_ context.Context, id primitive.ObjectID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if _, ok := s.m.posts[id]; !ok {
		return apperror.NotFound("Post not found")
	}
	delete(s.m.posts, id)
	return nil
}

func copyPost(p models.Post) models.Post {
	p.Likes = append([]models.Like{}, p.Likes...)
	p.Comments = append([]models.Comment{}, p.Comments...)
	return p
}

func copyProfile(p models.Profile) models.Profile {
	p.Skills = append([]string(nil), p.Skills...)
	p.Experience = append([]models.Experience{}, p.Experience...)
	p.Education = append([]models.Education{}, p.Education...)
	return p
}
