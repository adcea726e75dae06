package database

import (
	"context"
	"errors"

	"devconnector/apperror"
	"devconnector/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PostStore struct {
	coll *mongo.Collection
}

func NewPostStore(coll *mongo.Collection) *PostStore {
	return &PostStore{coll: coll}
}

func (s *PostStore) Create(ctx context.Context, p *models.Post) error {
	ctx, cancel := context.WithTimeout(ctx, OpTimeout)
	defer cancel()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		return apperror.Store("insert post", err)
	}
	return nil
}

// List returns every post, newest first.
func (s *PostStore) List(ctx context.Context) ([]models.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, OpTimeout)
	defer cancel()

	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, apperror.Store("find posts", err)
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, apperror.Store("decode posts", err)
	}
	for i := range posts {
		posts[i].Normalize()
	}
	return posts, nil
}

func (s *PostStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, OpTimeout)
	defer cancel()

	var p models.Post
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperror.NotFound("Post not found")
	}
	if err != nil {
		return nil, apperror.Store("find post", err)
	}
	p.Normalize()
	return &p, nil
}

// Save replaces the stored post with p.
func (s *PostStore) Save(ctx context.Context, p *models.Post) error {
	ctx, cancel := context.WithTimeout(ctx, OpTimeout)
	defer cancel()

	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return apperror.Store("replace post", err)
	}
	if res.MatchedCount == 0 {
		return apperror.NotFound("Post not found")
	}
	return nil
}

func (s *PostStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, OpTimeout)
	defer cancel()

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperror.Store("delete post", err)
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound("Post not found")
	}
	return nil
}
