package database

import (
	"context"
	"time"

	"devconnector/apperror"
	"devconnector/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProfileStore struct {
	coll *mongo.Collection
}

func NewProfileStore(coll *mongo.Collection) *ProfileStore {
	return &ProfileStore{coll: coll}
}

// profileRow decodes a profile joined with its owner.
type profileRow struct {
	models.Profile `bson:",inline"`
	Owner          *models.UserSummary `bson:"owner"`
}

// withOwner appends the stages joining the owning user's name and avatar.
func withOwner(stages ...bson.D) mongo.Pipeline {
	pipeline := mongo.Pipeline(stages)
	return append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: UsersCollection},
			{Key: "localField", Value: "user"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "owner"},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$owner"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "owner.password", Value: 0},
			{Key: "owner.email", Value: 0},
		}}},
	)
}

func (s *ProfileStore) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]models.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, OpTimeout)
	defer cancel()

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperror.Store("aggregate profiles", err)
	}
	defer cursor.Close(ctx)

	var rows []profileRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, apperror.Store("decode profiles", err)
	}

	profiles := make([]models.Profile, len(rows))
	for i, r := range rows {
		profiles[i] = r.Profile
		profiles[i].Owner = r.Owner
		profiles[i].Normalize()
	}
	return profiles, nil
}

// GetByUser returns the profile owned by userID with its owner attached.
func (s *ProfileStore) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	profiles, err := s.aggregate(ctx, withOwner(
		bson.D{{Key: "$match", Value: bson.D{{Key: "user", Value: userID}}}},
		bson.D{{Key: "$limit", Value: 1}},
	))
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, apperror.NotFound("Profile not found")
	}
	return &profiles[0], nil
}

func (s *ProfileStore) List(ctx context.Context) ([]models.Profile, error) {
	return s.aggregate(ctx, withOwner(
		bson.D{{Key: "$sort", Value: bson.D{{Key: "date", Value: -1}}}},
	))
}

// Upsert writes only the supplied fields for userID's profile, creating the
// profile when it does not exist yet.
func (s *ProfileStore) Upsert(ctx context.Context, userID primitive.ObjectID, fields models.ProfileFields) error {
	ctx, cancel := context.WithTimeout(ctx, OpTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M(fields.SetDocument()),
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"experience": bson.A{},
			"education":  bson.A{},
			"date":       time.Now().UTC(),
		},
	}

	_, err := s.coll.UpdateOne(ctx, bson.M{"user": userID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return apperror.Store("upsert profile", err)
	}
	return nil
}

// Save replaces the stored profile with p.
func (s *ProfileStore) Save(ctx context.Context, p *models.Profile) error {
	ctx, cancel := context.WithTimeout(ctx, OpTimeout)
	defer cancel()

	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return apperror.Store("replace profile", err)
	}
	if res.MatchedCount == 0 {
		return apperror.NotFound("Profile not found")
	}
	return nil
}

func (s *ProfileStore) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, OpTimeout)
	defer cancel()

	if _, err := s.coll.DeleteOne(ctx, bson.M{"user": userID}); err != nil {
		return apperror.Store("delete profile", err)
	}
	return nil
}
