// Package database owns the MongoDB connection and the collection-backed
// stores for users, profiles and posts.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection    = "users"
	ProfilesCollection = "profiles"
	PostsCollection    = "posts"
)

// OpTimeout bounds every single store operation.
const OpTimeout = 10 * time.Second

type Database struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Connect dials uri, pings the primary and returns a handle on the named
// database.
func Connect(ctx context.Context, uri, name string) (*Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	slog.Info("connected to MongoDB", slog.String("database", name))
	return New(client, name), nil
}

// ConnectWithRetry calls Connect up to attempts times, pausing between
// failures.
func ConnectWithRetry(ctx context.Context, uri, name string, attempts int, pause time.Duration) (*Database, error) {
	var lastErr error
	for i := 1; i <= attempts; i++ {
		db, err := Connect(ctx, uri, name)
		if err == nil {
			return db, nil
		}
		lastErr = err
		slog.Warn("MongoDB connection attempt failed", slog.Int("attempt", i), slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pause):
		}
	}
	return nil, lastErr
}

func New(client *mongo.Client, name string) *Database {
	return &Database{Client: client, DB: client.Database(name)}
}

func (d *Database) Disconnect(ctx context.Context) error {
	if d == nil || d.Client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := d.Client.Disconnect(ctx); err != nil {
		return err
	}
	slog.Info("disconnected from MongoDB")
	return nil
}

// EnsureIndexes creates the unique indexes the stores rely on: one account
// per email and one profile per user.
func (d *Database) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, OpTimeout)
	defer cancel()

	indexes := map[string]mongo.IndexModel{
		UsersCollection: {
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		ProfilesCollection: {
			Keys:    bson.D{{Key: "user", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("user_unique"),
		},
		PostsCollection: {
			Keys:    bson.D{{Key: "date", Value: -1}},
			Options: options.Index().SetName("date_desc"),
		},
	}

	for coll, model := range indexes {
		if _, err := d.DB.Collection(coll).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("creating index on %s: %w", coll, err)
		}
	}
	return nil
}

func (d *Database) Users() *UserStore {
	return NewUserStore(d.DB.Collection(UsersCollection))
}

func (d *Database) Profiles() *ProfileStore {
	return NewProfileStore(d.DB.Collection(ProfilesCollection))
}

func (d *Database) Posts() *PostStore {
	return NewPostStore(d.DB.Collection(PostsCollection))
}

func (d *Database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return d.Client.Ping(ctx, nil)
}
