package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/odyssey-erp/gatehouse/internal/shared"
)

// userDocument is the stored shape of a user in MongoDB.
type userDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Username  string        `bson:"username"`
	Password  string        `bson:"password"`
	UserType  string        `bson:"user_type"`
	CreatedAt time.Time     `bson:"createdAt"`
}

func (d userDocument) toDomain() User {
	// documents written before roles existed carry no user_type
	return User{
		Username:     d.Username,
		PasswordHash: d.Password,
		Role:         roleOrDefault(d.UserType),
		CreatedAt:    d.CreatedAt,
	}
}

// MongoStore implements Store on a MongoDB collection.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore wraps the given collection.
func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

// EnsureIndexes creates the unique username index that backs InsertIfAbsent.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_unique"),
	})
	if err != nil {
		return fmt.Errorf("users: ensure mongo indexes: %w", err)
	}
	return nil
}

// FindByUsername fetches a user by username.
func (s *MongoStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	var doc userDocument
	err := s.coll.FindOne(ctx, bson.D{{Key: "username", Value: username}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("users: find %s: %w", username, err)
	}
	user := doc.toDomain()
	return &user, nil
}

// InsertIfAbsent upserts with $setOnInsert so an existing document is never
// touched. Two racing inserts are resolved by the unique index.
func (s *MongoStore) InsertIfAbsent(ctx context.Context, user User) error {
	doc := bson.D{
		{Key: "username", Value: user.Username},
		{Key: "password", Value: user.PasswordHash},
		{Key: "user_type", Value: string(user.Role)},
		{Key: "createdAt", Value: user.CreatedAt},
	}
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "username", Value: user.Username}},
		bson.D{{Key: "$setOnInsert", Value: doc}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return shared.ErrDuplicateUser
		}
		return fmt.Errorf("users: insert %s: %w", user.Username, err)
	}
	if res.UpsertedCount == 0 {
		return shared.ErrDuplicateUser
	}
	return nil
}

// SetRole updates user_type on the matching document.
func (s *MongoStore) SetRole(ctx context.Context, username string, role shared.Role) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "username", Value: username}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "user_type", Value: string(role)}}}},
	)
	if err != nil {
		return fmt.Errorf("users: set role %s: %w", username, err)
	}
	if res.MatchedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// List returns all users ordered by username.
func (s *MongoStore) List(ctx context.Context) ([]User, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("users: decode list: %w", err)
	}
	out := make([]User, len(docs))
	for i, doc := range docs {
		out[i] = doc.toDomain()
	}
	return out, nil
}

var _ Store = (*MongoStore)(nil)
