package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/placementcell/drivetrack/internal/apperror"
	"github.com/placementcell/drivetrack/internal/model"
	"github.com/placementcell/drivetrack/internal/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implements repository.UserRepository on the `users` collection.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a UserRepo over an open handle.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a user. The caller passes an already-normalized username
// and a derived password hash; a racing duplicate insert is surfaced as a
// conflict by the unique index.
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.db.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.Conflict("Existing user")
		}
		return fmt.Errorf("mongodb: creating user: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}

	return nil
}

// GetByUsername looks a user up by exact (normalized) username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.users.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("user")
		}
		return nil, fmt.Errorf("mongodb: getting user %q: %w", username, err)
	}

	return &user, nil
}

// GetByID looks a user up by its hex document ID. A malformed ID cannot
// name a document, so it is reported as not found.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.NotFound("user")
	}

	var user model.User
	err = r.db.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("user")
		}
		return nil, fmt.Errorf("mongodb: getting user %s: %w", id, err)
	}

	return &user, nil
}

// List returns all users.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	cursor, err := r.db.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing users: %w", err)
	}

	users := []model.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("mongodb: decoding users: %w", err)
	}

	return users, nil
}
