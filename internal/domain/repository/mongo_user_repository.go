package repository

import (
	"context"
	"errors"
	"fmt"
	"time"
	"vaccitrack/internal/common"
	"vaccitrack/internal/domain/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const usersCollection = "users"

type mongoUserDetails struct {
	FirstName   string `bson:"firstName"`
	LastName    string `bson:"lastName"`
	DateOfBirth string `bson:"dateOfBirth"`
}

type mongoUser struct {
	ID          bson.ObjectID    `bson:"_id,omitempty"`
	Email       string           `bson:"email"`
	Password    string           `bson:"password"`
	Type        string           `bson:"type"`
	Active      bool             `bson:"active"`
	UserDetails mongoUserDetails `bson:"userDetails"`
	CreatedAt   time.Time        `bson:"createdAt"`
	UpdatedAt   time.Time        `bson:"updatedAt"`
}

func (d *mongoUser) toModel() *model.User {
	return &model.User{
		ID:       d.ID.Hex(),
		Email:    d.Email,
		Password: d.Password,
		Type:     model.UserType(d.Type),
		Active:   d.Active,
		UserDetails: model.UserDetails{
			FirstName:   d.UserDetails.FirstName,
			LastName:    d.UserDetails.LastName,
			DateOfBirth: d.UserDetails.DateOfBirth,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func fromModel(u *model.User) (*mongoUser, error) {
	d := &mongoUser{
		Email:    u.Email,
		Password: u.Password,
		Type:     string(u.Type),
		Active:   u.Active,
		UserDetails: mongoUserDetails{
			FirstName:   u.UserDetails.FirstName,
			LastName:    u.UserDetails.LastName,
			DateOfBirth: u.UserDetails.DateOfBirth,
		},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.ID != "" {
		oid, err := bson.ObjectIDFromHex(u.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q: %w", u.ID, common.ErrBadRequest)
		}
		d.ID = oid
	}
	return d, nil
}

// userFilterToBSON turns a filter into an equality document. An id that is
// not a valid ObjectID cannot match anything and reports common.ErrNotFound.
func userFilterToBSON(f model.UserFilter) (bson.D, error) {
	if f.IsEmpty() {
		return nil, fmt.Errorf("empty filter: %w", common.ErrBadRequest)
	}
	filter := bson.D{}
	if f.ID != "" {
		oid, err := bson.ObjectIDFromHex(f.ID)
		if err != nil {
			return nil, common.ErrNotFound
		}
		filter = append(filter, bson.E{Key: "_id", Value: oid})
	}
	if f.Email != "" {
		filter = append(filter, bson.E{Key: "email", Value: f.Email})
	}
	if f.Password != "" {
		filter = append(filter, bson.E{Key: "password", Value: f.Password})
	}
	return filter, nil
}

var statsPipeline = mongo.Pipeline{
	{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: bson.D{
			{Key: "type", Value: "$type"},
			{Key: "active", Value: "$active"},
		}},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
	}}},
}

type statsBucket struct {
	ID struct {
		Type   string `bson:"type"`
		Active bool   `bson:"active"`
	} `bson:"_id"`
	Count int `bson:"count"`
}

// userCollection is the part of *mongo.Collection the repository uses.
type userCollection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
	InsertOne(ctx context.Context, document interface{}, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
	Aggregate(ctx context.Context, pipeline interface{}, opts ...options.Lister[options.AggregateOptions]) (*mongo.Cursor, error)
}

type mongoUserRepository struct {
	coll userCollection
	now  func() time.Time
}

func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{coll: db.Collection(usersCollection), now: time.Now}
}

// EnsureUserIndexes creates the unique email index the signup flow relies on.
func EnsureUserIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_key"),
	})
	if err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}
	return nil
}

func (r *mongoUserRepository) FindOne(ctx context.Context, filter model.UserFilter) (*model.User, error) {
	q, err := userFilterToBSON(filter)
	if err != nil {
		return nil, err
	}
	var doc mongoUser
	if err := r.coll.FindOne(ctx, q).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("mongoUserRepository.FindOne: %w", err)
	}
	return doc.toModel(), nil
}

func (r *mongoUserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	now := r.now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	doc, err := fromModel(user)
	if err != nil {
		return nil, err
	}
	if doc.ID.IsZero() {
		doc.ID = bson.NewObjectID()
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
		return nil, fmt.Errorf("mongoUserRepository.Create: %w", err)
	}
	user.ID = doc.ID.Hex()
	return user, nil
}

func (r *mongoUserRepository) Stats(ctx context.Context) ([]model.UserTypeCount, error) {
	cursor, err := r.coll.Aggregate(ctx, statsPipeline)
	if err != nil {
		return nil, fmt.Errorf("mongoUserRepository.Stats: %w", err)
	}
	defer cursor.Close(ctx)

	var buckets []statsBucket
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, fmt.Errorf("mongoUserRepository.Stats: %w", err)
	}

	out := make([]model.UserTypeCount, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, model.UserTypeCount{
			Type:   model.UserType(b.ID.Type),
			Active: b.ID.Active,
			Count:  b.Count,
		})
	}
	return out, nil
}
