package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/oksasatya/evcharge/internal/domain/entity"
	"github.com/oksasatya/evcharge/internal/domain/repository"
	"github.com/oksasatya/evcharge/pkg/apperror"
)

var errUserNotFound = apperror.NotFound("user not found")

type UserRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(UsersCollection), now: time.Now}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	now := r.now().UTC()
	doc := &userDoc{
		ID:        bson.NewObjectID(),
		Email:     u.Email,
		Password:  u.Password,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.Conflict("email already registered")
		}
		return err
	}
	u.ID = doc.ID.Hex()
	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.D) (*entity.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errUserNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, errUserNotFound
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *UserRepository) SetResetToken(ctx context.Context, userID, digest string, expiry time.Time) error {
	oid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return errUserNotFound
	}
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: bson.D{
		{Key: "resetToken", Value: digest},
		{Key: "resetTokenExpiry", Value: expiry.UTC()},
		{Key: "updatedAt", Value: r.now().UTC()},
	}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errUserNotFound
	}
	return nil
}

// ConsumeResetToken matches and clears the token in one FindOneAndUpdate, so
// two redemptions of the same token cannot both succeed.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, digest string, now time.Time, passwordHash string) (*entity.User, error) {
	filter := bson.D{
		{Key: "resetToken", Value: digest},
		{Key: "resetTokenExpiry", Value: bson.D{{Key: "$gt", Value: now.UTC()}}},
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "password", Value: passwordHash},
			{Key: "updatedAt", Value: r.now().UTC()},
		}},
		{Key: "$unset", Value: bson.D{
			{Key: "resetToken", Value: ""},
			{Key: "resetTokenExpiry", Value: ""},
		}},
	}
	var doc userDoc
	err := r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("no matching reset token")
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
