package users

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/kimm528/ringfitmanager/health"
	"github.com/kimm528/ringfitmanager/store"
)

func NewRepository(db *mongo.Database, logger *zap.SugaredLogger, lifecycle fx.Lifecycle) (Repository, error) {
	repo := &repository{
		collection: db.Collection(CollectionName),
		logger:     logger,
	}

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return repo.Initialize(ctx)
		},
	})

	return repo, nil
}

type repository struct {
	collection *mongo.Collection
	logger     *zap.SugaredLogger
}

func (r *repository) Initialize(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "name", Value: 1},
			},
			Options: options.Index().
				SetName("UserName"),
		},
		{
			Keys: bson.D{
				{Key: "room", Value: 1},
			},
			Options: options.Index().
				SetName("UserRoom").
				SetPartialFilterExpression(bson.D{{Key: "room", Value: bson.M{"$exists": true}}}),
		},
	})
	return err
}

func (r *repository) Get(ctx context.Context, id string) (*User, error) {
	userId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	user := &User{}
	err = r.collection.FindOne(ctx, bson.M{"_id": userId}).Decode(user)
	if err != nil {
		return nil, store.TranslateNotFound(err, ErrNotFound, "fetching user")
	}
	return user, nil
}

func (r *repository) List(ctx context.Context, filter *Filter, pagination store.Pagination) (*ListResult, error) {
	selector := bson.M{}
	if filter != nil {
		if len(filter.Ids) > 0 {
			selector["_id"] = bson.M{"$in": store.ObjectIDSFromStringArray(filter.Ids)}
		}
		if filter.Search != nil && *filter.Search != "" {
			selector["name"] = bson.M{
				"$regex":   regexp.QuoteMeta(*filter.Search),
				"$options": "i",
			}
		}
		if filter.Room != nil {
			selector["room"] = filter.Room
		}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(pagination.Offset))
	if pagination.Limit > 0 {
		opts.SetLimit(int64(pagination.Limit))
	}

	cursor, err := r.collection.Find(ctx, selector, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	result := &ListResult{Users: make([]*User, 0)}
	if err = cursor.All(ctx, &result.Users); err != nil {
		return nil, fmt.Errorf("error decoding users list: %w", err)
	}

	count, err := r.collection.CountDocuments(ctx, selector)
	if err != nil {
		return nil, fmt.Errorf("error counting users: %w", err)
	}
	result.TotalCount = int(count)

	return result, nil
}

func (r *repository) Create(ctx context.Context, user *User) (*User, error) {
	now := time.Now()
	user.Id = nil
	user.CreatedTime = now
	user.UpdatedTime = now

	res, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	id := res.InsertedID.(primitive.ObjectID)
	return r.Get(ctx, id.Hex())
}

func (r *repository) Update(ctx context.Context, id string, update *User) (*User, error) {
	set := bson.M{
		"name":        update.Name,
		"updatedTime": time.Now(),
	}
	unset := bson.M{}
	setOrUnset(set, unset, "birthDate", update.BirthDate)
	setOrUnset(set, unset, "gender", update.Gender)
	setOrUnset(set, unset, "room", update.Room)
	setOrUnset(set, unset, "phone", update.Phone)

	doc := bson.M{"$set": set}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}
	return r.findOneAndUpdate(ctx, id, doc, "updating user")
}

func (r *repository) SetThresholds(ctx context.Context, id string, thresholds *health.Thresholds) (*User, error) {
	set := bson.M{"updatedTime": time.Now()}
	unset := bson.M{}
	setOrUnset(set, unset, "thresholds", thresholds)

	doc := bson.M{"$set": set}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}
	return r.findOneAndUpdate(ctx, id, doc, "updating user thresholds")
}

func (r *repository) SetGoals(ctx context.Context, id string, goals *health.Goals) (*User, error) {
	set := bson.M{"updatedTime": time.Now()}
	unset := bson.M{}
	setOrUnset(set, unset, "goals", goals)

	doc := bson.M{"$set": set}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}
	return r.findOneAndUpdate(ctx, id, doc, "updating user goals")
}

func (r *repository) Delete(ctx context.Context, id string) error {
	userId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": userId})
	if err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) findOneAndUpdate(ctx context.Context, id string, update bson.M, operation string) (*User, error) {
	userId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	user := &User{}
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": userId}, update, opts).Decode(user)
	if err != nil {
		return nil, store.TranslateNotFound(err, ErrNotFound, operation)
	}
	return user, nil
}

func setOrUnset[T any](set, unset bson.M, key string, value *T) {
	if value == nil {
		unset[key] = ""
	} else {
		set[key] = value
	}
}
