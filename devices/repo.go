package devices

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"

	"github.com/kimm528/ringfitmanager/store"
)

func NewRepository(db *mongo.Database, lifecycle fx.Lifecycle) (Repository, error) {
	repo := &repository{
		collection: db.Collection(CollectionName),
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
}

func (r *repository) Initialize(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "mac", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("UniqueMac"),
		},
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("UniqueAssignedUser").
				SetPartialFilterExpression(bson.D{{Key: "userId", Value: bson.M{"$exists": true}}}),
		},
	})
	return err
}

func (r *repository) Get(ctx context.Context, id string) (*Device, error) {
	deviceId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": deviceId})
}

func (r *repository) GetByMac(ctx context.Context, mac string) (*Device, error) {
	return r.findOne(ctx, bson.M{"mac": mac})
}

func (r *repository) GetByUser(ctx context.Context, userId string) (*Device, error) {
	return r.findOne(ctx, bson.M{"userId": userId})
}

func (r *repository) List(ctx context.Context, filter *Filter, pagination store.Pagination) (*ListResult, error) {
	selector := bson.M{}
	if filter != nil {
		if filter.Assigned != nil {
			selector["userId"] = bson.M{"$exists": *filter.Assigned}
		}
		if len(filter.UserIds) > 0 {
			selector["userId"] = bson.M{"$in": filter.UserIds}
		}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "mac", Value: 1}}).
		SetSkip(int64(pagination.Offset))
	if pagination.Limit > 0 {
		opts.SetLimit(int64(pagination.Limit))
	}

	cursor, err := r.collection.Find(ctx, selector, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing devices: %w", err)
	}

	result := &ListResult{Devices: make([]*Device, 0)}
	if err = cursor.All(ctx, &result.Devices); err != nil {
		return nil, fmt.Errorf("error decoding devices list: %w", err)
	}

	count, err := r.collection.CountDocuments(ctx, selector)
	if err != nil {
		return nil, fmt.Errorf("error counting devices: %w", err)
	}
	result.TotalCount = int(count)

	return result, nil
}

func (r *repository) Create(ctx context.Context, device *Device) (*Device, error) {
	now := time.Now()
	device.Id = nil
	device.CreatedTime = now
	device.UpdatedTime = now

	res, err := r.collection.InsertOne(ctx, device)
	if store.IsDuplicateKeyError(err) {
		return nil, ErrDuplicateMac
	} else if err != nil {
		return nil, fmt.Errorf("error creating device: %w", err)
	}

	id := res.InsertedID.(primitive.ObjectID)
	return r.Get(ctx, id.Hex())
}

func (r *repository) Delete(ctx context.Context, id string) error {
	deviceId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": deviceId})
	if err != nil {
		return fmt.Errorf("error deleting device: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Assign(ctx context.Context, id, userId string) (*Device, error) {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"userId":       userId,
			"assignedTime": now,
			"updatedTime":  now,
		},
	}
	device, err := r.findOneAndUpdate(ctx, id, update, "assigning device")
	if store.IsDuplicateKeyError(err) {
		return nil, ErrUserHasRing
	}
	return device, err
}

func (r *repository) Unassign(ctx context.Context, id string) (*Device, error) {
	update := bson.M{
		"$set":   bson.M{"updatedTime": time.Now()},
		"$unset": bson.M{"userId": "", "assignedTime": ""},
	}
	return r.findOneAndUpdate(ctx, id, update, "unassigning device")
}

func (r *repository) UnassignUser(ctx context.Context, userId string) error {
	update := bson.M{
		"$set":   bson.M{"updatedTime": time.Now()},
		"$unset": bson.M{"userId": "", "assignedTime": ""},
	}
	if _, err := r.collection.UpdateMany(ctx, bson.M{"userId": userId}, update); err != nil {
		return fmt.Errorf("error releasing devices of user: %w", err)
	}
	return nil
}

func (r *repository) findOne(ctx context.Context, selector bson.M) (*Device, error) {
	device := &Device{}
	if err := r.collection.FindOne(ctx, selector).Decode(device); err != nil {
		return nil, store.TranslateNotFound(err, ErrNotFound, "fetching device")
	}
	return device, nil
}

func (r *repository) findOneAndUpdate(ctx context.Context, id string, update bson.M, operation string) (*Device, error) {
	deviceId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	device := &Device{}
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": deviceId}, update, opts).Decode(device)
	if err != nil {
		return nil, store.TranslateNotFound(err, ErrNotFound, operation)
	}
	return device, nil
}
