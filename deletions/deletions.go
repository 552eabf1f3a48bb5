package deletions

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Metadata struct {
	DeletedBy *string `bson:"deletedBy,omitempty"`
	Reason    *string `bson:"reason,omitempty"`
}

// Deletion is the archived copy of a removed document.
type Deletion[T any] struct {
	Id          *primitive.ObjectID `bson:"_id,omitempty"`
	DeletedTime time.Time           `bson:"deletedTime"`
	Metadata    `bson:",inline"`
	Document    T `bson:"document"`
}

type Repository[T any] interface {
	Create(context.Context, T, Metadata) error
	List(ctx context.Context, limit int) ([]Deletion[T], error)
	Initialize(ctx context.Context) error
}

// NewRepositoryFactory returns an fx constructor for the archive of typ
// documents, indexed by the given attributes of the archived document.
func NewRepositoryFactory[T any](typ string, primaryKeyAttributes []string) func(db *mongo.Database, logger *zap.SugaredLogger, lifecycle fx.Lifecycle) (Repository[T], error) {
	return func(db *mongo.Database, logger *zap.SugaredLogger, lifecycle fx.Lifecycle) (Repository[T], error) {
		repo := &deletionsRepository[T]{
			collection:           db.Collection(fmt.Sprintf("%s_deletions", typ)),
			logger:               logger,
			documentType:         typ,
			primaryKeyAttributes: primaryKeyAttributes,
		}

		lifecycle.Append(fx.Hook{
			OnStart: repo.Initialize,
		})

		return repo, nil
	}
}

type deletionsRepository[T any] struct {
	collection           *mongo.Collection
	logger               *zap.SugaredLogger
	documentType         string
	primaryKeyAttributes []string
}

func (p *deletionsRepository[T]) Initialize(ctx context.Context) error {
	_, err := p.collection.Indexes().CreateMany(ctx, p.getIndexes())
	return err
}

func (p *deletionsRepository[T]) getIndexes() []mongo.IndexModel {
	var primaryIndexKeys bson.D
	for _, attr := range p.primaryKeyAttributes {
		primaryIndexKeys = append(primaryIndexKeys, primitive.E{
			Key:   fmt.Sprintf("document.%s", attr),
			Value: 1,
		})
	}

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "deletedTime", Value: -1}},
			Options: options.Index().SetName("DeletedTime"),
		},
	}
	if len(primaryIndexKeys) > 0 {
		indexes = append(indexes, mongo.IndexModel{
			Keys:    primaryIndexKeys,
			Options: options.Index().SetName(fmt.Sprintf("%sDeletion", cases.Title(language.English).String(p.documentType))),
		})
	}
	return indexes
}

func (p *deletionsRepository[T]) Create(ctx context.Context, deleted T, meta Metadata) error {
	document := Deletion[T]{
		DeletedTime: time.Now(),
		Metadata:    meta,
		Document:    deleted,
	}
	if _, err := p.collection.InsertOne(ctx, document); err != nil {
		return fmt.Errorf("error persisting deleted %s in collection %s: %w", p.documentType, p.collection.Name(), err)
	}
	p.logger.Debugw("archived deleted document", "type", p.documentType)
	return nil
}

func (p *deletionsRepository[T]) List(ctx context.Context, limit int) ([]Deletion[T], error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "deletedTime", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := p.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing deleted %s: %w", p.documentType, err)
	}

	var result []Deletion[T]
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("error decoding deleted %s: %w", p.documentType, err)
	}
	return result, nil
}
