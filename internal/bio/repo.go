package bio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/huyblog/blogservice/internal/db"
	"github.com/huyblog/blogservice/internal/telemetry/tracing"
)

var _ bioRepo = (*Repo)(nil)

type Repo struct {
	coll *mongo.Collection
}

func NewRepo(database *mongo.Database) *Repo {
	return &Repo{
		coll: database.Collection(db.CollectionBio),
	}
}

// Get returns the stored translations, or an empty map when the document does not exist yet.
func (r *Repo) Get(ctx context.Context) (_ Translations, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "bioRepo.Get")
	defer func() { tracing.EndSpan(span, err) }()

	var doc Document
	err = r.coll.FindOne(ctx, bson.M{"_id": DocumentID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Translations{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find bio: %w", err)
	}

	if doc.Translations == nil {
		return Translations{}, nil
	}
	return doc.Translations, nil
}

func (r *Repo) Upsert(ctx context.Context, translations Translations, now time.Time) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "bioRepo.Upsert")
	defer func() { tracing.EndSpan(span, err) }()

	_, err = r.coll.UpdateOne(
		ctx,
		bson.M{"_id": DocumentID},
		bson.M{"$set": bson.M{
			"translations": translations,
			"updatedAt":    now,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert bio: %w", err)
	}

	return nil
}
