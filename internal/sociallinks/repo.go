package sociallinks

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/huyblog/blogservice/internal/db"
	"github.com/huyblog/blogservice/internal/telemetry/tracing"
)

var _ linksRepo = (*Repo)(nil)

type Repo struct {
	coll *mongo.Collection
}

func NewRepo(database *mongo.Database) *Repo {
	return &Repo{
		coll: database.Collection(db.CollectionSocialLinks),
	}
}

func (r *Repo) All(ctx context.Context) (links []*SocialLink, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "socialLinksRepo.All")
	defer func() { tracing.EndSpan(span, err) }()

	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find social links: %w", err)
	}
	defer cursor.Close(ctx)

	links = []*SocialLink{}
	if err := cursor.All(ctx, &links); err != nil {
		return nil, fmt.Errorf("decode social links: %w", err)
	}

	return links, nil
}

func (r *Repo) Get(ctx context.Context, id primitive.ObjectID) (_ *SocialLink, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "socialLinksRepo.Get")
	defer func() { tracing.EndSpan(span, err) }()

	var link SocialLink
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&link); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSocialLinkNotFound
		}
		return nil, fmt.Errorf("find social link %s: %w", id.Hex(), err)
	}

	return &link, nil
}

func (r *Repo) Create(ctx context.Context, link *SocialLink) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "socialLinksRepo.Create")
	defer func() { tracing.EndSpan(span, err) }()

	link.ID = primitive.NilObjectID
	res, err := r.coll.InsertOne(ctx, link)
	if err != nil {
		return fmt.Errorf("insert social link: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	link.ID = oid

	return nil
}

func (r *Repo) Update(ctx context.Context, id primitive.ObjectID, set bson.D) (_ *SocialLink, err error) {
	if len(set) == 0 {
		return r.Get(ctx, id)
	}

	ctx, span := tracing.GlobalTracer.Start(ctx, "socialLinksRepo.Update")
	defer func() { tracing.EndSpan(span, err) }()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var link SocialLink
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&link)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSocialLinkNotFound
		}
		return nil, fmt.Errorf("update social link %s: %w", id.Hex(), err)
	}

	return &link, nil
}

func (r *Repo) Delete(ctx context.Context, id primitive.ObjectID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "socialLinksRepo.Delete")
	defer func() { tracing.EndSpan(span, err) }()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete social link %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return ErrSocialLinkNotFound
	}

	return nil
}
