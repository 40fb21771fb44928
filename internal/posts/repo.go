package posts

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"

	"github.com/huyblog/blogservice/internal/db"
	"github.com/huyblog/blogservice/internal/telemetry/tracing"
)

var _ postsRepo = (*Repo)(nil)

type Repo struct {
	coll *mongo.Collection
}

func NewRepo(database *mongo.Database) *Repo {
	return &Repo{
		coll: database.Collection(db.CollectionPosts),
	}
}

// EnsureIndexes creates the listing indexes, it is safe to call on every start.
func (r *Repo) EnsureIndexes(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postsRepo.EnsureIndexes")
	defer func() { tracing.EndSpan(span, err) }()

	names, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "categories", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create posts indexes: %w", err)
	}

	log.Debugf("posts indexes ready: %v", names)
	return nil
}

func (r *Repo) All(ctx context.Context, filter Filter) (_ []*Post, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postsRepo.All")
	defer func() { tracing.EndSpan(span, err) }()
	span.SetAttributes(attribute.Bool("filtered", !filter.IsEmpty()))

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter.BSON(), opts)
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	defer cursor.Close(ctx)

	posts := []*Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	for _, p := range posts {
		p.normalize()
	}

	span.SetAttributes(attribute.Int("posts.count", len(posts)))
	return posts, nil
}

func (r *Repo) Get(ctx context.Context, id primitive.ObjectID) (_ *Post, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postsRepo.Get")
	defer func() { tracing.EndSpan(span, err) }()

	var post Post
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("find post %s: %w", id.Hex(), err)
	}

	post.normalize()
	return &post, nil
}

func (r *Repo) Create(ctx context.Context, post *Post) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postsRepo.Create")
	defer func() { tracing.EndSpan(span, err) }()

	post.ID = primitive.NilObjectID
	res, err := r.coll.InsertOne(ctx, post)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	post.ID = oid

	return nil
}

// Update replaces the fields in set and returns the updated post.
// An empty set leaves the document as is.
func (r *Repo) Update(ctx context.Context, id primitive.ObjectID, set bson.D) (_ *Post, err error) {
	if len(set) == 0 {
		return r.Get(ctx, id)
	}

	ctx, span := tracing.GlobalTracer.Start(ctx, "postsRepo.Update")
	defer func() { tracing.EndSpan(span, err) }()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post Post
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("update post %s: %w", id.Hex(), err)
	}

	post.normalize()
	return &post, nil
}

func (r *Repo) Delete(ctx context.Context, id primitive.ObjectID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postsRepo.Delete")
	defer func() { tracing.EndSpan(span, err) }()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete post %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}

	return nil
}
