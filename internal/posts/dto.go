package posts

import (
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/huyblog/blogservice/internal/content"
)

// CreatePostRequest is the body of POST /api/posts.
// id and _id are accepted so a client can resend a fetched post, but never stored.
type CreatePostRequest struct {
	ID      json.RawMessage `json:"id,omitempty"`
	MongoID json.RawMessage `json:"_id,omitempty"`

	Title      *content.BilingualText `json:"title" validate:"required"`
	Excerpt    *content.BilingualText `json:"excerpt" validate:"required"`
	Content    *content.BilingualText `json:"content" validate:"required"`
	Date       string                 `json:"date" validate:"required,datetime=2006-01-02"`
	ReadTime   int                    `json:"readTime" validate:"required,min=1"`
	Categories []string               `json:"categories" validate:"required,min=1,unique,dive,category"`
	ImageURL   string                 `json:"imageUrl" validate:"omitempty,imageurl"`
}

func (r CreatePostRequest) ToPost() *Post {
	p := &Post{
		Date:       r.Date,
		ReadTime:   r.ReadTime,
		Categories: r.Categories,
		ImageURL:   r.ImageURL,
	}
	if r.Title != nil {
		p.Title = *r.Title
	}
	if r.Excerpt != nil {
		p.Excerpt = *r.Excerpt
	}
	if r.Content != nil {
		p.Content = *r.Content
	}
	p.normalize()
	return p
}

// UpdatePostRequest is the body of PUT /api/posts/{id}. Only the given fields are replaced.
type UpdatePostRequest struct {
	ID      json.RawMessage `json:"id,omitempty"`
	MongoID json.RawMessage `json:"_id,omitempty"`

	Title      *content.BilingualText `json:"title" validate:"omitnil"`
	Excerpt    *content.BilingualText `json:"excerpt" validate:"omitnil"`
	Content    *content.BilingualText `json:"content" validate:"omitnil"`
	Date       *string                `json:"date" validate:"omitnil,datetime=2006-01-02"`
	ReadTime   *int                   `json:"readTime" validate:"omitnil,min=1"`
	Categories []string               `json:"categories" validate:"omitnil,min=1,unique,dive,category"`
	ImageURL   *string                `json:"imageUrl" validate:"omitnil,imageurl"`
}

// SetFields returns the $set document for the provided fields, in a stable order.
func (r UpdatePostRequest) SetFields() bson.D {
	set := bson.D{}
	if r.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *r.Title})
	}
	if r.Excerpt != nil {
		set = append(set, bson.E{Key: "excerpt", Value: *r.Excerpt})
	}
	if r.Content != nil {
		set = append(set, bson.E{Key: "content", Value: *r.Content})
	}
	if r.Date != nil {
		set = append(set, bson.E{Key: "date", Value: *r.Date})
	}
	if r.ReadTime != nil {
		set = append(set, bson.E{Key: "readTime", Value: *r.ReadTime})
	}
	if r.Categories != nil {
		set = append(set, bson.E{Key: "categories", Value: r.Categories})
	}
	if r.ImageURL != nil {
		set = append(set, bson.E{Key: "imageUrl", Value: *r.ImageURL})
	}
	return set
}
