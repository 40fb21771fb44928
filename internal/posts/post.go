package posts

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/huyblog/blogservice/internal/content"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrInvalidID    = errors.New("invalid post id")
)

// Post is a bilingual blog post. bson names match the json names, so
// documents written by earlier versions of the site decode unchanged.
type Post struct {
	ID         primitive.ObjectID    `json:"id" bson:"_id,omitempty"`
	Title      content.BilingualText `json:"title" bson:"title"`
	Excerpt    content.BilingualText `json:"excerpt" bson:"excerpt"`
	Content    content.BilingualText `json:"content" bson:"content"`
	Date       string                `json:"date" bson:"date"`
	ReadTime   int                   `json:"readTime" bson:"readTime"`
	Categories []string              `json:"categories" bson:"categories"`
	ImageURL   string                `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
}

// ParseID converts the public hex id into an ObjectID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

func (p *Post) normalize() {
	if p.Categories == nil {
		p.Categories = []string{}
	}
}
