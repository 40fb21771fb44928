package sociallinks

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrSocialLinkNotFound = errors.New("social link not found")
	ErrInvalidID          = errors.New("invalid social link id")
)

// Platforms lists the accepted values of SocialLink.Platform.
var Platforms = []string{"Facebook", "Instagram", "Github", "Twitter", "LinkedIn", "Youtube", "Other"}

// SocialLink is one external profile shown in the site footer.
type SocialLink struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Platform string             `json:"platform" bson:"platform"`
	Username string             `json:"username" bson:"username"`
	URL      string             `json:"url" bson:"url"`
}

func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}
