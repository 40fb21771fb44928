package sociallinks

import (
	"encoding/json"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

const missingFieldsMessage = "Missing required fields: platform, username, and url are required"

type CreateSocialLinkRequest struct {
	ID      json.RawMessage `json:"id,omitempty"`
	MongoID json.RawMessage `json:"_id,omitempty"`

	Platform string `json:"platform" validate:"required,oneof=Facebook Instagram Github Twitter LinkedIn Youtube Other"`
	Username string `json:"username" validate:"required,notblank"`
	URL      string `json:"url" validate:"required,linkurl"`
}

func (r CreateSocialLinkRequest) MissingRequired() bool {
	return strings.TrimSpace(r.Platform) == "" ||
		strings.TrimSpace(r.Username) == "" ||
		strings.TrimSpace(r.URL) == ""
}

func (r CreateSocialLinkRequest) ToSocialLink() *SocialLink {
	return &SocialLink{
		Platform: r.Platform,
		Username: strings.TrimSpace(r.Username),
		URL:      strings.TrimSpace(r.URL),
	}
}

type UpdateSocialLinkRequest struct {
	ID      json.RawMessage `json:"id,omitempty"`
	MongoID json.RawMessage `json:"_id,omitempty"`

	Platform *string `json:"platform" validate:"omitnil,oneof=Facebook Instagram Github Twitter LinkedIn Youtube Other"`
	Username *string `json:"username" validate:"omitnil,notblank"`
	URL      *string `json:"url" validate:"omitnil,linkurl"`
}

func (r UpdateSocialLinkRequest) SetFields() bson.D {
	set := bson.D{}
	if r.Platform != nil {
		set = append(set, bson.E{Key: "platform", Value: *r.Platform})
	}
	if r.Username != nil {
		set = append(set, bson.E{Key: "username", Value: strings.TrimSpace(*r.Username)})
	}
	if r.URL != nil {
		set = append(set, bson.E{Key: "url", Value: strings.TrimSpace(*r.URL)})
	}
	return set
}
