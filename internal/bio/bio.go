package bio

import (
	"time"

	"github.com/huyblog/blogservice/internal/content"
)

// DocumentID is the _id of the singleton bio document.
const DocumentID = "main"

// Translations maps a logical key, e.g. "bio", to its bilingual text.
type Translations map[string]content.BilingualText

type Document struct {
	ID           string       `bson:"_id"`
	Translations Translations `bson:"translations"`
	UpdatedAt    time.Time    `bson:"updatedAt"`
}

type Response struct {
	Translations Translations `json:"translations"`
}
