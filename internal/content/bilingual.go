package content

import "strings"

// Language selects one half of a BilingualText.
type Language string

const (
	English    Language = "en"
	Vietnamese Language = "vi"
)

// Categories is the fixed post category vocabulary.
var Categories = []string{"Sách", "Phim", "Học tập", "AI", "Nhật kí", "Tài chính"}

func IsCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

// ParseLanguage is lenient: anything that is not recognisably Vietnamese is English.
func ParseLanguage(s string) Language {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vi", "vn", "vi-vn", "vietnamese", "tiếng việt":
		return Vietnamese
	default:
		return English
	}
}

func (l Language) String() string {
	return string(l)
}

// BilingualText holds the same field in English and Vietnamese.
type BilingualText struct {
	En string `json:"en" bson:"en"`
	Vi string `json:"vi" bson:"vi"`
}

// In returns the text for lang.
func (t BilingualText) In(lang Language) string {
	if lang == Vietnamese {
		return t.Vi
	}
	return t.En
}

// Contains reports whether either language contains the lowercased needle.
func (t BilingualText) Contains(needleLower string) bool {
	return strings.Contains(strings.ToLower(t.En), needleLower) ||
		strings.Contains(strings.ToLower(t.Vi), needleLower)
}

func (t BilingualText) IsEmpty() bool {
	return t.En == "" && t.Vi == ""
}
