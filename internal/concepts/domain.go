package concepts

import "time"

// SuggestedType hints whether movements under a concept are usually
// asset-like or liability-like. It is advisory only.
type SuggestedType string

const (
	SuggestedNone      SuggestedType = ""
	SuggestedAsset     SuggestedType = "ASSET"
	SuggestedLiability SuggestedType = "LIABILITY"
)

// Concept is a reusable label for movements, looked up or created by name
// at movement-creation time.
type Concept struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	SuggestedType SuggestedType `json:"suggested_type,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
