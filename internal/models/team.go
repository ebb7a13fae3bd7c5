package models

// Team groups users; membership carries no attributes.
type Team struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}
