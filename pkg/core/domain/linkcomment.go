package domain

// LinkComment is a URL annotated with a free-text comment, owned by a single
// authenticated subject.
type LinkComment struct {
	ID        string   `json:"id"`
	Link      string   `json:"link"`
	Comment   string   `json:"comment"`
	Owner     string   `json:"-"` // stored as username, never returned to clients
	CreatedAt float64  `json:"created_at"`
	UpdatedAt *float64 `json:"updated_at"` // always nil, records are never updated
}
