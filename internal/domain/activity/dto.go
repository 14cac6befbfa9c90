package activity

type EntryResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	UserName    *string `json:"user_name,omitempty"`
	Action      string  `json:"action"`
	EntityType  string  `json:"entity_type"`
	EntityID    string  `json:"entity_id"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"created_at"`
}
