package transfer

type PostCreation struct {
	AccountID string   `json:"account_id"`
	Caption   string   `json:"caption"`
	Media     []string `json:"media"`
	Format    string   `json:"format"`
}

// PostUpdate carries a partial edit; nil fields are left untouched.
type PostUpdate struct {
	Caption *string  `json:"caption"`
	Media   []string `json:"media"`
	Format  *string  `json:"format"`
	Status  *string  `json:"status"`
}

type ScheduleRequest struct {
	AccountID   string   `json:"account_id"`
	PostIDs     []string `json:"post_ids"`
	PostsPerDay int      `json:"posts_per_day"`
	StartTime   string   `json:"start_time"`
}
