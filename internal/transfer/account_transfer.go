package transfer

type AccountCreation struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	PostsPerDay int    `json:"posts_per_day"`
	Format      string `json:"format"`
}
