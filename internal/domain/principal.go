package domain

// Principal is the typed session identity issued at login and threaded
// explicitly through each operation (instead of an ambient session bag).
type Principal struct {
	AccountID uint   `json:"accountId"`
	Username  string `json:"username"`
	Role      Role   `json:"role"`
}
