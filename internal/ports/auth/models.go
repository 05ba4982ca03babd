package auth

// Claims representa la identidad ya resuelta del que llama.
type Claims struct {
	UserID string
	Email  string
}
