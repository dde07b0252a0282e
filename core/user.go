package core

type (
	// User is the identity a board belongs to, as carried in a bearer token.
	User struct {
		Subject string `json:"subject"`
		Login   string `json:"login"`
		Email   string `json:"email,omitempty"`
		Name    string `json:"name"`
	}
)
