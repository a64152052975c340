package entity

// UserLoginData is the identity extracted from a verified access token.
type UserLoginData struct {
	ID       string
	Username string
	Email    string
}
