package entity

// UserLoginData is the identity carried in an access token. Accounts are
// provisioned out of band; this service only validates tokens.
type UserLoginData struct {
	ID       string
	Username string
	Email    string
}
