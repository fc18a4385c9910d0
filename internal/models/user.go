package models

// User is the profile returned by the accounts service for the authenticated user.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      Role   `json:"role"`
}

// DisplayName prefers the first name and falls back to the username.
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

// Session is the authenticated identity together with the credentials issued by the token service.
type Session struct {
	Token        string
	RefreshToken string
	User         User
}

// TokenPair is the response of the token service.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}
