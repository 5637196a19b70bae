package models

// Session is the persisted authentication record. A record missing either the
// access token or the user identity is treated as corrupt and discarded.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         User   `json:"user"`
}

// Valid reports whether the record satisfies the both-or-neither invariant.
func (s Session) Valid() bool {
	return s.AccessToken != "" && !s.User.IsZero()
}
