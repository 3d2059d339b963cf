package domain

// Session is the locally persisted bundle for one client profile.
type Session struct {
	ID    string
	Token string
	User  *User
	Cart  Cart
}

func (s Session) Status() AuthStatus {
	if s.Token == "" {
		return Anonymous
	}
	return StatusFor(s.User)
}
