package shared

// Session keys holding the operator identity supplied by the auth proxy.
const (
	sessionUserID   = "user_id"
	sessionUserName = "user_name"
	sessionRoleID   = "role_id"
	sessionRoleName = "role_name"
	sessionToken    = "api_token"
)

// Identity is the authenticated operator as asserted by the upstream auth proxy.
type Identity struct {
	UserID   string
	UserName string
	RoleID   string
	RoleName string
	Token    string
}

// Empty reports whether no operator is attached.
func (i Identity) Empty() bool {
	return i.UserID == ""
}

// SetIdentity stores the operator on the session.
func (s *Session) SetIdentity(id Identity) {
	if s == nil {
		return
	}
	s.SetUser(id.UserID)
	s.Set(sessionUserID, id.UserID)
	s.Set(sessionUserName, id.UserName)
	s.Set(sessionRoleID, id.RoleID)
	s.Set(sessionRoleName, id.RoleName)
	if id.Token != "" {
		s.Set(sessionToken, id.Token)
	}
}

// Identity returns the operator stored on the session.
func (s *Session) Identity() Identity {
	if s == nil {
		return Identity{}
	}
	userID := s.Get(sessionUserID)
	if userID == "" {
		userID = s.User()
	}
	return Identity{
		UserID:   userID,
		UserName: s.Get(sessionUserName),
		RoleID:   s.Get(sessionRoleID),
		RoleName: s.Get(sessionRoleName),
		Token:    s.Get(sessionToken),
	}
}
