package model

// Scope is the partition a task or routine lives in: always a user,
// optionally narrowed to one of the user's projects.
type Scope struct {
	UserID    string
	ProjectID *ProjectID
}

func PersonalScope(userID string) Scope {
	return Scope{UserID: userID}
}

func ProjectScope(userID string, projectID ProjectID) Scope {
	return Scope{UserID: userID, ProjectID: &projectID}
}

// Key is a stable identity for the scope, usable as a map key.
func (s Scope) Key() string {
	if s.ProjectID == nil {
		return s.UserID
	}
	return s.UserID + "/" + string(*s.ProjectID)
}
