package domain

// User is a person principal, identified by login name.
type User struct {
	ID          string `json:"id"`
	LoginName   string `json:"loginName"`
	DisplayName string `json:"displayName,omitempty"`
}

// Group is a named collection of users. Groups from different origins may
// share a name, so GroupOriginType is part of a group's identity.
type Group struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	GroupOriginType string `json:"groupOriginType"`
}
