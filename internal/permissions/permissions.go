// Package permissions maps forum roles to the capabilities they grant.
package permissions

import "github.com/ahmetcoskunkizilkaya/forum-backend/internal/models"

type Capability string

const (
	VoteTopics        Capability = "VOTE_TOPICS"
	VotePosts         Capability = "VOTE_POSTS"
	CreateTopics      Capability = "CREATE_TOPICS"
	CreatePosts       Capability = "CREATE_POSTS"
	ReportUsers       Capability = "REPORT_USERS"
	BlockUsers        Capability = "BLOCK_USERS"
	ReviewReports     Capability = "REVIEW_REPORTS"
	DeleteAnyContent  Capability = "DELETE_ANY_CONTENT"
	ViewHiddenContent Capability = "VIEW_HIDDEN_CONTENT"
	ManageUsers       Capability = "MANAGE_USERS"
	ViewDashboard     Capability = "VIEW_DASHBOARD"
)

var memberCapabilities = []Capability{
	VoteTopics,
	VotePosts,
	CreateTopics,
	CreatePosts,
	ReportUsers,
}

var adminCapabilities = append(append([]Capability{}, memberCapabilities...),
	BlockUsers,
	ReviewReports,
	DeleteAnyContent,
	ViewHiddenContent,
	ManageUsers,
	ViewDashboard,
)

var roleCapabilities = map[string]map[Capability]bool{
	models.RoleUser:  toSet(memberCapabilities),
	models.RoleAdmin: toSet(adminCapabilities),
}

func toSet(caps []Capability) map[Capability]bool {
	set := make(map[Capability]bool, len(caps))
	for _, c := range caps {
		set[c] = true
	}
	return set
}

// Has reports whether role grants capability. Unknown roles grant nothing.
func Has(role string, capability Capability) bool {
	return roleCapabilities[role][capability]
}

// For returns the capabilities of role in a stable order.
func For(role string) []Capability {
	switch role {
	case models.RoleAdmin:
		return append([]Capability{}, adminCapabilities...)
	case models.RoleUser:
		return append([]Capability{}, memberCapabilities...)
	}
	return nil
}

// ValidRole reports whether role is one the forum knows about.
func ValidRole(role string) bool {
	_, ok := roleCapabilities[role]
	return ok
}
