package domain

// MarketplaceRole is the part a user plays in the marketplace.
type MarketplaceRole string

const (
	MarketplaceRoleViewer    MarketplaceRole = "viewer"
	MarketplaceRoleArtist    MarketplaceRole = "artist"
	MarketplaceRoleCollector MarketplaceRole = "collector"
)

// AllMarketplaceRoles contains all valid roles in order
var AllMarketplaceRoles = []MarketplaceRole{MarketplaceRoleViewer, MarketplaceRoleArtist, MarketplaceRoleCollector}

// IsValid checks if a role is valid
func (r MarketplaceRole) IsValid() bool {
	switch r {
	case MarketplaceRoleViewer, MarketplaceRoleArtist, MarketplaceRoleCollector:
		return true
	}
	return false
}

// String returns the string representation of the role
func (r MarketplaceRole) String() string {
	return string(r)
}

// DisplayName returns a user-friendly display name for the role
func (r MarketplaceRole) DisplayName() string {
	switch r {
	case MarketplaceRoleViewer:
		return "Viewer"
	case MarketplaceRoleArtist:
		return "Artist"
	case MarketplaceRoleCollector:
		return "Collector"
	default:
		return string(r)
	}
}
