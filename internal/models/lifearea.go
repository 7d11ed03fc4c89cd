package models

// LifeArea represents a category a user organizes their goals under
// (e.g. "Health", "Career").
//
// Default life areas are created by an administrative process and are
// visible to every user. All other life areas are private to OwnerID.
type LifeArea struct {
	// ID is the unique identifier for the life area, assigned by the store
	// in creation order. Catalog order is ascending ID.
	ID int64

	// OwnerID is the user who created the life area.
	// Empty for system-owned defaults.
	OwnerID string

	// Designation is the display name (e.g. "Health").
	Designation string

	// IconPath is the icon shown next to the designation.
	IconPath string

	// IsDefault marks a life area visible to all users.
	IsDefault bool

	// CreatedAt is the Unix timestamp when the life area was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change.
	UpdatedAt int64
}

// VisibleTo reports whether userID may see this life area.
func (a *LifeArea) VisibleTo(userID string) bool {
	return a.IsDefault || (a.OwnerID != "" && a.OwnerID == userID)
}

// OwnedBy reports whether userID owns this (non-default) life area.
func (a *LifeArea) OwnedBy(userID string) bool {
	return !a.IsDefault && a.OwnerID != "" && a.OwnerID == userID
}

// OrderEntry pins one life area to one position for one user.
// (UserID, LifeAreaID) is unique, and so is (UserID, Position).
type OrderEntry struct {
	UserID     string
	LifeAreaID int64
	Position   int
	CreatedAt  int64
	UpdatedAt  int64
}

// OrderedLifeArea is a life area together with the requesting user's position.
type OrderedLifeArea struct {
	LifeArea
	Position int
}
