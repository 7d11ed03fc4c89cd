// Package api defines the request and response messages of the lifeareas.v1
// services. Messages are plain structs encoded as JSON on the wire.
package api

// LifeArea is the wire form of a life area as seen by one user.
type LifeArea struct {
	Id          int64  `json:"id"`
	Designation string `json:"designation"`
	IconPath    string `json:"icon_path"`
	IsDefault   bool   `json:"is_default"`
	OwnerId     string `json:"owner_id,omitempty"`
	// Position is the area's zero-based index in the user's order.
	Position  int   `json:"position"`
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// User is the public view of an account.
type User struct {
	Id          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

type ListLifeAreasRequest struct {
	UserId string `json:"user_id,omitempty"`
}

type ListLifeAreasResponse struct {
	LifeAreas []*LifeArea `json:"life_areas"`
}

type GetLifeAreaRequest struct {
	Id     int64  `json:"id" validate:"required,gt=0"`
	UserId string `json:"user_id,omitempty"`
}

type GetLifeAreaResponse struct {
	LifeArea *LifeArea `json:"life_area"`
}

// SaveLifeAreaRequest creates a private life area, or updates the caller's
// own area when Id is set.
type SaveLifeAreaRequest struct {
	Id          int64  `json:"id,omitempty" validate:"omitempty,gt=0"`
	Designation string `json:"designation" validate:"required,max=55"`
	IconPath    string `json:"icon_path" validate:"required"`
	UserId      string `json:"user_id,omitempty"`
}

type SaveLifeAreaResponse struct {
	LifeArea *LifeArea `json:"life_area"`
}

type UpdateLifeAreaRequest struct {
	Id          int64  `json:"id" validate:"required,gt=0"`
	Designation string `json:"designation" validate:"required,max=255"`
	IconPath    string `json:"icon_path" validate:"required"`
	UserId      string `json:"user_id,omitempty"`
}

type UpdateLifeAreaResponse struct {
	LifeArea *LifeArea `json:"life_area"`
}

type DeleteLifeAreaRequest struct {
	Id     int64  `json:"id" validate:"required,gt=0"`
	UserId string `json:"user_id,omitempty"`
}

type DeleteLifeAreaResponse struct{}

// ReorderLifeAreaRequest moves a life area to ToIndex. ToIndex is a pointer
// so that an omitted index can be told apart from zero.
type ReorderLifeAreaRequest struct {
	Id      int64  `json:"id" validate:"required,gt=0"`
	ToIndex *int   `json:"to_index" validate:"required,gte=0"`
	UserId  string `json:"user_id,omitempty"`
}

type ReorderLifeAreaResponse struct {
	Changed   bool        `json:"changed"`
	Position  int         `json:"position"`
	LifeAreas []*LifeArea `json:"life_areas"`
}

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"required"`
	Password    string `json:"password" validate:"required"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}
