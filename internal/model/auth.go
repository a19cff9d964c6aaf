package model

type LoginRequest struct {
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Identifier returns the username, falling back to the phone number.
func (r LoginRequest) Identifier() string {
	if r.Username != "" {
		return r.Username
	}
	return r.Phone
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Profile is the authenticated user with its role specific profile.
type Profile struct {
	User     *User     `json:"user"`
	Recorder *Recorder `json:"recorder,omitempty"`
	Doctor   *Doctor   `json:"doctor,omitempty"`
}

type CreateUserRequest struct {
	Username   string  `json:"username" binding:"required"`
	Phone      string  `json:"phone" binding:"required"`
	Email      *string `json:"email"`
	Name       string  `json:"name" binding:"required"`
	Role       Role    `json:"role" binding:"required,oneof=recorder admin doctor"`
	Password   string  `json:"password" binding:"required,min=6"`
	EmployeeID string  `json:"employee_id"`
}
