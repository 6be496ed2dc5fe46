package request

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Mobile   string `json:"mobile" validate:"required,mobile"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest accepts either the email address or the mobile number
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`

	// filled by the handler
	UserAgent string `json:"-"`
	IPAddress string `json:"-"`
}

type UpdateProfileRequest struct {
	Name   string `json:"name" validate:"required,min=2,max=100"`
	Mobile string `json:"mobile" validate:"required,mobile"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

type UpdateMemberRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=100"`
	Mobile   string  `json:"mobile" validate:"required,mobile"`
	IsActive *bool   `json:"is_active,omitempty"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=member admin"`
}
