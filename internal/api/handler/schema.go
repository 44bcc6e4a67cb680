package handler

import "github.com/identity-hub/identity-service/internal/core/domain"

type registerRequest struct {
	Email       string `json:"email"        form:"email"`
	Password    string `json:"password"     form:"password"`
	FirstName   string `json:"first_name"   form:"first_name"`
	LastName    string `json:"last_name"    form:"last_name"`
	PhoneNumber string `json:"phone_number" form:"phone_number"`
}

// loginRequest accepts the account identifier as "identifier" or, for older
// clients, as "email". Either may hold an email address or a username.
type loginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Password   string `json:"password" validate:"required"`
}

func (r loginRequest) identifier() string {
	if r.Identifier != "" {
		return r.Identifier
	}
	return r.Email
}

type updateEmailRequest struct {
	Email string `json:"email" validate:"required"`
}

type updatePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" validate:"required"`
}

type updateNameRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type updateEmailResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}
