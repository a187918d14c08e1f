package domain

// LoginRequest is the payload for /admin/login.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse carries the admin bearer token.
type LoginResponse struct {
	Token string `json:"token"`
}
