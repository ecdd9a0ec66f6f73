package auth

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	Company  string `json:"company"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TwoFactorVerifyRequest struct {
	PendingToken string `json:"pending_token" binding:"required"`
	Code         string `json:"code" binding:"required"`
}

type TwoFactorEnableRequest struct {
	Code string `json:"code" binding:"required"`
}

type TwoFactorDisableRequest struct {
	Password string `json:"password" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Company  string `json:"company"`
	Language string `json:"language"`
	Timezone string `json:"timezone"`
}

// LoginResult is what the login endpoint returns. When the account has
// 2FA enabled, AccessToken is empty and PendingToken must be exchanged
// via the 2FA verification endpoint.
type LoginResult struct {
	User              *User  `json:"user"`
	AccessToken       string `json:"token,omitempty"`
	RequiresTwoFactor bool   `json:"requires_two_factor"`
	PendingToken      string `json:"pending_token,omitempty"`
}

// TwoFactorSetup carries the provisioning data for an authenticator app.
type TwoFactorSetup struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
}
