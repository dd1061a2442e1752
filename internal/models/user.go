package models

// Profile is the public part of a user record stored under users/{uid}.
type Profile struct {
	ID             string `json:"id,omitempty"`
	FullName       string `json:"fullName"`
	ProfilePicture string `json:"profilePicture"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

// Account is a locally managed credential, kept under auth/accounts.
type Account struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	CreatedAt    string `json:"createdAt"`
}

type RefreshToken struct {
	UserID      string `json:"userId"`
	HashedToken string `json:"hashedToken"`
	CreatedAt   string `json:"createdAt"`
	ExpiresAt   string `json:"expiresAt"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Identity is what a verified bearer token resolves to.
type Identity struct {
	UID   string
	Email string
}
