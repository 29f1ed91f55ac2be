package model

// AccessToken is the object embedded in issued JWTs.
type AccessToken struct {
	WalletAddress string `json:"wallet_address"`
	Username      string `json:"username,omitempty"`
}

type LoginRequest struct {
	WalletAddress string `json:"wallet_address"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}
