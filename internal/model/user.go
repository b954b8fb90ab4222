package model

import "encoding/json"

// Profile is the backend user record returned by GET /users/profile
type Profile struct {
	ID              int64   `json:"id"`
	Email           string  `json:"email,omitempty"`
	Username        string  `json:"username,omitempty"`
	DisplayName     string  `json:"display_name,omitempty"`
	Bio             string  `json:"bio,omitempty"`
	AvatarURL       string  `json:"avatar_url,omitempty"`
	CoverPhotoURL   string  `json:"cover_photo_url,omitempty"`
	InstagramURL    string  `json:"instagram_url,omitempty"`
	TwitterURL      string  `json:"twitter_url,omitempty"`
	LinkedinURL     string  `json:"linkedin_url,omitempty"`
	WalletAddress   string  `json:"wallet_address,omitempty"`
	XP              int64   `json:"xp"`
	Level           int64   `json:"level,omitempty"`
	ReputationScore float64 `json:"reputation_score"`
}

// ProfileUpdate represents the body of PUT /users/profile
type ProfileUpdate struct {
	Username      *string `json:"username,omitempty"`
	DisplayName   *string `json:"display_name,omitempty"`
	Bio           *string `json:"bio,omitempty"`
	AvatarURL     *string `json:"avatar_url,omitempty"`
	CoverPhotoURL *string `json:"cover_photo_url,omitempty"`
	InstagramURL  *string `json:"instagram_url,omitempty"`
	TwitterURL    *string `json:"twitter_url,omitempty"`
	LinkedinURL   *string `json:"linkedin_url,omitempty"`
}

// SolanaAddress represents response for GET /users/solana-address
type SolanaAddress struct {
	Address string `json:"solana_address"`
}

// User is the signed-in user assembled from the identity provider and the backend profile
type User struct {
	ID              string  `json:"id"`
	Email           string  `json:"email"`
	Name            string  `json:"name"`
	Picture         string  `json:"picture,omitempty"`
	WalletAddress   string  `json:"walletAddress,omitempty"`
	Username        string  `json:"username,omitempty"`
	BackendID       int64   `json:"backendId,omitempty"`
	XP              int64   `json:"xp,omitempty"`
	ReputationScore float64 `json:"reputation_score,omitempty"`
}

// Message is a generic backend acknowledgement
type Message struct {
	Success bool            `json:"success,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// XPEvent is one entry of GET /users/profile/xp-history
type XPEvent struct {
	ID        int64  `json:"id"`
	Amount    int64  `json:"amount"`
	Reason    string `json:"reason,omitempty"`
	TaskID    string `json:"task_id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}
