package model

import "time"

// Proof is a proof-of-completion post in the social feed
type Proof struct {
	ID           int64     `json:"id"`
	TaskID       string    `json:"task_id,omitempty"`
	TaskTitle    string    `json:"task_title,omitempty"`
	TaskCategory string    `json:"task_category,omitempty"`
	UserID       string    `json:"user_id,omitempty"`
	Username     string    `json:"username,omitempty"`
	ProfilePhoto string    `json:"profile_photo,omitempty"`
	PhotoURL     string    `json:"photo_url,omitempty"`
	VideoURL     string    `json:"video_url,omitempty"`
	Description  string    `json:"description,omitempty"`
	Status       string    `json:"status,omitempty"`
	XPEarned     int64     `json:"xp_earned,omitempty"`
	VoteCount    int64     `json:"vote_count,omitempty"`
	SharesCount  int64     `json:"shares_count,omitempty"`
	RepostsCount int64     `json:"reposts_count,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// NewProof represents the body of POST /proofs
type NewProof struct {
	TaskID      string `json:"task_id"`
	PhotoURL    string `json:"photo_url,omitempty"`
	VideoURL    string `json:"video_url,omitempty"`
	Description string `json:"description,omitempty"`
}
