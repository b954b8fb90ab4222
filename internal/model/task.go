package model

import "time"

// Task is a marketplace task
type Task struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category,omitempty"`
	Type         string    `json:"type,omitempty"`
	Status       string    `json:"status,omitempty"`
	XPReward     int64     `json:"xp_reward,omitempty"`
	SOLReward    float64   `json:"sol_reward,omitempty"`
	WinnerCount  int       `json:"winner_count,omitempty"`
	Duration     string    `json:"duration,omitempty"`
	LocationName string    `json:"location_name,omitempty"`
	Latitude     float64   `json:"latitude,omitempty"`
	Longitude    float64   `json:"longitude,omitempty"`
	CreatedBy    string    `json:"created_by,omitempty"`
	CreatedByAI  bool      `json:"created_by_ai,omitempty"`
	VaultPDA     string    `json:"vault_pda,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// TaskFilter represents query parameters for GET /tasks
type TaskFilter struct {
	Category  string
	Status    string
	CreatedBy string
}

// SubmitTaskProof represents the body of POST /tasks/{id}/submit
type SubmitTaskProof struct {
	PhotoURL    string `json:"photo_url,omitempty"`
	VideoURL    string `json:"video_url,omitempty"`
	Description string `json:"description,omitempty"`
}
