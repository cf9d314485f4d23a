// Package model contains domain types for the resources fetched from the
// prompt-manager backend. JSON tags follow the backend wire contract.
package model

// Model describes a configured AI model offering as reported by the
// backend config endpoint.
type Model struct {
	ID                 int    `json:"id"`
	ModelName          string `json:"model_name"`
	ProviderID         int    `json:"provider_id"`
	ProviderName       string `json:"provider_name"`
	Description        string `json:"description"`
	TemperatureAllowed bool   `json:"temperature_allowed"`
	HasMaxTokenLimit   int    `json:"has_max_token_limit"`
	TopPAllowed        bool   `json:"top_p_allowed"`
	TopKAllowed        bool   `json:"top_k_allowed"`
	RolesAllowed       []int  `json:"roles_allowed"`
	ImageInputAllowed  bool   `json:"image_input_allowed"`
	AudioInputAllowed  bool   `json:"audio_input_allowed"`
}

// Project is a collection of configured model bindings owned by a user.
// Role is the caller's numeric role within the project.
type Project struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Role        int     `json:"role"`
	Models      []Model `json:"models"`
}

// CreateProjectInput carries the fields for a project creation request.
// APIKeys maps provider IDs (stringified) to user-supplied keys and is
// omitted when empty.
type CreateProjectInput struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	ModelIDs    []int             `json:"llm_models"`
	APIKeys     map[string]string `json:"api_keys,omitempty"`
}
