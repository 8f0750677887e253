package dto

// PageDTO describes a navigable page for the front end.
type PageDTO struct {
	Page          string       `json:"page"`
	Title         string       `json:"title"`
	Authenticated bool         `json:"authenticated"`
	Theme         string       `json:"theme"`
	User          *AccountDTO  `json:"user,omitempty"`
	Today         string       `json:"today,omitempty"`
	Progress      *ProgressDTO `json:"progress,omitempty"`
	Tasks         []TaskDTO    `json:"tasks,omitempty"`
}
