package models

import "time"

type Comment struct {
	ID         string    `json:"id"`
	WorkflowID string    `json:"workflowId"`
	Author     string    `json:"author"     validate:"required"`
	Body       string    `json:"body"       validate:"required,max=2000"`
	CreatedAt  time.Time `json:"createdAt"`
}

type TeamRole string

const (
	TeamRoleOwner  TeamRole = "owner"
	TeamRoleEditor TeamRole = "editor"
	TeamRoleViewer TeamRole = "viewer"
)

type TeamMember struct {
	ID         string   `json:"id"`
	WorkflowID string   `json:"workflowId"`
	Name       string   `json:"name"       validate:"required"`
	Email      string   `json:"email"      validate:"required,email"`
	Role       TeamRole `json:"role"       validate:"required,oneof=owner editor viewer"`
}

// Activity is one entry of a workflow's activity feed.
type Activity struct {
	ID         string    `json:"id"`
	WorkflowID string    `json:"workflowId"`
	Kind       string    `json:"kind"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}
