package dto

import "webanalytics/model"

type UpdatePhaseRequest struct {
	Phase  string `json:"phase" binding:"required"`
	Status string `json:"status"`
}

type UpdateDeadlineRequest struct {
	// Empty string clears the deadline.
	Deadline string `json:"deadline"`
}

type ProjectSummary struct {
	ProjectID   string          `json:"id"`
	Name        string          `json:"name"`
	Client      string          `json:"client,omitempty"`
	Description string          `json:"description,omitempty"`
	Schedule    *model.Schedule `json:"schedule,omitempty"`
}
