package handler

import (
	"time"

	"mentorlab/internal/monitor"
)

// MonitoredUserResponse is the HTTP form of one monitoring record.
type MonitoredUserResponse struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	Reason         string `json:"reason"`
	OperationCount int    `json:"operation_count"`
	TimePeriod     string `json:"time_period"`
	IsActive       bool   `json:"is_active"`

	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	FullName string `json:"full_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy      string     `json:"resolved_by,omitempty"`
	ResolvedByEmail string     `json:"resolved_by_email,omitempty"`
	ResolutionNotes string     `json:"resolution_notes,omitempty"`
}

// MonitoredUserListResponse wraps a list of records.
type MonitoredUserListResponse struct {
	MonitoredUsers []MonitoredUserResponse `json:"monitored_users"`
	Count          int                     `json:"count"`
}

// RunResponse acknowledges a manual aggregation trigger.
type RunResponse struct {
	Status string `json:"status"`
}

// FromRecord converts an enriched record to the HTTP response form.
func FromRecord(record monitor.EnrichedMonitoredUser) MonitoredUserResponse {
	resp := MonitoredUserResponse{
		ID:              record.ID.String(),
		UserID:          record.UserID.String(),
		Reason:          record.Reason,
		OperationCount:  record.OperationCount,
		TimePeriod:      record.TimePeriod.String(),
		IsActive:        record.IsActive,
		Email:           record.Email,
		Role:            record.Role.String(),
		FullName:        record.FullName,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
		ResolvedAt:      record.ResolvedAt,
		ResolvedByEmail: record.ResolvedByEmail,
		ResolutionNotes: record.ResolutionNotes,
	}
	if !record.ResolvedBy.IsNil() {
		resp.ResolvedBy = record.ResolvedBy.String()
	}
	return resp
}

// FromRecords converts a list of enriched records.
func FromRecords(records []monitor.EnrichedMonitoredUser) MonitoredUserListResponse {
	out := make([]MonitoredUserResponse, 0, len(records))
	for _, record := range records {
		out = append(out, FromRecord(record))
	}
	return MonitoredUserListResponse{MonitoredUsers: out, Count: len(out)}
}
