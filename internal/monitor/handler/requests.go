package handler

import (
	"strings"

	"mentorlab/internal/monitor"
	dErrors "mentorlab/pkg/domain-errors"
)

// maxNotesLength bounds free-text fields stored verbatim.
const maxNotesLength = 2000

// ResolveRequest is the HTTP body for POST /admin/monitored-users/{id}/resolve.
type ResolveRequest struct {
	Notes string `json:"notes"`
}

// Validate implements httputil.Validatable.
func (r *ResolveRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Notes = strings.TrimSpace(r.Notes)
	if len(r.Notes) > maxNotesLength {
		return dErrors.New(dErrors.CodeInvalidInput, "notes must be at most 2000 characters")
	}
	return nil
}

// UpdateRequest is the HTTP body for PATCH /admin/monitored-users/{id}.
// Absent fields are left unchanged.
type UpdateRequest struct {
	Reason          *string `json:"reason,omitempty"`
	ResolutionNotes *string `json:"resolution_notes,omitempty"`
}

// Validate implements httputil.Validatable.
func (r *UpdateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Reason == nil && r.ResolutionNotes == nil {
		return dErrors.New(dErrors.CodeBadRequest, "at least one field must be provided")
	}
	if r.Reason != nil {
		trimmed := strings.TrimSpace(*r.Reason)
		if trimmed == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "reason must not be empty")
		}
		r.Reason = &trimmed
	}
	if r.ResolutionNotes != nil && len(*r.ResolutionNotes) > maxNotesLength {
		return dErrors.New(dErrors.CodeInvalidInput, "resolution_notes must be at most 2000 characters")
	}
	return nil
}

// Patch converts the request to the service patch form.
func (r *UpdateRequest) Patch() monitor.UpdatePatch {
	return monitor.UpdatePatch{
		Reason:          r.Reason,
		ResolutionNotes: r.ResolutionNotes,
	}
}
