package common

import (
	"github.com/google/uuid"
)

// NewJobID generates a unique job ID with the "job_" prefix.
// The job ID is the sole correlation key between a trigger request, its
// eventual results, and the notifications sent for them.
// Format: job_<uuid>
func NewJobID() string {
	return "job_" + uuid.New().String()
}
