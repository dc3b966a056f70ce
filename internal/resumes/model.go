package resumes

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("resume not found")
	ErrInvalidInput = errors.New("invalid resume input")
)

// Keys managed by the store. Callers cannot set them through a payload.
const (
	keyResumeID  = "resume_id"
	keyUserID    = "user_id"
	keyCreatedAt = "created_at"
	keyUpdatedAt = "updated_at"
	keyMongoID   = "_id"
	keyJobRole   = "job_role"
)

var reservedKeys = map[string]struct{}{
	keyResumeID:  {},
	keyUserID:    {},
	keyCreatedAt: {},
	keyUpdatedAt: {},
	keyMongoID:   {},
}

// Resume is a stored resume document owned by one user.
type Resume struct {
	// StorageID is the backend's own row or document id.
	StorageID string
	ResumeID  string
	UserID    string
	JobRole   string
	Fields    map[string]any
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// MarshalJSON renders the resume as one flat object: the caller fields plus
// the store-managed keys.
func (r Resume) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+4)
	for k, v := range r.Fields {
		out[k] = v
	}
	out[keyResumeID] = r.ResumeID
	out[keyUserID] = r.UserID
	out[keyCreatedAt] = r.CreatedAt
	if r.UpdatedAt != nil {
		out[keyUpdatedAt] = *r.UpdatedAt
	} else {
		out[keyUpdatedAt] = nil
	}
	return json.Marshal(out)
}

// cleanFields drops reserved keys and rejects keys a document store would
// interpret as operators or paths.
func cleanFields(payload map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		if _, reserved := reservedKeys[k]; reserved {
			continue
		}
		if k == "" || strings.HasPrefix(k, "$") || strings.Contains(k, ".") {
			return nil, fmt.Errorf("%w: field %q is not allowed", ErrInvalidInput, k)
		}
		out[k] = v
	}
	return out, nil
}

// jobRoleOf returns the job_role field when it is a string.
func jobRoleOf(fields map[string]any) (string, bool) {
	v, ok := fields[keyJobRole]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", true
	}
	return s, true
}
