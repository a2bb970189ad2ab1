package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/uhicoop/loan-service/internal/domain/port"
	"github.com/uhicoop/loan-service/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Staff directory adapter
// ---------------------------------------------------------------------------

// StaffDirectoryConfig holds configuration for the staff directory adapter.
type StaffDirectoryConfig struct {
	// BaseURL is the base URL of the cooperative's member directory API.
	BaseURL string
	// APIKey is the authentication credential for the directory API.
	APIKey string
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration
}

// HTTPStaffDirectory implements port.StaffDirectory against the
// cooperative's member directory API.
type HTTPStaffDirectory struct {
	config StaffDirectoryConfig
	client *http.Client
}

// NewHTTPStaffDirectory creates a directory client. A nil httpClient gets a
// default client with the configured timeout.
func NewHTTPStaffDirectory(config StaffDirectoryConfig, httpClient *http.Client) *HTTPStaffDirectory {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	return &HTTPStaffDirectory{config: config, client: httpClient}
}

type staffPayload struct {
	StaffID   string `json:"staff_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Get resolves a staff member by id. A 404 from the directory maps to the
// service's not-found error class.
func (d *HTTPStaffDirectory) Get(ctx context.Context, staffID string) (port.StaffMember, error) {
	if staffID == "" {
		return port.StaffMember{}, valueobject.NewValidationError("staff_id", "is required")
	}

	endpoint := fmt.Sprintf("%s/api/staff/%s", d.config.BaseURL, url.PathEscape(staffID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return port.StaffMember{}, fmt.Errorf("build directory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if d.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+d.config.APIKey)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return port.StaffMember{}, fmt.Errorf("directory request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return port.StaffMember{}, valueobject.NewNotFoundError("staff member", staffID)
	case resp.StatusCode != http.StatusOK:
		return port.StaffMember{}, fmt.Errorf("directory request: unexpected status %d", resp.StatusCode)
	}

	var payload staffPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return port.StaffMember{}, fmt.Errorf("decode directory response: %w", err)
	}

	return port.StaffMember{
		StaffID:   payload.StaffID,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
	}, nil
}

// StubStaffDirectory is a development/test adapter that serves a fixed set
// of members. It implements port.StaffDirectory.
type StubStaffDirectory struct {
	members map[string]port.StaffMember
}

// NewStubStaffDirectory creates a stub seeded with the given members.
func NewStubStaffDirectory(members ...port.StaffMember) *StubStaffDirectory {
	m := make(map[string]port.StaffMember, len(members))
	for _, member := range members {
		m[member.StaffID] = member
	}
	return &StubStaffDirectory{members: m}
}

// Get resolves a member from the seeded set.
func (d *StubStaffDirectory) Get(_ context.Context, staffID string) (port.StaffMember, error) {
	member, ok := d.members[staffID]
	if !ok {
		return port.StaffMember{}, valueobject.NewNotFoundError("staff member", staffID)
	}
	return member, nil
}
