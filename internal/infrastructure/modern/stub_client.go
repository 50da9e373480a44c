// Package modern implements profile.ModernBackend: an in-process stub and an
// HTTP client for a real modern customer service.
package modern

import (
	"context"

	"github.com/profilegateway/backend/internal/domain/profile"
	"github.com/profilegateway/backend/internal/domain/shared"
)

// Placeholder values returned by StubClient.Get.
const (
	StubFirstName     = "Motaz"
	StubLastName      = "Ahmed"
	StubEmailAddress  = "new@new.com"
	StubContactNumber = "00000000000"
)

// StubClient stands in for the modern system. Get returns fixed data for any
// id; Create and Update echo their input.
type StubClient struct{}

// NewStubClient creates a new StubClient
func NewStubClient() *StubClient {
	return &StubClient{}
}

var _ profile.ModernBackend = (*StubClient)(nil)

// Get returns the placeholder profile carrying id.
func (c *StubClient) Get(ctx context.Context, id int64) (*profile.ModernProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, contextError(err)
	}
	return &profile.ModernProfile{
		ID:            profile.Int64(id),
		FirstName:     profile.String(StubFirstName),
		LastName:      profile.String(StubLastName),
		EmailAddress:  profile.String(StubEmailAddress),
		ContactNumber: profile.String(StubContactNumber),
	}, nil
}

// Create returns p unchanged.
func (c *StubClient) Create(ctx context.Context, p *profile.ModernProfile) (*profile.ModernProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, contextError(err)
	}
	if p == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "Modern profile must not be null")
	}
	return p, nil
}

// Update returns p unchanged; id is not applied to it.
func (c *StubClient) Update(ctx context.Context, id int64, p *profile.ModernProfile) (*profile.ModernProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, contextError(err)
	}
	if p == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "Modern profile must not be null")
	}
	return p, nil
}
