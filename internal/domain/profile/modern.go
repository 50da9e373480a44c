package profile

import "context"

// ModernProfile is the customer shape stored by the modern system.
type ModernProfile struct {
	ID            *int64  `json:"id"`
	FirstName     *string `json:"firstName"`
	LastName      *string `json:"lastName"`
	EmailAddress  *string `json:"emailAddress"`
	ContactNumber *string `json:"contactNumber"`
}

// ModernBackend is the port to the modern customer system.
//
// Implementations must report failures as *shared.DomainError values:
//   - NOT_FOUND when Get targets an unknown id
//   - VALIDATION_FAILED when the backend rejects a profile
//   - BACKEND_UNAVAILABLE for transport failures and server errors
//   - BACKEND_TIMEOUT when the call does not finish before its deadline
type ModernBackend interface {
	// Get fetches the profile with the given id.
	Get(ctx context.Context, id int64) (*ModernProfile, error)

	// Create submits a new profile and returns the stored entity.
	Create(ctx context.Context, p *ModernProfile) (*ModernProfile, error)

	// Update replaces the profile identified by id and returns the stored entity.
	Update(ctx context.Context, id int64, p *ModernProfile) (*ModernProfile, error)
}
