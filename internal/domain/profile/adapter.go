package profile

import (
	"strings"

	"github.com/profilegateway/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Adapter translates profiles between the legacy and modern shapes.
// It holds no state beyond its logger and is safe for concurrent use.
type Adapter struct {
	logger *zap.Logger
}

// AdapterOption configures an Adapter
type AdapterOption func(*Adapter)

// WithAdapterLogger sets the logger used for diagnostic output.
func WithAdapterLogger(logger *zap.Logger) AdapterOption {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAdapter creates a new Adapter
func NewAdapter(opts ...AdapterOption) *Adapter {
	a := &Adapter{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ToLegacy converts a modern profile into the legacy shape.
// A missing first or last name is treated as "".
func (a *Adapter) ToLegacy(modern *ModernProfile) (*LegacyProfile, error) {
	if modern == nil {
		a.logger.Warn("Transformation failed: modern profile is nil")
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "Modern profile must not be null")
	}

	a.logger.Debug("Transforming modern profile to legacy", zap.Int64p("id", modern.ID))

	fullName := StringValue(modern.FirstName) + " " + StringValue(modern.LastName)
	return &LegacyProfile{
		CustomerID:  modern.ID,
		FullName:    &fullName,
		Email:       modern.EmailAddress,
		PhoneNumber: modern.ContactNumber,
	}, nil
}

// ToModern converts a legacy profile into the modern shape.
// fullName is split at its first space; each part is trimmed and a missing
// second part becomes "".
func (a *Adapter) ToModern(legacy *LegacyProfile) (*ModernProfile, error) {
	if legacy == nil {
		a.logger.Warn("Transformation failed: legacy profile is nil")
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "Legacy profile must not be null")
	}
	if legacy.FullName == nil {
		a.logger.Warn("Transformation failed: fullName is missing", zap.Int64p("customer_id", legacy.CustomerID))
		return nil, shared.NewDomainError(shared.CodeMalformedInput, "fullName is required")
	}

	a.logger.Debug("Transforming legacy profile to modern", zap.Int64p("customer_id", legacy.CustomerID))

	first, last := SplitFullName(*legacy.FullName)
	return &ModernProfile{
		ID:            legacy.CustomerID,
		FirstName:     &first,
		LastName:      &last,
		EmailAddress:  legacy.Email,
		ContactNumber: legacy.PhoneNumber,
	}, nil
}

// SplitFullName splits a display name into first and last name at the
// first space character.
func SplitFullName(fullName string) (first, last string) {
	parts := strings.SplitN(fullName, " ", 2)
	first = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		last = strings.TrimSpace(parts[1])
	}
	return first, last
}
