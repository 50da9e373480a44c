// Package customer orchestrates the public customer operations: translate
// the legacy input, call the modern backend, translate the result back.
package customer

import (
	"context"
	"time"

	"github.com/profilegateway/backend/internal/domain/profile"
	"github.com/profilegateway/backend/internal/infrastructure/logger"
	"github.com/profilegateway/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Service handles customer profile operations.
// Errors from the adapter and the backend are returned unmodified.
type Service struct {
	adapter *profile.Adapter
	backend profile.ModernBackend
	metrics *telemetry.ProfileMetrics
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithMetrics records translations and backend latency.
func WithMetrics(m *telemetry.ProfileMetrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a new Service
func NewService(adapter *profile.Adapter, backend profile.ModernBackend, opts ...ServiceOption) *Service {
	s := &Service{adapter: adapter, backend: backend}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetCustomer fetches a profile by id and returns it in the legacy shape.
func (s *Service) GetCustomer(ctx context.Context, id int64) (*profile.LegacyProfile, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "get", telemetry.WithAttribute("customer.id", id))
	defer span.End()

	modern, err := s.callBackend(ctx, "get", func() (*profile.ModernProfile, error) {
		return s.backend.Get(ctx, id)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	legacy, err := s.toLegacy(ctx, modern)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Debug("Customer fetched", zap.Int64("customer_id", id))
	return legacy, nil
}

// CreateCustomer submits a new profile and returns what the backend stored.
func (s *Service) CreateCustomer(ctx context.Context, input *profile.LegacyProfile) (*profile.LegacyProfile, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "create")
	defer span.End()

	modern, err := s.toModern(ctx, input)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	created, err := s.callBackend(ctx, "create", func() (*profile.ModernProfile, error) {
		return s.backend.Create(ctx, modern)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	legacy, err := s.toLegacy(ctx, created)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("Customer created", zap.Int64p("customer_id", legacy.CustomerID))
	return legacy, nil
}

// UpdateCustomerProfile replaces the profile at id and returns what the
// backend stored.
func (s *Service) UpdateCustomerProfile(ctx context.Context, id int64, input *profile.LegacyProfile) (*profile.LegacyProfile, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "update", telemetry.WithAttribute("customer.id", id))
	defer span.End()

	modern, err := s.toModern(ctx, input)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	updated, err := s.callBackend(ctx, "update", func() (*profile.ModernProfile, error) {
		return s.backend.Update(ctx, id, modern)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	legacy, err := s.toLegacy(ctx, updated)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("Customer updated", zap.Int64("customer_id", id))
	return legacy, nil
}

func (s *Service) toModern(ctx context.Context, in *profile.LegacyProfile) (*profile.ModernProfile, error) {
	out, err := s.adapter.ToModern(in)
	s.metrics.RecordTranslation(ctx, telemetry.DirectionToModern, err)
	return out, err
}

func (s *Service) toLegacy(ctx context.Context, in *profile.ModernProfile) (*profile.LegacyProfile, error) {
	out, err := s.adapter.ToLegacy(in)
	s.metrics.RecordTranslation(ctx, telemetry.DirectionToLegacy, err)
	return out, err
}

func (s *Service) callBackend(ctx context.Context, op string, call func() (*profile.ModernProfile, error)) (*profile.ModernProfile, error) {
	start := time.Now()
	out, err := call()
	s.metrics.RecordBackendCall(ctx, op, time.Since(start), err)
	if err != nil {
		logger.L(ctx).Warn("Modern backend call failed", zap.String("operation", op), zap.Error(err))
	}
	return out, err
}
