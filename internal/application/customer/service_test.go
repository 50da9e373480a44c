package customer

import (
	"context"
	"errors"
	"testing"

	"github.com/profilegateway/backend/internal/domain/profile"
	"github.com/profilegateway/backend/internal/domain/shared"
	"github.com/profilegateway/backend/internal/infrastructure/modern"
	"github.com/profilegateway/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// MockBackend is a mock implementation of profile.ModernBackend
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Get(ctx context.Context, id int64) (*profile.ModernProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.ModernProfile), args.Error(1)
}

func (m *MockBackend) Create(ctx context.Context, p *profile.ModernProfile) (*profile.ModernProfile, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.ModernProfile), args.Error(1)
}

func (m *MockBackend) Update(ctx context.Context, id int64, p *profile.ModernProfile) (*profile.ModernProfile, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.ModernProfile), args.Error(1)
}

func jane() *profile.LegacyProfile {
	return &profile.LegacyProfile{
		FullName:    profile.String("Jane Doe"),
		Email:       profile.String("j@d.com"),
		PhoneNumber: profile.String("123"),
	}
}

func TestService_GetCustomer_Success(t *testing.T) {
	backend := new(MockBackend)
	svc := NewService(profile.NewAdapter(), backend)

	backend.On("Get", mock.Anything, int64(42)).Return(&profile.ModernProfile{
		ID:            profile.Int64(42),
		FirstName:     profile.String("Motaz"),
		LastName:      profile.String("Ahmed"),
		EmailAddress:  profile.String("new@new.com"),
		ContactNumber: profile.String("00000000000"),
	}, nil)

	got, err := svc.GetCustomer(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, int64(42), *got.CustomerID)
	assert.Equal(t, "Motaz Ahmed", *got.FullName)
	assert.Equal(t, "new@new.com", *got.Email)
	assert.Equal(t, "00000000000", *got.PhoneNumber)
	backend.AssertExpectations(t)
}

func TestService_GetCustomer_BackendErrorPropagates(t *testing.T) {
	backend := new(MockBackend)
	svc := NewService(profile.NewAdapter(), backend)

	notFound := shared.NewDomainError(shared.CodeNotFound, "Customer not found")
	backend.On("Get", mock.Anything, int64(7)).Return(nil, notFound)

	got, err := svc.GetCustomer(context.Background(), 7)
	assert.Nil(t, got)
	assert.Same(t, notFound, err)
}

func TestService_GetCustomer_NilFromBackend(t *testing.T) {
	backend := new(MockBackend)
	svc := NewService(profile.NewAdapter(), backend)

	backend.On("Get", mock.Anything, int64(7)).Return(nil, nil)

	_, err := svc.GetCustomer(context.Background(), 7)
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)
}

func TestService_CreateCustomer_Success(t *testing.T) {
	backend := new(MockBackend)
	svc := NewService(profile.NewAdapter(), backend)

	backend.On("Create", mock.Anything, mock.MatchedBy(func(p *profile.ModernProfile) bool {
		return p.ID == nil &&
			*p.FirstName == "Jane" &&
			*p.LastName == "Doe" &&
			*p.EmailAddress == "j@d.com" &&
			*p.ContactNumber == "123"
	})).Return(&profile.ModernProfile{
		ID:            profile.Int64(1001),
		FirstName:     profile.String("Jane"),
		LastName:      profile.String("Doe"),
		EmailAddress:  profile.String("j@d.com"),
		ContactNumber: profile.String("123"),
	}, nil)

	got, err := svc.CreateCustomer(context.Background(), jane())
	require.NoError(t, err)

	assert.Equal(t, int64(1001), *got.CustomerID)
	assert.Equal(t, "Jane Doe", *got.FullName)
	backend.AssertExpectations(t)
}

func TestService_CreateCustomer_AdapterErrorSkipsBackend(t *testing.T) {
	backend := new(MockBackend)
	svc := NewService(profile.NewAdapter(), backend)

	_, err := svc.CreateCustomer(context.Background(), nil)
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)

	_, err = svc.CreateCustomer(context.Background(), &profile.LegacyProfile{Email: profile.String("x@y.z")})
	assert.ErrorIs(t, err, shared.ErrMalformedInput)

	backend.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_UpdateCustomerProfile_Success(t *testing.T) {
	backend := new(MockBackend)
	svc := NewService(profile.NewAdapter(), backend)

	backend.On("Update", mock.Anything, int64(5), mock.AnythingOfType("*profile.ModernProfile")).
		Return(&profile.ModernProfile{
			FirstName:     profile.String("Jane"),
			LastName:      profile.String("Doe"),
			EmailAddress:  profile.String("j@d.com"),
			ContactNumber: profile.String("123"),
		}, nil)

	got, err := svc.UpdateCustomerProfile(context.Background(), 5, jane())
	require.NoError(t, err)

	assert.Nil(t, got.CustomerID)
	assert.Equal(t, "Jane Doe", *got.FullName)
	backend.AssertExpectations(t)
}

func TestService_UpdateCustomerProfile_ErrorsPropagate(t *testing.T) {
	backend := new(MockBackend)
	svc := NewService(profile.NewAdapter(), backend)

	unavailable := shared.WrapDomainError(shared.CodeBackendUnavailable, "down", errors.New("dial tcp"))
	backend.On("Update", mock.Anything, int64(5), mock.Anything).Return(nil, unavailable)

	_, err := svc.UpdateCustomerProfile(context.Background(), 5, jane())
	assert.Same(t, unavailable, err)

	_, err = svc.UpdateCustomerProfile(context.Background(), 5, &profile.LegacyProfile{})
	assert.ErrorIs(t, err, shared.ErrMalformedInput)
	backend.AssertNumberOfCalls(t, "Update", 1)
}

func TestService_WithStubBackend(t *testing.T) {
	svc := NewService(profile.NewAdapter(), modern.NewStubClient())

	got, err := svc.GetCustomer(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "Motaz Ahmed", *got.FullName)

	in := &profile.LegacyProfile{
		CustomerID:  nil,
		FullName:    profile.String("Jane Doe"),
		Email:       profile.String("j@d.com"),
		PhoneNumber: profile.String("123"),
	}
	created, err := svc.CreateCustomer(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, created)

	updated, err := svc.UpdateCustomerProfile(context.Background(), 8, in)
	require.NoError(t, err)
	assert.Equal(t, in, updated)
}

func TestService_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	metrics, err := telemetry.NewProfileMetrics(meter)
	require.NoError(t, err)

	svc := NewService(profile.NewAdapter(), modern.NewStubClient(), WithMetrics(metrics))

	_, err = svc.CreateCustomer(context.Background(), jane())
	require.NoError(t, err)
	_, err = svc.CreateCustomer(context.Background(), &profile.LegacyProfile{})
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name != "gateway_profile_translations_total" {
				continue
			}
			for _, dp := range md.Data.(metricdata.Sum[int64]).DataPoints {
				dir, _ := dp.Attributes.Value(telemetry.AttrDirection)
				out, _ := dp.Attributes.Value(telemetry.AttrOutcome)
				counts[dir.AsString()+"/"+out.AsString()] += dp.Value
			}
		}
	}

	assert.Equal(t, int64(1), counts["to_modern/success"])
	assert.Equal(t, int64(1), counts["to_modern/error"])
	assert.Equal(t, int64(1), counts["to_legacy/success"])
}
