package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/profilegateway/backend/internal/domain/profile"
	"github.com/profilegateway/backend/internal/domain/shared"
	"github.com/profilegateway/backend/internal/interfaces/http/dto"
	"github.com/profilegateway/backend/internal/interfaces/http/middleware"
	"github.com/profilegateway/backend/internal/interfaces/http/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockCustomerService is a mock implementation of CustomerService
type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, id int64) (*profile.LegacyProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.LegacyProfile), args.Error(1)
}

func (m *MockCustomerService) CreateCustomer(ctx context.Context, input *profile.LegacyProfile) (*profile.LegacyProfile, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.LegacyProfile), args.Error(1)
}

func (m *MockCustomerService) UpdateCustomerProfile(ctx context.Context, id int64, input *profile.LegacyProfile) (*profile.LegacyProfile, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.LegacyProfile), args.Error(1)
}

func setupCustomerRouter(svc CustomerService) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID())
	router.NewRouter(engine).Register(NewCustomerHandler(svc).Routes()).Setup()
	return engine
}

func perform(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorInfo {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return *resp.Error
}

func TestCustomerHandler_Get_Success(t *testing.T) {
	svc := new(MockCustomerService)
	svc.On("GetCustomer", mock.Anything, int64(7)).Return(&profile.LegacyProfile{
		CustomerID:  profile.Int64(7),
		FullName:    profile.String("Ada Lovelace"),
		Email:       profile.String("ada@example.com"),
		PhoneNumber: nil,
	}, nil)

	w := perform(setupCustomerRouter(svc), http.MethodGet, "/api/customers/7", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"customerId":7,"fullName":"Ada Lovelace","email":"ada@example.com","phoneNumber":null}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestCustomerHandler_Get_InvalidID(t *testing.T) {
	svc := new(MockCustomerService)
	engine := setupCustomerRouter(svc)

	for _, id := range []string{"abc", "1.5", "99999999999999999999"} {
		w := perform(engine, http.MethodGet, "/api/customers/"+id, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, id)
		assert.Equal(t, dto.ErrCodeBadRequest, decodeError(t, w).Code)
	}
	svc.AssertNotCalled(t, "GetCustomer", mock.Anything, mock.Anything)
}

func TestCustomerHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"not found", shared.NewDomainError(shared.CodeNotFound, "Customer not found"), http.StatusNotFound, dto.ErrCodeNotFound, "Customer not found"},
		{"validation", shared.NewDomainError(shared.CodeValidationFailed, "Modern backend rejected the profile"), http.StatusUnprocessableEntity, dto.ErrCodeValidationFailed, "Modern backend rejected the profile"},
		{"unavailable", shared.WrapDomainError(shared.CodeBackendUnavailable, "Modern backend unavailable", errors.New("dial tcp 10.0.0.1:443")), http.StatusBadGateway, dto.ErrCodeBackendUnavailable, "Modern backend unavailable"},
		{"timeout", shared.NewDomainError(shared.CodeBackendTimeout, "Modern backend timed out"), http.StatusGatewayTimeout, dto.ErrCodeBackendTimeout, "Modern backend timed out"},
		{"invalid argument", shared.ErrInvalidArgument, http.StatusBadRequest, dto.ErrCodeInvalidArgument, shared.ErrInvalidArgument.Message},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCustomerService)
			svc.On("GetCustomer", mock.Anything, int64(1)).Return(nil, tt.err)

			w := perform(setupCustomerRouter(svc), http.MethodGet, "/api/customers/1", "")

			assert.Equal(t, tt.wantStatus, w.Code)
			info := decodeError(t, w)
			assert.Equal(t, tt.wantCode, info.Code)
			assert.Equal(t, tt.wantMsg, info.Message)
			assert.NotEmpty(t, info.RequestID)
			assert.NotContains(t, w.Body.String(), "dial tcp")
		})
	}
}

func TestCustomerHandler_Create_Success(t *testing.T) {
	svc := new(MockCustomerService)
	svc.On("CreateCustomer", mock.Anything, mock.MatchedBy(func(p *profile.LegacyProfile) bool {
		return p.CustomerID == nil && *p.FullName == "Jane Doe" && *p.Email == "j@d.com" && *p.PhoneNumber == "123"
	})).Return(&profile.LegacyProfile{
		CustomerID:  profile.Int64(1001),
		FullName:    profile.String("Jane Doe"),
		Email:       profile.String("j@d.com"),
		PhoneNumber: profile.String("123"),
	}, nil)

	w := perform(setupCustomerRouter(svc), http.MethodPost, "/api/customers",
		`{"customerId":null,"fullName":"Jane Doe","email":"j@d.com","phoneNumber":"123"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"customerId":1001,"fullName":"Jane Doe","email":"j@d.com","phoneNumber":"123"}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestCustomerHandler_Create_BodyHandling(t *testing.T) {
	t.Run("malformed json", func(t *testing.T) {
		svc := new(MockCustomerService)
		w := perform(setupCustomerRouter(svc), http.MethodPost, "/api/customers", `{"fullName":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeError(t, w).Code)
		svc.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
	})

	t.Run("wrong field type", func(t *testing.T) {
		svc := new(MockCustomerService)
		w := perform(setupCustomerRouter(svc), http.MethodPost, "/api/customers", `{"customerId":"x"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeError(t, w).Code)
	})

	for name, body := range map[string]string{"empty body": "", "null body": "null"} {
		t.Run(name+" reaches service as nil", func(t *testing.T) {
			svc := new(MockCustomerService)
			svc.On("CreateCustomer", mock.Anything, (*profile.LegacyProfile)(nil)).Return(nil, shared.ErrInvalidArgument)

			w := perform(setupCustomerRouter(svc), http.MethodPost, "/api/customers", body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, dto.ErrCodeInvalidArgument, decodeError(t, w).Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestCustomerHandler_Update_PassesPathID(t *testing.T) {
	svc := new(MockCustomerService)
	in := `{"customerId":99,"fullName":"Jane Doe","email":"j@d.com","phoneNumber":"123"}`
	svc.On("UpdateCustomerProfile", mock.Anything, int64(5), mock.MatchedBy(func(p *profile.LegacyProfile) bool {
		return *p.CustomerID == 99
	})).Return(&profile.LegacyProfile{
		CustomerID:  profile.Int64(99),
		FullName:    profile.String("Jane Doe"),
		Email:       profile.String("j@d.com"),
		PhoneNumber: profile.String("123"),
	}, nil)

	w := perform(setupCustomerRouter(svc), http.MethodPut, "/api/customers/5", in)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, in, w.Body.String())
	svc.AssertExpectations(t)
}

func TestCustomerHandler_Update_MalformedInput(t *testing.T) {
	svc := new(MockCustomerService)
	svc.On("UpdateCustomerProfile", mock.Anything, int64(5), mock.Anything).
		Return(nil, shared.NewDomainError(shared.CodeMalformedInput, "fullName is required"))

	w := perform(setupCustomerRouter(svc), http.MethodPut, "/api/customers/5", `{"email":"x@y.z"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeMalformedInput, decodeError(t, w).Code)
}

func TestCustomerHandler_Update_InvalidIDSkipsBody(t *testing.T) {
	svc := new(MockCustomerService)

	w := perform(setupCustomerRouter(svc), http.MethodPut, "/api/customers/x", `not json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeBadRequest, decodeError(t, w).Code)
}

func TestCustomerHandler_Create_BodyTooLarge(t *testing.T) {
	svc := new(MockCustomerService)
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.BodyLimit(8))
	router.NewRouter(engine).Register(NewCustomerHandler(svc).Routes()).Setup()

	req := httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader(`{"fullName":"Jane Doe"}`))
	req.ContentLength = -1
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, dto.ErrCodeRequestTooLarge, decodeError(t, w).Code)
}
