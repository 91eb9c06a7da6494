package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vulgatecnn/afa100-sub001/domain"
	"github.com/vulgatecnn/afa100-sub001/internal/mocks"
)

func performValidate(t *testing.T, h *ValidationHandlers, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/device/validate", bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Validate(c)
	return w
}

func TestValidationHandlers_Validate(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		setupMocks     func(*mocks.MockValidationService, *mocks.MockQREncoder)
		expectedStatus int
		expectedBody   map[string]interface{}
	}{
		{
			name: "allowed with plain code",
			requestBody: map[string]interface{}{
				"code":      "A7K2M9PQRS",
				"device_id": "gate-01",
			},
			setupMocks: func(vs *mocks.MockValidationService, qr *mocks.MockQREncoder) {
				vs.ValidateFunc = func(ctx context.Context, codeValue, deviceID string, now time.Time) domain.Decision {
					if codeValue != "A7K2M9PQRS" {
						t.Errorf("expected code A7K2M9PQRS, got %s", codeValue)
					}
					if deviceID != "gate-01" {
						t.Errorf("expected device gate-01, got %s", deviceID)
					}
					return domain.Allow("cred-1", 2)
				}
			},
			expectedStatus: http.StatusOK,
			expectedBody: map[string]interface{}{
				"allowed":        true,
				"remaining_uses": float64(2),
			},
		},
		{
			name: "denied returns reason",
			requestBody: map[string]interface{}{
				"code":      "A7K2M9PQRS",
				"device_id": "gate-01",
			},
			setupMocks: func(vs *mocks.MockValidationService, qr *mocks.MockQREncoder) {
				vs.ValidateFunc = func(ctx context.Context, codeValue, deviceID string, now time.Time) domain.Decision {
					return domain.Deny(domain.DenyExpired, "cred-1")
				}
			},
			expectedStatus: http.StatusOK,
			expectedBody: map[string]interface{}{
				"allowed": false,
				"reason":  "expired",
			},
		},
		{
			name: "qr token decoded before validation",
			requestBody: map[string]interface{}{
				"qr_token":  "qr:A7K2M9PQRS",
				"device_id": "gate-01",
			},
			setupMocks: func(vs *mocks.MockValidationService, qr *mocks.MockQREncoder) {
				qr.DecodeFunc = func(token string) (string, error) {
					if token != "qr:A7K2M9PQRS" {
						t.Errorf("unexpected token %s", token)
					}
					return "A7K2M9PQRS", nil
				}
				vs.ValidateFunc = func(ctx context.Context, codeValue, deviceID string, now time.Time) domain.Decision {
					if codeValue != "A7K2M9PQRS" {
						t.Errorf("expected decoded code, got %s", codeValue)
					}
					return domain.Allow("cred-1", 0)
				}
			},
			expectedStatus: http.StatusOK,
			expectedBody: map[string]interface{}{
				"allowed":        true,
				"remaining_uses": float64(0),
			},
		},
		{
			name: "malformed qr token denies as not found",
			requestBody: map[string]interface{}{
				"qr_token":  "garbage",
				"device_id": "gate-01",
			},
			setupMocks: func(vs *mocks.MockValidationService, qr *mocks.MockQREncoder) {
				qr.DecodeFunc = func(token string) (string, error) {
					return "", errors.New("token is malformed")
				}
				vs.ValidateFunc = func(ctx context.Context, codeValue, deviceID string, now time.Time) domain.Decision {
					t.Error("validation service should not be called for a bad token")
					return domain.Deny(domain.DenyNotFound, "")
				}
			},
			expectedStatus: http.StatusOK,
			expectedBody: map[string]interface{}{
				"allowed": false,
				"reason":  "not_found",
			},
		},
		{
			name: "missing device_id rejected",
			requestBody: map[string]interface{}{
				"code": "A7K2M9PQRS",
			},
			setupMocks:     func(vs *mocks.MockValidationService, qr *mocks.MockQREncoder) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "neither code nor qr token rejected",
			requestBody: map[string]interface{}{
				"device_id": "gate-01",
			},
			setupMocks:     func(vs *mocks.MockValidationService, qr *mocks.MockQREncoder) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs := mocks.NewMockValidationService()
			qr := mocks.NewMockQREncoder()
			tt.setupMocks(vs, qr)

			h := NewValidationHandlers(vs, qr)
			w := performValidate(t, h, tt.requestBody)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d (body: %s)", tt.expectedStatus, w.Code, w.Body.String())
			}

			if tt.expectedBody != nil {
				var resp map[string]interface{}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				for k, want := range tt.expectedBody {
					if resp[k] != want {
						t.Errorf("expected %s=%v, got %v", k, want, resp[k])
					}
				}
			}
		})
	}
}

func TestValidationHandlers_Validate_UsesProvidedTimestamp(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ts := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	var seen time.Time

	vs := mocks.NewMockValidationService()
	vs.ValidateFunc = func(ctx context.Context, codeValue, deviceID string, now time.Time) domain.Decision {
		seen = now
		return domain.Allow("cred-1", 1)
	}

	h := NewValidationHandlers(vs, mocks.NewMockQREncoder())
	w := performValidate(t, h, map[string]interface{}{
		"code":      "A7K2M9PQRS",
		"device_id": "gate-01",
		"timestamp": ts.Format(time.RFC3339),
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !seen.Equal(ts) {
		t.Errorf("expected validation at %v, got %v", ts, seen)
	}
}
