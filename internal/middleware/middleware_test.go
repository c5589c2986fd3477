package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/placementcell/pipeline/internal/app/models/dto"
	"github.com/placementcell/pipeline/internal/pkg/apperrors"
	"github.com/placementcell/pipeline/internal/pkg/auth"
	"github.com/rs/zerolog"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		message string
	}{
		{"not found", apperrors.NewResourceNotFoundError("job not found"), 404, dto.ErrorCodeResourceNotFound, "job not found"},
		{"conflict", apperrors.NewConflictError("offer limit reached"), 409, dto.ErrorCodeConflict, "offer limit reached"},
		{"bare limit", apperrors.ErrOfferLimitReached, 409, dto.ErrorCodeConflict, "offer limit reached"},
		{"forbidden", apperrors.NewForbiddenError("only companies can perform this action"), 403, dto.ErrorCodeForbidden, "only companies can perform this action"},
		{"validation", apperrors.NewValidationError("roundType is required", []string{"roundType"}), 400, dto.ErrorCodeValidationFailed, "roundType is required"},
		{"expired", apperrors.ErrTokenExpired, 401, dto.ErrorCodeExpiredToken, "Token expired"},
		{"unknown", errors.New("connection reset"), 500, dto.ErrorCodeInternalServer, "Internal server error"},
		{"wrapped", fmt.Errorf("loading: %w", apperrors.NewResourceNotFoundError("round not found")), 404, dto.ErrorCodeResourceNotFound, "round not found"},
		{"database", fmt.Errorf("error getting job: %w", &pgconn.PgError{Code: "57014"}), 500, dto.ErrorCodeDatabaseError, "Database error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			resp := decodeError(t, w)
			if resp.Success || resp.Error.Code != tt.code || resp.Error.Message != tt.message {
				t.Fatalf("unexpected body: %+v", resp.Error)
			}
		})
	}
}

func TestHandleAPIErrorDatabaseSeverity(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleAPIError(c, fmt.Errorf("failed to count offers: %w", &pgconn.PgError{Code: "53300"}))

	resp := decodeError(t, w)
	if resp.Error.Severity != dto.ErrorSeverityCritical {
		t.Fatalf("unexpected detail: %+v", resp.Error)
	}
}

func TestHandleAPIErrorFieldFromDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleAPIError(c, apperrors.NewValidationError("studentId is required", []string{"studentId"}))

	if resp := decodeError(t, w); resp.Error.Field != "studentId" {
		t.Fatalf("field = %q", resp.Error.Field)
	}
}

func TestJWTAuth(t *testing.T) {
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", AccessTokenExp: time.Hour, TokenIssuer: "test"})
	expiredService := auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", AccessTokenExp: -time.Minute, TokenIssuer: "test"})

	good, err := jwtService.GenerateAccessToken("uid-1", "company")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	expired, err := expiredService.GenerateAccessToken("uid-1", "company")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	r := gin.New()
	r.GET("/me", NewAuthMiddleware(jwtService).JWTAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, GetUID(c))
	})

	tests := []struct {
		name   string
		header string
		status int
		code   dto.ErrorCode
	}{
		{"missing", "", 401, dto.ErrorCodeTokenNotFound},
		{"garbage", "Basic abc", 401, dto.ErrorCodeInvalidToken},
		{"expired", "Bearer " + expired, 401, dto.ErrorCodeExpiredToken},
		{"wrong signature", "Bearer " + good + "x", 401, dto.ErrorCodeInvalidToken},
		{"valid", "Bearer " + good, 200, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if tt.status == 200 {
				if w.Body.String() != "uid-1" {
					t.Fatalf("uid = %q", w.Body.String())
				}
				return
			}
			if resp := decodeError(t, w); resp.Error.Code != tt.code {
				t.Fatalf("code = %s, want %s", resp.Error.Code, tt.code)
			}
		})
	}
}

type bindTarget struct {
	JobID     int64  `json:"jobId" binding:"required,gt=0"`
	RoundType string `json:"roundType" binding:"required"`
}

func TestBindJSONListsMissingFields(t *testing.T) {
	r := gin.New()
	r.POST("/bind", func(c *gin.Context) {
		var req bindTarget
		if !BindJSON(c, &req) {
			return
		}
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bind", jsonBody(`{}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decodeError(t, w)
	details, _ := resp.Error.Details.(map[string]interface{})
	fields, _ := details["fields"].([]interface{})
	if len(fields) != 2 || fields[0] != "jobId" || fields[1] != "roundType" {
		t.Fatalf("fields = %v", details)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bind", jsonBody(`{"jobId":`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bind", jsonBody(`{"jobId":3,"roundType":"HR"}`)))
	if w.Code != http.StatusNoContent {
		t.Fatalf("valid body status = %d", w.Code)
	}
}

func TestRequestLoggerEchoesID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	id := w.Header().Get(RequestIDHeader)
	if id == "" || id != w.Body.String() {
		t.Fatalf("request id header %q, body %q", id, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get(RequestIDHeader) != "abc-123" {
		t.Fatalf("incoming id not kept: %q", w.Header().Get(RequestIDHeader))
	}
}

func TestClientLimiter(t *testing.T) {
	limiter := NewClientLimiter(0.001, 2)
	r := gin.New()
	r.Use(limiter.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
	if !limiter.Allow("10.0.0.9") {
		t.Fatal("other clients have their own bucket")
	}
}

func jsonBody(s string) *strings.Reader {
	return strings.NewReader(s)
}
