package ginserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	gin "github.com/gin-gonic/gin"

	"stayfinder/internal/domain/shared/fault"
)

func TestStatusForKind(t *testing.T) {
	cases := []struct {
		kind fault.Kind
		want int
	}{
		{fault.KindNotFound, http.StatusNotFound},
		{fault.KindUnauthorized, http.StatusUnauthorized},
		{fault.KindForbidden, http.StatusForbidden},
		{fault.KindConflict, http.StatusConflict},
		{fault.KindInvalidState, http.StatusBadRequest},
		{fault.KindInvalidDateRange, http.StatusBadRequest},
		{fault.KindCapacityExceeded, http.StatusBadRequest},
		{fault.KindDateConflict, http.StatusBadRequest},
		{fault.KindValidation, http.StatusBadRequest},
		{fault.KindUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusForKind(tc.kind); got != tc.want {
			t.Errorf("statusForKind(%v) = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("kinded error passes message through", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(recorder)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/bookings/bk-1", nil)

		respondError(c, nil, fault.NotFound("booking"))

		if recorder.Code != http.StatusNotFound {
			t.Fatalf("code = %d, want 404", recorder.Code)
		}
		var body envelope
		if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body.Status != "error" || body.Message == "" {
			t.Fatalf("body = %+v", body)
		}
	})

	t.Run("unknown error is masked", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(recorder)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/bookings", nil)

		respondError(c, nil, errors.New("dial tcp 10.0.0.5:27017: connection refused"))

		if recorder.Code != http.StatusInternalServerError {
			t.Fatalf("code = %d, want 500", recorder.Code)
		}
		var body envelope
		if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body.Message != "internal error" {
			t.Fatalf("message = %q, internal detail must not leak", body.Message)
		}
	})
}
