package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	pkgerrors "github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/errors"
)

func TestFromMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("session: %w", pkgerrors.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("advance: %w", pkgerrors.ErrInvalidArgument), http.StatusBadRequest},
		{fmt.Errorf("advance: %w", pkgerrors.ErrConflict), http.StatusConflict},
		{pkgerrors.ErrUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		got := From(tc.err, "failed")
		if got.Status != tc.status || got.Code != "failed" || !errors.Is(got, tc.err) {
			t.Fatalf("From(%v) = %+v", tc.err, got)
		}
	}
}

func TestFromKeepsExistingError(t *testing.T) {
	inner := New(http.StatusTeapot, "teapot", errors.New("short and stout"))
	got := From(fmt.Errorf("wrapped: %w", inner), "ignored")
	if got != inner {
		t.Fatalf("expected the wrapped *Error, got %+v", got)
	}
	if New(0, "", nil).Error() != "api error" || New(404, "", nil).Error() != "api error (404)" {
		t.Fatalf("unexpected messages")
	}
}
