package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRespondWithMappedError(t *testing.T) {
	sentinel := errors.New("known failure")
	cases := []ErrorCase{
		{Err: sentinel, Status: http.StatusConflict, Message: "known failure happened"},
	}

	respond := func(err error) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		RespondWithMappedError(c, err, cases, http.StatusInternalServerError, "something went wrong")
		return rec
	}

	matched := respond(fmt.Errorf("wrapping: %w", sentinel))
	if matched.Code != http.StatusConflict {
		t.Fatalf("expected mapped status 409, got %d", matched.Code)
	}
	body := decodeBody(t, matched)
	if body["success"] != false {
		t.Fatalf("expected success false, got %v", body["success"])
	}
	if body["message"] != "known failure happened" {
		t.Fatalf("expected mapped message, got %v", body["message"])
	}

	fallback := respond(errors.New("never registered"))
	if fallback.Code != http.StatusInternalServerError {
		t.Fatalf("expected fallback status 500, got %d", fallback.Code)
	}
	if decodeBody(t, fallback)["message"] != "something went wrong" {
		t.Fatalf("expected fallback message")
	}
}
