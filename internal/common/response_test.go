package common

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRespondWithData(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithData(rec, http.StatusOK, map[string]int{"totalUsers": 3}, "getStats")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"totalUsers":3},"message":"getStats"}`, rec.Body.String())
}

func TestRespondWithErr(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithErr(rec, NewAuthError(KindMismatch, "You're password not matching"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"message":"You're password not matching"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	RespondWithErr(rec, fmt.Errorf("pgUserRepository.FindOne: %w", errors.New("dial tcp 10.0.0.1:5432")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Internal server error"}`, rec.Body.String())
}
