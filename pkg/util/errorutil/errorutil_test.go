package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	notFound := ToDomainError(fmt.Errorf("get notification: %w", pgx.ErrNoRows))
	assert.Equal(t, http.StatusNotFound, notFound.HTTPStatus)
	assert.Equal(t, "NOT_FOUND", notFound.Code)

	conflict := NewConflict("job already running", nil)
	assert.Same(t, conflict, ToDomainError(fmt.Errorf("wrapped: %w", conflict)))

	internal := ToDomainError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, internal.HTTPStatus)
	assert.EqualError(t, internal, "internal server error: boom")
}

func TestToDomainErrorFindsDomainErrorInsideJoin(t *testing.T) {
	forbidden := NewForbidden("admin only")
	joined := errors.Join(errors.New("handler a failed"), fmt.Errorf("handler b: %w", forbidden))

	got := ToDomainError(joined)
	assert.Same(t, forbidden, error(got))
	assert.Equal(t, http.StatusForbidden, got.HTTPStatus)
}
