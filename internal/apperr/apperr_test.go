package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("project %s not found", "x")))
	assert.Equal(t, KindForbidden, KindOf(Forbidden("not yours")))
	assert.Equal(t, KindInvalidState, KindOf(InvalidState("project is not open")))
	assert.Equal(t, KindInvalidTransition, KindOf(InvalidTransition("open", "completed")))
	assert.Equal(t, KindInvalidRange, KindOf(InvalidRange("progress must be 0..100")))
	assert.Equal(t, KindPersistence, KindOf(Persistence(errors.New("conn refused"))))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("transition failed: %w", InvalidTransition("open", "completed"))
	assert.Equal(t, KindInvalidTransition, KindOf(err))
}

func TestInvalidTransitionMessage(t *testing.T) {
	err := InvalidTransition("open", "completed")
	assert.Equal(t, `cannot transition from "open" to "completed"`, err.Error())
}

func TestPersistenceUnwrap(t *testing.T) {
	cause := errors.New("duplicate key value")
	err := Persistence(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "duplicate key value")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "invalid_transition", KindInvalidTransition.String())
	assert.Equal(t, "persistence_failure", KindPersistence.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}
