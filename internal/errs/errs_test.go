package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("register: %w", Invalid("national_id", "national id is required"))

	require.ErrorIs(t, err, ErrValidation)
	require.NotErrorIs(t, err, ErrConflict)

	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "national_id", ve.Field)
	require.Equal(t, "register: national_id: national id is required", err.Error())
}

func TestIO(t *testing.T) {
	require.NoError(t, IO("read users", nil))

	cause := errors.New("disk full")
	err := IO("read users", cause)
	require.ErrorIs(t, err, ErrIO)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "read users: storage i/o failure: disk full", err.Error())
}
