package bpmerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinelsAreDistinctAndWrappable(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", ErrInvalidArgument)
	require.True(t, errors.Is(wrapped, ErrInvalidArgument))
	require.False(t, errors.Is(wrapped, ErrDecodeFailure))
	require.False(t, errors.Is(wrapped, ErrIO))

	require.NotEqual(t, ErrInvalidArgument.Error(), ErrDecodeFailure.Error())
	require.NotEqual(t, ErrDecodeFailure.Error(), ErrIO.Error())
}
