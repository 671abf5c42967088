package cli

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleWriter(t *testing.T) {
	var out bytes.Buffer
	w := newConsoleWriter(&out)

	require.NoError(t, w.WriteLine("Welcome."))
	require.NoError(t, w.WriteLine(""))
	assert.Equal(t, "Welcome.\n\n", out.String())

	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.WriteLine("late"), io.ErrClosedPipe)
	assert.Equal(t, "Welcome.\n\n", out.String())
}
