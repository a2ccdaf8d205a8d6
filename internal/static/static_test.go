package static

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS(t *testing.T) {
	f, err := FS().Open("style.css")
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	b, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Contains(t, string(b), "font-family")

	_, err = FS().Open("missing.css")
	assert.Error(t, err)
}
