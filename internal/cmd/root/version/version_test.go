package version

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printText(Info{Version: "dev"}, &buf))
	assert.Equal(t, "dev\n", buf.String())

	buf.Reset()
	require.NoError(t, printText(Info{Version: "1.2.0", Commit: "abc123"}, &buf))
	assert.Equal(t, "1.2.0 (abc123)\n", buf.String())
}
