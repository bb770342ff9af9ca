package theme

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStylesheet_UsesPrefix(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, Stylesheet(&sb, "Monokai", "z-"))

	css := sb.String()
	require.Contains(t, css, ".z-chroma {")
	require.Contains(t, css, ".z-chroma .z-k {")
	require.NotContains(t, css, ".chroma {")
}

func TestStylesheet_UnknownStyle(t *testing.T) {
	var sb strings.Builder
	err := Stylesheet(&sb, "material-oceanic", "z-")
	require.ErrorIs(t, err, ErrUnknownStyle)
	require.Empty(t, sb.String())
}

func TestNames(t *testing.T) {
	require.Contains(t, Names(), "monokai")
}
