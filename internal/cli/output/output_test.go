package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveMode(t *testing.T) {
	buf := new(bytes.Buffer)

	r := NewRenderer(buf, buf, ModeAuto)
	assert.Equal(t, ModeText, r.EffectiveMode())

	r = NewRenderer(buf, buf, ModeJSON)
	assert.Equal(t, ModeJSON, r.EffectiveMode())

	r = NewRenderer(buf, buf, "")
	assert.Equal(t, ModeText, r.EffectiveMode())
}

func TestAutoModeDropsStylesForNonTerminal(t *testing.T) {
	out := new(bytes.Buffer)
	r := NewRenderer(out, out, ModeAuto)

	r.Success("done")
	// Plain output, no ANSI escapes
	assert.Equal(t, "✓ done\n", out.String())
}

func TestErrorWritesToErrWriter(t *testing.T) {
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	r := NewRenderer(out, errOut, ModeAuto)

	r.Error("broken")
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "broken")
}

func TestHeader(t *testing.T) {
	out := new(bytes.Buffer)
	r := NewRenderer(out, out, ModeAuto)

	r.Header(2, "Section")
	assert.Equal(t, "## Section\n", out.String())
}

func TestJSON(t *testing.T) {
	out := new(bytes.Buffer)
	r := NewRenderer(out, out, ModeJSON)

	require.NoError(t, r.JSON(map[string]int{"count": 3}))
	assert.JSONEq(t, `{"count": 3}`, out.String())
}
