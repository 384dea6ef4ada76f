package tui_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/synapse/internal/presentation/tui"
	"github.com/aretw0/synapse/pkg/domain"
)

func TestPrintBanner_IncludesVersion(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
}

func TestState_KeepsName(t *testing.T) {
	for _, s := range domain.CognitiveStates {
		assert.Contains(t, tui.State(s), string(s))
	}
	assert.Equal(t, "mystery", tui.State("mystery"))
}

func TestRenderers(t *testing.T) {
	out, err := tui.Plain("# Title")
	require.NoError(t, err)
	assert.Equal(t, "# Title", out)

	out, err = tui.NewGlamour(80)("# Title\n\nbody text")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "body text")
}
