package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStrip_Bold(t *testing.T) {
	require.Equal(t, "use fresh curry leaves", Strip("use **fresh** curry **leaves**"))
}

func TestStrip_BoldBeforeItalic(t *testing.T) {
	// ***text*** must come out clean, not with leftover asterisks.
	require.Equal(t, "crispy", Strip("***crispy***"))
}

func TestStrip_Italic(t *testing.T) {
	require.Equal(t, "soak overnight", Strip("*soak* _overnight_"))
}

func TestStrip_Headings(t *testing.T) {
	require.Equal(t, "Ingredients\nrice", Strip("## Ingredients\nrice"))
	require.Equal(t, "Steps", Strip("### Steps"))
}

func TestStrip_InlineCode(t *testing.T) {
	require.Equal(t, "set flame to low", Strip("set flame to `low`"))
}

func TestStrip_LinkKeepsTextDropsURL(t *testing.T) {
	require.Equal(t, "see this guide for details", Strip("see [this guide](https://example.com/dosa) for details"))
}

func TestStrip_HorizontalRules(t *testing.T) {
	require.Equal(t, "above\n\nbelow", Strip("above\n---\nbelow"))
	require.Equal(t, "above\n\nbelow", Strip("above\n_____\nbelow"))
}

func TestStrip_Blockquote(t *testing.T) {
	require.Equal(t, "a chef's tip", Strip("> a chef's tip"))
}

func TestStrip_CollapsesBlankLines(t *testing.T) {
	require.Equal(t, "one\n\ntwo", Strip("one\n\n\n\n\ntwo"))
}

func TestStrip_TrimsWhitespace(t *testing.T) {
	require.Equal(t, "hello", Strip("  \n hello \n\n"))
}

func TestStrip_Empty(t *testing.T) {
	require.Equal(t, "", Strip(""))
}

func TestStrip_PlainTextUnchanged(t *testing.T) {
	inputs := []string{
		"Yes, you can substitute moong dal for urad dal in dosa.",
		"📝 Ingredients\n• 2 cups rice\n• ½ cup urad dal",
		"1. Soak rice\n2. Grind batter\n3. Ferment overnight",
	}
	for _, in := range inputs {
		require.Equal(t, in, Strip(in), "input=%q", in)
	}
}

func TestStrip_Idempotent(t *testing.T) {
	inputs := []string{
		"**Bold** and *italic* and _under_",
		"## Heading\n\n> quote\n\n---\n\n`code`",
		"[text](url) plus ***both***",
		"a\n\n\n\nb\n\n\n\n\nc",
		"plain text stays plain",
	}
	for _, in := range inputs {
		once := Strip(in)
		require.Equal(t, once, Strip(once), "input=%q", in)
	}
}

func TestStrip_RecipeReply(t *testing.T) {
	in := "**Ghee Karam Dosa**\n\n### 📝 Ingredients\n• rice\n• urad dal\n\n---\n\n### 👨‍🍳 Instructions\n1. *Soak* and grind.\n2. Spread `batter` thin."
	want := "Ghee Karam Dosa\n\n📝 Ingredients\n• rice\n• urad dal\n\n👨‍🍳 Instructions\n1. Soak and grind.\n2. Spread batter thin."
	require.Equal(t, want, Strip(in))
}
