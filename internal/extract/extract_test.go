package extract

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/domain"
)

func TestForType(t *testing.T) {
	for _, docType := range []string{"markdown", "md", "MD", "text", "txt", "plain", "", "pdf", " PDF "} {
		_, err := ForType(docType)
		assert.NoError(t, err, "type %q", docType)
	}

	_, err := ForType("docx")
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestTypeForName(t *testing.T) {
	assert.Equal(t, "markdown", TypeForName("README.md"))
	assert.Equal(t, "markdown", TypeForName("guide.MARKDOWN"))
	assert.Equal(t, "pdf", TypeForName("manual.pdf"))
	assert.Equal(t, "text", TypeForName("notes.txt"))
	assert.Equal(t, "text", TypeForName("Makefile"))
}

func TestMarkdownExtract(t *testing.T) {
	src := strings.Join([]string{
		"# Getting Started",
		"",
		"Install the binary first. ![logo](logo.png)",
		"",
		"---",
		"",
		"## Configuration",
		"",
		"Edit the config file.",
		"",
		"```",
		"---",
		"key: value",
		"```",
		"",
	}, "\n")

	res, err := Markdown{}.Extract([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, "Getting Started", res.Title)
	assert.NotContains(t, res.Text, "![logo]", "image markup is stripped")
	assert.NotContains(t, res.Text, "logo.png")
	assert.Contains(t, res.Text, "Install the binary first.")

	// the rule outside the fence is dropped, the one inside survives
	assert.Contains(t, res.Text, "key: value")
	assert.Contains(t, res.Text, "```\n---\nkey: value")

	require.Len(t, res.Sections, 2)
	assert.Equal(t, "Getting Started", res.Sections[0].Title)
	assert.Equal(t, "Configuration", res.Sections[1].Title)
	for _, section := range res.Sections {
		at := res.Text[section.Offset:]
		assert.True(t, strings.HasPrefix(at, section.Title),
			"section %q offset points at its heading text", section.Title)
	}
	assert.Less(t, res.Sections[0].Offset, res.Sections[1].Offset)
}

func TestMarkdownExtractNoHeadings(t *testing.T) {
	res, err := Markdown{}.Extract([]byte("just a paragraph\n\nand another"))
	require.NoError(t, err)
	assert.Empty(t, res.Sections)
	assert.Empty(t, res.Title)
	assert.Contains(t, res.Text, "just a paragraph")
}

func TestMarkdownCollapsesBlankRuns(t *testing.T) {
	res, err := Markdown{}.Extract([]byte("a\n\n\n\n\nb"))
	require.NoError(t, err)
	assert.Contains(t, res.Text, "a\n\nb")
}

func TestPlainTextExtract(t *testing.T) {
	res, err := PlainText{}.Extract([]byte("Release Notes\r\n\r\n\r\n\r\nFixed the importer.\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "Release Notes", res.Title)
	assert.NotContains(t, res.Text, "\r")
	assert.Contains(t, res.Text, "Release Notes\n\nFixed the importer.")
	assert.Empty(t, res.Sections)
}

func TestMarkdownSectionAnchorsAtHeading(t *testing.T) {
	// the heading's words also occur in earlier body text; the anchor must
	// point at the heading, not the first mention
	src := "Install notes follow.\n\n\n\n# Install\n\nRun the installer.\n"
	res, err := Markdown{}.Extract([]byte(src))
	require.NoError(t, err)

	require.Len(t, res.Sections, 1)
	assert.Equal(t, strings.Index(res.Text, "# Install")+2, res.Sections[0].Offset)
}

func TestPlainTextTitleCapped(t *testing.T) {
	long := strings.Repeat("word ", 40)
	res, err := PlainText{}.Extract([]byte(long))
	require.NoError(t, err)
	assert.LessOrEqual(t, len(res.Title), 80)
	assert.NotEmpty(t, res.Title)
}

func TestPlainTextTitleRuneBoundary(t *testing.T) {
	res, err := PlainText{}.Extract([]byte(strings.Repeat("ü", 79)))
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(res.Title), "title cap must not split a rune")
	assert.Equal(t, strings.Repeat("ü", 40), res.Title)
}

func TestPDFExtractRejectsGarbage(t *testing.T) {
	_, err := PDF{}.Extract([]byte("this is not a pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrParse)

	_, err = PDF{}.Extract(nil)
	assert.ErrorIs(t, err, domain.ErrParse)
}
