package hubimport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriteMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "tab menu",
			in: `<woltlab-metacode data-name="tabmenu">` +
				`<woltlab-metacode data-name="tab" data-attributes="WyJJbnN0YWxsIl0="><p>Unzip</p></woltlab-metacode>` +
				`<woltlab-metacode data-name="tab" data-attributes="WyJDaGFuZ2Vsb2ciXQ=="><p>Fixes</p></woltlab-metacode>` +
				`</woltlab-metacode>`,
			want: `<h3>Install</h3><p>Unzip</p><h3>Changelog</h3><p>Fixes</p>`,
		},
		{
			name: "tab without title",
			in:   `<woltlab-metacode data-name="tabmenu"><woltlab-metacode data-name="tab" data-attributes="!!"><p>Body</p></woltlab-metacode></woltlab-metacode>`,
			want: `<p>Body</p>`,
		},
		{
			name: "known and unknown icons",
			in:   `<p><span class="icon icon16 fa-check"></span> Works <span class="icon icon16 fa-not-a-real-icon"></span></p>`,
			want: `<p>✔ Works </p>`,
		},
		{
			name: "plain span kept",
			in:   `<p><span class="highlight">text</span></p>`,
			want: `<p><span class="highlight">text</span></p>`,
		},
		{
			name: "icon inside tab",
			in:   `<woltlab-metacode data-name="tabmenu"><woltlab-metacode data-name="tab" data-attributes="WyJJbnN0YWxsIl0="><p><span class="fa fa-warning"></span> Backup</p></woltlab-metacode></woltlab-metacode>`,
			want: `<h3>Install</h3><p>⚠ Backup</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rewriteMarkup(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanContent(t *testing.T) {
	out, err := CleanContent(`<p>Hello <strong>world</strong></p><script>alert(1)</script><p onclick="x()">Second</p>`)
	require.NoError(t, err)

	assert.Contains(t, out, "Hello **world**")
	assert.Contains(t, out, "Second")
	assert.NotContains(t, out, "alert")
	assert.NotContains(t, out, "onclick")
}

func TestCleanContent_TabMenuBecomesHeading(t *testing.T) {
	out, err := CleanContent(`<woltlab-metacode data-name="tabmenu"><woltlab-metacode data-name="tab" data-attributes="WyJJbnN0YWxsIl0="><p>Unzip</p></woltlab-metacode></woltlab-metacode>`)
	require.NoError(t, err)

	assert.Contains(t, out, "### Install")
	assert.Contains(t, out, "Unzip")
}

func TestCleanContent_CollapsesBlankLines(t *testing.T) {
	out, err := CleanContent("<p>a</p>\n\n\n\n<p>b</p>\n\n\n\n\n<p>c</p>")
	require.NoError(t, err)

	assert.NotContains(t, out, "\n\n\n")
	assert.False(t, strings.HasPrefix(out, "\n"))
	assert.False(t, strings.HasSuffix(out, "\n"))
}

func TestCleanContent_Smiley(t *testing.T) {
	out, err := CleanContent(`<p>Nice <img src="https://hub.sp-tarkov.com/images/smilies/smile.png" class="smiley" alt=":)"></p>`)
	require.NoError(t, err)

	assert.Contains(t, out, ":)")
	assert.NotContains(t, out, "smile.png")
}

func TestCleanContent_Empty(t *testing.T) {
	out, err := CleanContent("   ")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestCleanTeaser(t *testing.T) {
	assert.Equal(t, "Hello & world", CleanTeaser("<b>Hello</b>   &amp; world"))

	long := CleanTeaser(strings.Repeat("é", 300))
	assert.Equal(t, MaxTeaserLength, len([]rune(long)))
}

func TestIconName(t *testing.T) {
	tests := []struct {
		class string
		name  string
		ok    bool
	}{
		{"icon icon16 fa-check", "check", true},
		{"fa fa-star fa-lg", "star", true},
		{"icon fa-fw fa-check", "check", true},
		{"fa fa-2x fa-spin fa-cog", "cog", true},
		{"fa fa-10x fa-pull-left fa-rotate-90 fa-sm fa-xs fa-bell", "bell", true},
		{"fa fa-fw fa-lg", "", false},
		{"fa-check", "", false},
		{"icon", "", false},
		{"highlight", "", false},
	}
	for _, tt := range tests {
		name, ok := iconName(tt.class)
		assert.Equal(t, tt.ok, ok, tt.class)
		assert.Equal(t, tt.name, name, tt.class)
	}
}

func TestLoadIcons(t *testing.T) {
	icons, err := loadIcons([]byte("check: \"✔\"\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"check": "✔"}, icons)

	_, err = loadIcons([]byte("- not a map"))
	assert.Error(t, err)

	assert.NotEmpty(t, iconGlyph("check"))
	assert.Empty(t, iconGlyph("nope"))
}
