package hubimport

import (
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// MaxTeaserLength is the rune limit of an imported teaser.
const MaxTeaserLength = 255

var (
	ugcPolicy    = newUGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
	converter    = newConverter()
	blankLines   = regexp.MustCompile(`\n{3,}`)
)

func newUGCPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^smiley$`)).OnElements("img")
	return p
}

func newConverter() *md.Converter {
	conv := md.NewConverter("", true, nil)
	conv.AddRules(md.Rule{
		Filter: []string{"img"},
		Replacement: func(_ string, selec *goquery.Selection, _ *md.Options) *string {
			if !selec.HasClass("smiley") {
				return nil
			}
			alt, _ := selec.Attr("alt")
			return md.String(alt)
		},
	})
	return conv
}

// CleanContent converts Hub post HTML into Markdown. Tab menus and icon
// fonts are rewritten first, then the HTML is purified and converted.
func CleanContent(src string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}

	rewritten, err := rewriteMarkup(src)
	if err != nil {
		return "", err
	}

	markdown, err := converter.ConvertString(ugcPolicy.Sanitize(rewritten))
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}

	markdown = strings.ReplaceAll(markdown, "\r\n", "\n")
	markdown = blankLines.ReplaceAllString(markdown, "\n\n")
	return strings.TrimSpace(markdown), nil
}

// CleanTeaser strips all markup from a teaser, collapses whitespace and
// truncates it to MaxTeaserLength runes.
func CleanTeaser(src string) string {
	text := html.UnescapeString(strictPolicy.Sanitize(src))
	text = strings.Join(strings.Fields(text), " ")

	if runes := []rune(text); len(runes) > MaxTeaserLength {
		text = strings.TrimSpace(string(runes[:MaxTeaserLength]))
	}
	return text
}
