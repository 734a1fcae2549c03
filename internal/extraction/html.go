package extraction

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// htmlText strips markup and script/style content and returns the
// visible text of an HTML document.
func htmlText(data []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return ""
	}

	doc.Find("script, style, noscript").Remove()

	text := doc.Find("body").Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Text()
	}
	return strings.Join(strings.Fields(text), " ")
}
