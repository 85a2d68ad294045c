package document

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-faster/errors"
)

// HTMLToText flattens an HTML page into one line per block element, the
// layout the vendor processors scan. Exported chat pages keep each message
// in its own paragraph or div.
func HTMLToText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", errors.Wrap(err, "parse html")
	}

	var lines []string
	doc.Find("h1, h2, h3, p, li, td, pre").Each(func(_ int, s *goquery.Selection) {
		if s.Find("p, li, td").Length() > 0 {
			return
		}
		for _, l := range strings.Split(s.Text(), "\n") {
			if l = strings.TrimSpace(l); l != "" {
				lines = append(lines, l)
			}
		}
	})
	return strings.Join(lines, "\n"), nil
}
