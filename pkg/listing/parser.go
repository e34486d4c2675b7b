// Package listing parses the circulars listing page into entries.
package listing

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"dotwatch/models"
)

// Parse extracts candidate entries from the listing document, in the
// order they appear on the page. Each row is anchored by a "Download"
// link; the row's second cell is the title and its last cell the
// publish date. Rows without a parent <tr>, with fewer than three
// cells, or without a resolvable link are skipped silently.
//
// Parse is pure: it performs no I/O and no retries.
func Parse(doc *goquery.Document, baseURL string) []models.Entry {
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	var entries []models.Entry
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		if !strings.Contains(a.Text(), "Download") {
			return
		}
		tr := a.Closest("tr")
		if tr.Length() == 0 {
			return
		}
		tds := tr.Find("td")
		if tds.Length() < 3 {
			return
		}

		href, _ := a.Attr("href")
		pdfURL := resolveLink(base, href)
		if pdfURL == "" {
			return
		}

		entries = append(entries, models.Entry{
			Title:       strings.TrimSpace(tds.Eq(1).Text()),
			PublishDate: strings.TrimSpace(tds.Eq(tds.Length() - 1).Text()),
			SourceURL:   pdfURL,
		})
	})
	return entries
}

// resolveLink resolves href against the listing's own URL. Relative
// links are common on the source site.
func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if !ref.IsAbs() {
		return ""
	}
	return ref.String()
}
