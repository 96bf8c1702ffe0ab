package extract

import (
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Document is one fetched post page shared by every strategy. The HTML tree
// is parsed at most once, on first use.
type Document struct {
	HTML string

	once sync.Once
	dom  *goquery.Document
	err  error
}

// NewDocument wraps raw page HTML.
func NewDocument(html string) *Document {
	return &Document{HTML: html}
}

// DOM returns the parsed HTML tree.
func (d *Document) DOM() (*goquery.Document, error) {
	d.once.Do(func() {
		d.dom, d.err = goquery.NewDocumentFromReader(strings.NewReader(d.HTML))
		if d.err != nil {
			d.err = fmt.Errorf("parsing page: %w", d.err)
		}
	})
	return d.dom, d.err
}
