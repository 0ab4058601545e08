// Package page wraps fetched HTML in a queryable document. CSS queries go
// through goquery, XPath queries through htmlquery; both views are parsed
// lazily from the same raw bytes.
package page

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Page is one fetched, parsed HTML page.
type Page struct {
	// URL is the address the page was fetched from.
	URL string

	// Body is the raw HTML.
	Body []byte

	doc  *goquery.Document
	root *html.Node
}

// New parses raw HTML into a Page. The goquery document is built eagerly
// so a parse failure surfaces at fetch time.
func New(url string, body []byte) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return &Page{
		URL:  url,
		Body: body,
		doc:  doc,
	}, nil
}

// Document returns the parsed goquery document.
func (p *Page) Document() *goquery.Document {
	return p.doc
}

// Find runs a CSS selector query against the page.
func (p *Page) Find(selector string) *goquery.Selection {
	return p.doc.Find(selector)
}

// Text returns the trimmed text content of the first node matching the
// CSS selector.
func (p *Page) Text(selector string) string {
	return strings.TrimSpace(p.doc.Find(selector).First().Text())
}

// Attr returns the named attribute of the first node matching the CSS
// selector.
func (p *Page) Attr(selector, name string) (string, bool) {
	return p.doc.Find(selector).First().Attr(name)
}

// XPath runs an XPath query against the page.
func (p *Page) XPath(expr string) ([]*html.Node, error) {
	root, err := p.rootNode()
	if err != nil {
		return nil, err
	}
	return htmlquery.QueryAll(root, expr)
}

// XPathOne returns the first node matching the XPath query, or nil.
func (p *Page) XPathOne(expr string) (*html.Node, error) {
	root, err := p.rootNode()
	if err != nil {
		return nil, err
	}
	return htmlquery.Query(root, expr)
}

// HTML returns the raw page HTML as a string.
func (p *Page) HTML() string {
	return string(p.Body)
}

func (p *Page) rootNode() (*html.Node, error) {
	if p.root != nil {
		return p.root, nil
	}
	root, err := htmlquery.Parse(bytes.NewReader(p.Body))
	if err != nil {
		return nil, err
	}
	p.root = root
	return root, nil
}
