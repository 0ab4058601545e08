package page

import (
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
)

const sampleHTML = `<html><body>
<h1 class="title">  Product Name  </h1>
<div class="items">
	<a href="/item/1">first</a>
	<a href="/item/2">second</a>
</div>
<img id="cover" src="/img/cover.jpg">
</body></html>`

func mustPage(t *testing.T) *Page {
	t.Helper()
	p, err := New("https://example.com/list", []byte(sampleHTML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return p
}

// --- CSS Query Tests ---

func TestText(t *testing.T) {
	p := mustPage(t)
	if got := p.Text("h1.title"); got != "Product Name" {
		t.Errorf("expected trimmed text, got %q", got)
	}
	if got := p.Text(".missing"); got != "" {
		t.Errorf("expected empty text for no match, got %q", got)
	}
}

func TestAttr(t *testing.T) {
	p := mustPage(t)

	src, ok := p.Attr("#cover", "src")
	if !ok || src != "/img/cover.jpg" {
		t.Errorf("expected cover src, got %q ok=%v", src, ok)
	}
	if _, ok := p.Attr("#cover", "alt"); ok {
		t.Error("expected missing attribute to report ok=false")
	}
}

func TestFind(t *testing.T) {
	p := mustPage(t)

	var hrefs []string
	p.Find(".items a").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			hrefs = append(hrefs, href)
		}
	})
	if len(hrefs) != 2 || hrefs[0] != "/item/1" || hrefs[1] != "/item/2" {
		t.Errorf("unexpected hrefs: %v", hrefs)
	}
}

// --- XPath Query Tests ---

func TestXPath(t *testing.T) {
	p := mustPage(t)

	nodes, err := p.XPath("//div[@class='items']/a")
	if err != nil {
		t.Fatalf("xpath: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 anchor nodes, got %d", len(nodes))
	}
	if got := htmlquery.InnerText(nodes[0]); got != "first" {
		t.Errorf("unexpected first anchor text %q", got)
	}
}

func TestXPathOne(t *testing.T) {
	p := mustPage(t)

	node, err := p.XPathOne("//h1")
	if err != nil {
		t.Fatalf("xpath: %v", err)
	}
	if node == nil {
		t.Fatal("expected a match for //h1")
	}

	none, err := p.XPathOne("//table")
	if err != nil {
		t.Fatalf("xpath: %v", err)
	}
	if none != nil {
		t.Error("expected nil for no match")
	}
}

// --- Raw Access Tests ---

func TestHTMLAndBody(t *testing.T) {
	p := mustPage(t)
	if p.HTML() != sampleHTML {
		t.Error("HTML() must return the raw bytes unchanged")
	}
	if p.URL != "https://example.com/list" {
		t.Errorf("unexpected URL %q", p.URL)
	}
}
