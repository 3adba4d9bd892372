package email

import (
	"errors"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var ErrMalformedContent = errors.New("no <body> element found in content")

// bodyPattern matches from the first "<body" to the first "</body>".
var bodyPattern = regexp.MustCompile(`(?is)<body.*?</body>`)

var angleUnescaper = strings.NewReplacer("&lt;", "<", "&gt;", ">")

// BodyFragment extracts the <body>...</body> fragment of text and turns
// escaped angle brackets back into markup.
func BodyFragment(text string) (string, error) {
	match := bodyPattern.FindString(text)
	if match == "" {
		return "", ErrMalformedContent
	}
	return angleUnescaper.Replace(match), nil
}

// Document is an HTML mail body parsed into a queryable tree.
type Document struct {
	root *html.Node
	doc  *goquery.Document
}

// ParseDocument parses the body fragment of text. It fails with
// ErrMalformedContent before parsing when there is no fragment.
func ParseDocument(text string) (*Document, error) {
	fragment, err := BodyFragment(text)
	if err != nil {
		return nil, err
	}
	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil, err
	}
	return &Document{root: root, doc: goquery.NewDocumentFromNode(root)}, nil
}

// Find runs a CSS selector against the whole document.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Text is the text content of the body.
func (d *Document) Text() string {
	return d.doc.Find("body").Text()
}

// HTML renders the inner HTML of the body.
func (d *Document) HTML() (string, error) {
	return d.doc.Find("body").Html()
}

func (d *Document) Root() *html.Node {
	return d.root
}
