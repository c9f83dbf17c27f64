// Package ssr post-processes rendered pages so that templates can use custom
// elements instead of repeating utility class soup.
package ssr

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/triage/internal/errors"
	"golang.org/x/net/html"
	"io"
)

const buttonClass = "btn-primary"
const statBarClass = "stat-bar"

// ExpandCustomElements reads a full HTML document, expands the custom elements
// used by the page templates, and writes the result to writer.
//
// <button-primary> and elements marked with as="button-primary" get the shared
// button styling. <stamina-bar value="n"> becomes a styled meter element.
func ExpandCustomElements(writer io.Writer, reader io.Reader) error {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return errors.Wrap(err, "parse document")
	}
	expand(doc)

	for _, node := range doc.Selection.Nodes {
		if err = html.Render(writer, node); err != nil {
			return errors.Wrap(err, "render html")
		}
	}
	return nil
}

// ExpandFragment behaves like [ExpandCustomElements] but writes only the body
// content, so partial templates are not wrapped in a full document.
func ExpandFragment(writer io.Writer, reader io.Reader) error {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return errors.Wrap(err, "parse document")
	}
	expand(doc)

	body := doc.Find("body")
	if len(body.Nodes) == 0 {
		return nil
	}
	for c := body.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		if err = html.Render(writer, c); err != nil {
			return errors.Wrap(err, "render html")
		}
	}
	return nil
}

func expand(doc *goquery.Document) {
	doc.Find("button-primary").Each(func(_ int, s *goquery.Selection) {
		s.AddClass(buttonClass)
	})
	doc.Find(`[as="button-primary"]`).Each(func(_ int, s *goquery.Selection) {
		s.RemoveAttr("as")
		s.AddClass(buttonClass)
	})
	doc.Find("stamina-bar").Each(func(_ int, s *goquery.Selection) {
		value, ok := s.Attr("value")
		if !ok {
			value = "0"
		}
		nodes := s.Nodes
		nodes[0].Data = "meter"
		s.AddClass(statBarClass)
		s.SetAttr("min", "0")
		s.SetAttr("max", "100")
		s.SetAttr("value", value)
	})
}
