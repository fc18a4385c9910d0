// Package ssr expands the custom elements used by the page templates into plain HTML.
package ssr

import (
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sangamsetu/casedesk/internal/errors"
	"github.com/sangamsetu/casedesk/internal/models"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const buttonPrimaryClass = "btn btn-primary"

// ReplaceCustomElements rewrites the custom elements read from reader and writes the result to writer.
// A fragment is written without the html, head and body elements the parser adds around it.
//
//   - <button-primary> and as="button-primary" become a primary button.
//   - <confidence-badge value="91"> becomes a badge coloured by confidence tier.
//   - <status-badge status="PENDING"> becomes a badge coloured by match status.
func ReplaceCustomElements(writer io.Writer, reader io.Reader, fragment bool) error {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return errors.Wrap(err, "parse html")
	}

	doc.Find("button-primary").Each(func(_ int, s *goquery.Selection) {
		rename(s, atom.Button)
		s.AddClass(buttonPrimaryClass)
	})
	doc.Find(`[as="button-primary"]`).Each(func(_ int, s *goquery.Selection) {
		s.RemoveAttr("as")
		s.AddClass(buttonPrimaryClass)
	})
	doc.Find("confidence-badge").Each(func(_ int, s *goquery.Selection) {
		value, _ := strconv.Atoi(s.AttrOr("value", "0"))
		tier := models.TierFor(value)
		rename(s, atom.Span)
		s.RemoveAttr("value")
		s.AddClass("badge " + tier.CSSClass())
		s.SetAttr("title", tier.Label())
		s.SetText(strconv.Itoa(value) + "%")
	})
	doc.Find("status-badge").Each(func(_ int, s *goquery.Selection) {
		status := s.AttrOr("status", string(models.MatchPending))
		rename(s, atom.Span)
		s.RemoveAttr("status")
		s.AddClass("badge status-" + strings.ToLower(status))
		s.SetText(status)
	})

	if !fragment {
		if err = html.Render(writer, doc.Nodes[0]); err != nil {
			return errors.Wrap(err, "render document")
		}
		return nil
	}
	body := doc.Find("body")
	if len(body.Nodes) > 0 {
		for c := body.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
			if err = html.Render(writer, c); err != nil {
				return errors.Wrap(err, "render html")
			}
		}
	}
	return nil
}

// rename turns the custom element in s into the element a. Data and DataAtom must agree, or the parser
// rejects the node when its content is replaced.
func rename(s *goquery.Selection, a atom.Atom) {
	s.Nodes[0].Data = a.String()
	s.Nodes[0].DataAtom = a
}
