package mealplan

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTML reads a plan rendered as HTML. Headings become markdown headings
// and list items or paragraphs become "- " lines, then the markdown rules apply.
func (n *Normalizer) ParseHTML(r io.Reader) (MealPlanData, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return MealPlanData{}, fmt.Errorf("failed to parse html: %w", err)
	}

	doc.Find("script, style, nav, footer, iframe").Each(func(_ int, s *goquery.Selection) {
		s.Remove()
	})

	var sb strings.Builder
	doc.Find("h1, h2, h3, h4, h5, h6, li, p").Each(func(_ int, s *goquery.Selection) {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text == "" {
			return
		}
		name := goquery.NodeName(s)
		// A paragraph inside a list item is already part of the item's text.
		if name == "p" && s.ParentsFiltered("li").Length() > 0 {
			return
		}
		if name[0] == 'h' {
			sb.WriteString("## " + text + "\n")
			return
		}
		sb.WriteString("- " + text + "\n")
	})

	return n.ParseMarkdown(sb.String()), nil
}
