package catalog

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// XPath queries for the five card attributes. The editor/year query
// returns one interleaved sequence where even positions hold editor
// names and odd positions hold edition years.
const (
	productIDQuery    = `//div[@class='product-card js_product js__product_card js__slider_item']/@data-product`
	productPriceQuery = `//div[@class='product-card js_product js__product_card js__slider_item']/@data-productprice`
	productNameQuery  = `//div[@class='img-product-block']/a/img/@title`
	authorBlockQuery  = `//div[@class='product-card__author']`
	publisherQuery    = `//span[@class='publisher']/span[position() = 2]/text()`
)

var whitespaceRuns = regexp.MustCompile(`[\t\n]+`)

// ParsePage extracts the raw records from one catalog page. The five
// per-card queries are zipped positionally; when their lengths differ
// the shortest wins and excess entries are dropped, since some cards
// legitimately lack one of the attributes.
func ParsePage(body []byte) ([]RawRecord, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse page markup: %w", err)
	}

	ids := nodeTexts(htmlquery.Find(doc, productIDQuery))
	prices := nodeTexts(htmlquery.Find(doc, productPriceQuery))
	names := nodeTexts(htmlquery.Find(doc, productNameQuery))
	authors := authorTexts(htmlquery.Find(doc, authorBlockQuery))
	editors, years := splitPublisherTexts(htmlquery.Find(doc, publisherQuery))

	n := len(ids)
	for _, l := range []int{len(prices), len(names), len(authors), len(years), len(editors)} {
		if l < n {
			n = l
		}
	}

	records := make([]RawRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, RawRecord{
			ProductID:  ids[i],
			Price:      prices[i],
			Name:       names[i],
			RawAuthors: authors[i],
			RawYear:    years[i],
			RawEditor:  editors[i],
		})
	}
	return records, nil
}

func nodeTexts(nodes []*html.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, htmlquery.InnerText(n))
	}
	return out
}

// authorTexts cleans each raw author block: tab/newline runs are
// stripped and the trailing "and others" marker is removed.
func authorTexts(nodes []*html.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		text := whitespaceRuns.ReplaceAllString(htmlquery.InnerText(n), "")
		text = strings.ReplaceAll(text, " и др.", "")
		out = append(out, text)
	}
	return out
}

// splitPublisherTexts de-interleaves the publisher span sequence into
// editors (even positions) and years (odd positions).
func splitPublisherTexts(nodes []*html.Node) (editors, years []string) {
	for i, n := range nodes {
		text := htmlquery.InnerText(n)
		if i%2 == 0 {
			editors = append(editors, text)
		} else {
			years = append(years, text)
		}
	}
	return editors, years
}
