package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func card(id, price, name, authors, editor, year string) string {
	return `<div class="product-card js_product js__product_card js__slider_item" data-product="` + id + `" data-productprice="` + price + `">
  <div class="img-product-block"><a href="/product/` + id + `"><img title="` + name + `" src="x.jpg"/></a></div>
  <div class="product-card__author">` + authors + `</div>
  <span class="publisher"><span>Издательство:</span><span>` + editor + `</span></span>
  <span class="publisher"><span>Год издания:</span><span>` + year + `</span></span>
</div>`
}

func TestParsePage(t *testing.T) {
	t.Parallel()

	body := "<html><body>" +
		card("1", "100", "A", "Иванов И. (ред.)", "ЭКСМО", "2001") +
		card("2", "200", "B", "Петров П.", "АСТ", "2010") +
		"</body></html>"

	records, err := ParsePage([]byte(body))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, RawRecord{
		ProductID:  "1",
		Price:      "100",
		Name:       "A",
		RawAuthors: "Иванов И. (ред.)",
		RawEditor:  "ЭКСМО",
		RawYear:    "2001",
	}, records[0])
	assert.Equal(t, "2", records[1].ProductID)
	assert.Equal(t, "Петров П.", records[1].RawAuthors)
}

func TestParsePage_TruncatesToShortestColumn(t *testing.T) {
	t.Parallel()

	// Second card lacks an author block, so only one complete record
	// can be assembled.
	broken := `<div class="product-card js_product js__product_card js__slider_item" data-product="2" data-productprice="200">
  <div class="img-product-block"><a href="#"><img title="B"/></a></div>
  <span class="publisher"><span>Издательство:</span><span>АСТ</span></span>
  <span class="publisher"><span>Год издания:</span><span>2010</span></span>
</div>`
	body := "<html><body>" + card("1", "100", "A", "Иванов И.", "ЭКСМО", "2001") + broken + "</body></html>"

	records, err := ParsePage([]byte(body))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1", records[0].ProductID)
}

func TestParsePage_CleansAuthorBlock(t *testing.T) {
	t.Parallel()

	body := "<html><body>" +
		card("1", "100", "A", "\n\tИванов И.,\n\tПетров П. и др.", "ЭКСМО", "2001") +
		"</body></html>"

	records, err := ParsePage([]byte(body))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Иванов И.,Петров П.", records[0].RawAuthors)
}

func TestParsePage_Empty(t *testing.T) {
	t.Parallel()

	records, err := ParsePage([]byte("<html><body><p>nothing here</p></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, records)
}
