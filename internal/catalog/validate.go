package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	yearPrefix = regexp.MustCompile(`^[0-9]{4}`)
	editorName = regexp.MustCompile(`^[А-Яа-я ]+`)

	bookNameSanitizer = strings.NewReplacer(";", "", `"`, "")
)

// minEditionYear is the oldest edition year accepted; anything earlier
// is assumed to be a scanning artifact in the source markup.
const minEditionYear = 1900

// ValidateRecord checks a raw record's structural sanity and, when it
// passes, returns the sanitized Book. Rejected records are skipped
// silently; the caller only learns that ok is false.
func ValidateRecord(rec RawRecord) (Book, bool) {
	digits := yearPrefix.FindString(rec.RawYear)
	if digits == "" {
		return Book{}, false
	}
	if !editorName.MatchString(rec.RawEditor) {
		return Book{}, false
	}
	year, err := strconv.Atoi(digits)
	if err != nil || year < minEditionYear {
		return Book{}, false
	}

	price, _ := strconv.Atoi(strings.TrimSpace(rec.Price))
	return Book{
		ID:     rec.ProductID,
		Price:  price,
		Name:   bookNameSanitizer.Replace(rec.Name),
		Year:   year,
		Editor: strings.ToUpper(rec.RawEditor),
	}, true
}
