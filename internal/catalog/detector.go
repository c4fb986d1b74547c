package catalog

import "bytes"

var (
	productCardMarker = []byte("product-card")

	spaMarkers = [][]byte{
		[]byte("__next"),
		[]byte(`id="root"`),
		[]byte(`data-reactroot`),
	}
)

// NeedsRender reports whether a statically fetched page body looks like
// an unrendered application shell: empty, no product cards in the
// markup, or a known SPA mount point. Such pages are worth one headless
// retry when a renderer is configured.
func NeedsRender(body []byte) bool {
	if len(body) == 0 {
		return true
	}
	if !bytes.Contains(body, productCardMarker) {
		return true
	}
	for _, marker := range spaMarkers {
		if bytes.Contains(body, marker) {
			return true
		}
	}
	return false
}
