package metrics

import "testing"

func TestSanitizeSource(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.chitai-gorod.ru/books/publishers/eksmo", "www.chitai-gorod.ru"},
		{"http://Example.COM/path", "example.com"},
		{"chitai-gorod.ru/catalog", "chitai-gorod.ru"},
		{"://", "unknown"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		if got := SanitizeSource(tt.in); got != tt.want {
			t.Fatalf("SanitizeSource(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestObserversAreSafeBeforeInit(t *testing.T) {
	// Collector observation must be a no-op until Init registers them.
	ObservePage("http://x", "ok")
	ObserveRecord("accepted")
	IncActiveWorkers()
	DecActiveWorkers()
}

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()
	ObservePage("http://x", "ok")
	ObserveRecord("accepted")
	ObserveRecord("rejected")
	IncActiveWorkers()
	DecActiveWorkers()
}
