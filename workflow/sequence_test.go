package workflow

import (
	"sync"
	"testing"

	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/models"
)

func TestFormatDocumentNumber(t *testing.T) {
	cases := []struct {
		prefix  string
		dateKey string
		value   int
		want    string
	}{
		{"INV", "20250307", 1, "INV-20250307-0001"},
		{"INV", "20250307", 42, "INV-20250307-0042"},
		{"RET", "20251231", 9999, "RET-20251231-9999"},
		{"INV", "20250101", 10000, "INV-20250101-10000"},
	}
	for _, tc := range cases {
		if got := formatDocumentNumber(tc.prefix, tc.dateKey, tc.value); got != tc.want {
			t.Fatalf("format(%s, %s, %d) = %q, want %q", tc.prefix, tc.dateKey, tc.value, got, tc.want)
		}
	}
}

func TestDocumentKindDefaultPrefix(t *testing.T) {
	if got := models.DocumentKindInvoice.DefaultPrefix(); got != "INV" {
		t.Fatalf("invoice prefix = %q", got)
	}
	if got := models.DocumentKindReturn.DefaultPrefix(); got != "RET" {
		t.Fatalf("return prefix = %q", got)
	}
}

// fakeSequenceTable mimics the database contract the allocator relies on: a
// row lock around read-increment-write plus a unique (kind, dateKey) index
// that makes one of two racing fresh-row inserts lose.
type fakeSequenceTable struct {
	mu   sync.Mutex
	rows map[string]int
}

func (f *fakeSequenceTable) allocate(kind, dateKey string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := kind + "|" + dateKey
	f.rows[key]++
	return f.rows[key]
}

func TestSequenceAllocation_ConcurrentNoDuplicates(t *testing.T) {
	table := &fakeSequenceTable{rows: map[string]int{}}

	const workers = 50
	numbers := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := table.allocate("invoice", "20250307")
			numbers <- formatDocumentNumber("INV", "20250307", n)
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[string]bool{}
	for n := range numbers {
		if seen[n] {
			t.Fatalf("duplicate number issued: %s", n)
		}
		seen[n] = true
	}
	if len(seen) != workers {
		t.Fatalf("issued %d distinct numbers, want %d", len(seen), workers)
	}
	// The sequence is dense: every value 1..workers was handed out.
	for i := 1; i <= workers; i++ {
		want := formatDocumentNumber("INV", "20250307", i)
		if !seen[want] {
			t.Fatalf("missing number %s", want)
		}
	}
}

func TestSequenceAllocation_IndependentPerKindAndDay(t *testing.T) {
	table := &fakeSequenceTable{rows: map[string]int{}}
	pairs := [][2]string{
		{"invoice", "20250307"},
		{"invoice", "20250308"},
		{"return", "20250307"},
	}
	for _, p := range pairs {
		for i := 1; i <= 3; i++ {
			if got := table.allocate(p[0], p[1]); got != i {
				t.Fatalf("%v allocation %d = %d", p, i, got)
			}
		}
	}
}
