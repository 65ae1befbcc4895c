package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAllocate(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	l := Locator{Dir: "/var/tmp", Now: func() time.Time { return at }}

	got := l.Allocate()
	want := filepath.Join("/var/tmp", "label_1700000000123.pdf")
	if got != want {
		t.Errorf("Allocate() = %q, want %q", got, want)
	}
}

func TestAllocateDefaults(t *testing.T) {
	got := Locator{}.Allocate()

	if filepath.Dir(got) != filepath.Clean(os.TempDir()) {
		t.Errorf("dir = %q, want %q", filepath.Dir(got), os.TempDir())
	}
	base := filepath.Base(got)
	if !strings.HasPrefix(base, DefaultPrefix) || !strings.HasSuffix(base, ".pdf") {
		t.Errorf("base = %q, want %s<millis>.pdf", base, DefaultPrefix)
	}
}

func TestAllocateDistinctMillis(t *testing.T) {
	ms := int64(1000)
	l := Locator{Dir: t.TempDir(), Prefix: "x_", Now: func() time.Time {
		ms++
		return time.UnixMilli(ms)
	}}

	a, b := l.Allocate(), l.Allocate()
	if a == b {
		t.Errorf("Allocate() returned %q twice", a)
	}
	if filepath.Base(a) != "x_1001.pdf" {
		t.Errorf("first = %q, want x_1001.pdf", filepath.Base(a))
	}
}

func TestAllocateDoesNotCreate(t *testing.T) {
	path := Locator{Dir: t.TempDir()}.Allocate()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Allocate() created %q (stat err %v)", path, err)
	}
}

func TestMonotonicClock(t *testing.T) {
	frozen := time.UnixMilli(5000)
	clock := MonotonicClock(func() time.Time { return frozen })
	l := Locator{Dir: "/tmp", Now: clock}

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		p := l.Allocate()
		if seen[p] {
			t.Fatalf("Allocate() repeated %q", p)
		}
		seen[p] = true
	}
	if got := clock().UnixMilli(); got != 5005 {
		t.Errorf("clock() = %d, want 5005", got)
	}
}
