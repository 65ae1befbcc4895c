// Package output allocates paths for generated PDFs.
//
// Generated PDFs outlive the invocation that produced them: the spooler or
// viewer reads them after the pipeline has returned. Nothing in this
// package removes them.
package output

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// DefaultPrefix is the file name prefix of generated PDFs.
const DefaultPrefix = "label_"

// Locator builds "<Dir>/<Prefix><unix millis>.pdf" paths.
//
// Two allocations within the same millisecond return the same path unless
// Now is a [MonotonicClock].
type Locator struct {
	Dir    string           // os.TempDir() when empty
	Prefix string           // DefaultPrefix when empty
	Now    func() time.Time // time.Now when nil
}

// Allocate returns the path for a new PDF. The file is not created.
func (l Locator) Allocate() string {
	dir := l.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	prefix := l.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	name := prefix + strconv.FormatInt(now().UnixMilli(), 10) + ".pdf"
	return filepath.Join(dir, name)
}

// MonotonicClock wraps now so that successive calls never report the same
// millisecond twice. Concurrent jobs sharing a Locator then get distinct paths.
func MonotonicClock(now func() time.Time) func() time.Time {
	var (
		mu   sync.Mutex
		last int64
	)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		ms := now().UnixMilli()
		if ms <= last {
			ms = last + 1
		}
		last = ms
		return time.UnixMilli(ms)
	}
}
