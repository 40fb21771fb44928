package pkg

import (
	"io"

	"go.uber.org/multierr"
)

// MultiWriter fans every write out to all of its writers. Unlike io.MultiWriter
// it keeps going after a failing writer, so a broken log file does not
// silence stdout.
type MultiWriter struct {
	writers []io.Writer
}

func NewMultiWriter(writers ...io.Writer) *MultiWriter {
	mw := &MultiWriter{}
	for _, w := range writers {
		if w != nil {
			mw.writers = append(mw.writers, w)
		}
	}
	return mw
}

func (mw *MultiWriter) Len() int {
	return len(mw.writers)
}

// Write returns the length of p once at least one writer accepted it.
func (mw *MultiWriter) Write(p []byte) (int, error) {
	var (
		errs    error
		written bool
	)
	for _, w := range mw.writers {
		if _, err := w.Write(p); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		written = true
	}
	if !written {
		return 0, errs
	}
	return len(p), errs
}
