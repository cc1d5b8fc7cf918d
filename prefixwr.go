package pymk

import (
	"bytes"
	"io"
)

// PrefixWriter starts every output line with a fixed prefix. The pymk
// command uses it to tag the interleaved output of the workflow tools with
// the target that runs them.
type PrefixWriter struct {
	w      io.Writer
	prefix []byte
	inLine bool // not at start of line
}

func NewPrefixWriter(w io.Writer, prefix string) *PrefixWriter {
	return &PrefixWriter{w: w, prefix: []byte(prefix)}
}

// Reset makes pw consider itself at the start of a line again.
func (pw *PrefixWriter) Reset() { pw.inLine = false }

func (pw *PrefixWriter) Write(p []byte) (n int, err error) {
	for len(p) > 0 {
		if !pw.inLine {
			if _, err := pw.w.Write(pw.prefix); err != nil {
				return n, err
			}
			pw.inLine = true
		}
		nlIdx := bytes.IndexByte(p, '\n')
		if nlIdx < 0 {
			m, err := pw.w.Write(p)
			return n + m, err
		}
		nlIdx++
		m, err := pw.w.Write(p[:nlIdx])
		n += m
		if err != nil {
			return n, err
		}
		pw.inLine = false
		p = p[nlIdx:]
	}
	return n, nil
}
