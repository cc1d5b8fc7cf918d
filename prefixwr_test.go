package pymk

import (
	"bytes"
	"fmt"
	"os"
	"testing"
)

func ExamplePrefixWriter() {
	pw := NewPrefixWriter(os.Stdout, "sdist: ")
	fmt.Fprint(pw, "running sdist\nwriting ")
	fmt.Fprint(pw, "manifest\n")
	// Output:
	// sdist: running sdist
	// sdist: writing manifest
}

func TestPrefixWriter_partialLines(t *testing.T) {
	var buf bytes.Buffer
	pw := NewPrefixWriter(&buf, "> ")
	for _, chunk := range []string{"a", "b\nc", "\n", "\nd"} {
		if _, err := pw.Write([]byte(chunk)); err != nil {
			t.Fatal(err)
		}
	}
	const want = "> ab\n> c\n> \n> d"
	if got := buf.String(); got != want {
		t.Errorf("wrote %q, want %q", got, want)
	}
}

func TestPrefixWriter_reset(t *testing.T) {
	var buf bytes.Buffer
	pw := NewPrefixWriter(&buf, "> ")
	fmt.Fprint(pw, "no newline")
	pw.Reset()
	fmt.Fprint(pw, "fresh line")
	const want = "> no newline> fresh line"
	if got := buf.String(); got != want {
		t.Errorf("wrote %q, want %q", got, want)
	}
}
