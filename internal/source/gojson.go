package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"
)

// goSource is a Tokenizer backed by goccy/go-json. The go-json stream skips
// ',' and ':' without checking them, so the bytes between tokens are recorded
// and the separators verified against the grammar.
type goSource struct {
	dec        *gojson.Decoder
	tape       *tape
	grammar    grammar
	lastOffset int64
}

// NewGoJSON wraps an io.Reader into a Tokenizer backed by goccy/go-json.
func NewGoJSON(r io.Reader) Tokenizer {
	t := &tape{r: r}
	dec := gojson.NewDecoder(t)
	dec.UseNumber()
	return &goSource{
		dec:        dec,
		tape:       t,
		grammar:    grammar{checkSeparators: true},
		lastOffset: -1,
	}
}

// NewGoJSONBytes wraps a byte slice into a Tokenizer backed by goccy/go-json.
func NewGoJSONBytes(b []byte) Tokenizer { return NewGoJSON(bytes.NewReader(b)) }

func (s *goSource) NextToken() (Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			if rest := s.tape.rest(); len(rest) > 0 {
				return Token{}, fmt.Errorf("%w: trailing %q at offset %d", ErrSyntax, rest, s.tape.base)
			}
			return Token{}, io.EOF
		}
		return Token{}, err
	}
	s.lastOffset = s.dec.InputOffset()
	return s.grammar.token(tok, s.tape.separators(s.lastOffset), s.lastOffset)
}

func (s *goSource) Location() int64 { return s.lastOffset }

// tape records what the decoder reads so that the bytes between two tokens
// can be inspected once the second token is returned.
type tape struct {
	r    io.Reader
	buf  []byte
	base int64 // input offset of buf[0]
}

func (t *tape) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	t.buf = append(t.buf, p[:n]...)
	return n, err
}

// separators returns the ',' and ':' bytes that lead the span ending at the
// input offset end, then drops the span.
func (t *tape) separators(end int64) string {
	n := min(max(int(end-t.base), 0), len(t.buf))
	var sep []byte
	for _, c := range t.buf[:n] {
		if c == ',' || c == ':' {
			sep = append(sep, c)
			continue
		}
		if !isSpace(c) {
			break
		}
	}
	t.buf = t.buf[:copy(t.buf, t.buf[n:])]
	t.base += int64(n)
	return string(sep)
}

// rest returns the recorded bytes past the last token, without whitespace.
func (t *tape) rest() []byte {
	return bytes.TrimLeft(t.buf, " \t\r\n")
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
