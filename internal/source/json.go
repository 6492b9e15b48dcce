package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

type jsonSource struct {
	dec        *json.Decoder
	grammar    grammar
	lastOffset int64
}

// NewJSON wraps an io.Reader into a Tokenizer backed by encoding/json.
func NewJSON(r io.Reader) Tokenizer {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &jsonSource{dec: dec, lastOffset: -1}
}

// NewJSONBytes wraps a byte slice into a Tokenizer backed by encoding/json.
func NewJSONBytes(b []byte) Tokenizer { return NewJSON(bytes.NewReader(b)) }

func (s *jsonSource) NextToken() (Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Token{}, io.EOF
		}
		return Token{}, err
	}
	s.lastOffset = s.dec.InputOffset()
	return s.grammar.token(tok, "", s.lastOffset)
}

func (s *jsonSource) Location() int64 { return s.lastOffset }
