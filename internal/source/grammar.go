package source

import (
	"encoding/json"
	"fmt"
	"strconv"

	gojson "github.com/goccy/go-json"
)

type containerKind uint8

const (
	kindObject containerKind = iota
	kindArray
)

// class groups tokens by the grammar positions they may occupy.
type class uint8

const (
	classScalar class = iota
	classString
	classOpenObject
	classOpenArray
	classCloseObject
	classCloseArray
)

func (c class) String() string {
	switch c {
	case classString:
		return "string"
	case classOpenObject:
		return "'{'"
	case classOpenArray:
		return "'['"
	case classCloseObject:
		return "'}'"
	case classCloseArray:
		return "']'"
	default:
		return "value"
	}
}

type position uint8

const (
	posOpen  position = iota // container just opened
	posKey                   // key read, value due
	posAfter                 // member or element read
)

type frame struct {
	kind containerKind
	pos  position
}

// next validates c against the frame position and returns the separator that
// must precede it and whether it is an object key.
func (f *frame) next(c class) (sep string, key bool, err error) {
	closing := c == classCloseObject || c == classCloseArray
	if f.kind == kindArray {
		switch {
		case c == classCloseArray:
			return "", false, nil
		case closing:
			return "", false, fmt.Errorf("%w: %s closes an array", ErrSyntax, c)
		case f.pos == posOpen:
			f.pos = posAfter
			return "", false, nil
		default:
			return ",", false, nil
		}
	}

	switch f.pos {
	case posOpen:
		switch c {
		case classCloseObject:
			return "", false, nil
		case classString:
			f.pos = posKey
			return "", true, nil
		}
	case posKey:
		if !closing {
			f.pos = posAfter
			return ":", false, nil
		}
	case posAfter:
		switch c {
		case classCloseObject:
			return "", false, nil
		case classString:
			f.pos = posKey
			return ",", true, nil
		}
	}
	return "", false, fmt.Errorf("%w: unexpected %s in object", ErrSyntax, c)
}

// grammar tracks open containers so that strings in key position are reported
// as KindKey. When checkSeparators is set it also verifies the ',' and ':'
// bytes found before each token, for decoders that skip them silently.
type grammar struct {
	stack           []frame
	checkSeparators bool
}

func (g *grammar) step(c class, sep string) (key bool, err error) {
	want := ""
	if n := len(g.stack); n > 0 {
		want, key, err = g.stack[n-1].next(c)
		if err != nil {
			return false, err
		}
	} else if c == classCloseObject || c == classCloseArray {
		return false, fmt.Errorf("%w: unexpected %s", ErrSyntax, c)
	}
	if g.checkSeparators && sep != want {
		return false, fmt.Errorf("%w: found %q before %s, want %q", ErrSyntax, sep, c, want)
	}

	switch c {
	case classOpenObject:
		g.stack = append(g.stack, frame{kind: kindObject})
	case classOpenArray:
		g.stack = append(g.stack, frame{kind: kindArray})
	case classCloseObject, classCloseArray:
		g.stack = g.stack[:len(g.stack)-1]
	}
	return key, nil
}

// token classifies a value returned by a decoder's Token method.
func (g *grammar) token(v any, sep string, offset int64) (Token, error) {
	var (
		tok Token
		c   class
	)
	switch v := v.(type) {
	case json.Delim:
		tok.Kind, c = delim(rune(v))
	case gojson.Delim:
		tok.Kind, c = delim(rune(v))
	case string:
		tok, c = Token{Kind: KindString, String: v}, classString
	case bool:
		tok.Kind, tok.Bool = KindBool, v
	case json.Number:
		tok.Kind, tok.Number = KindNumber, string(v)
	case gojson.Number:
		tok.Kind, tok.Number = KindNumber, string(v)
	case float64:
		tok.Kind, tok.Number = KindNumber, strconv.FormatFloat(v, 'g', -1, 64)
	case nil:
		tok.Kind = KindNull
	default:
		return Token{}, fmt.Errorf("%w: %T at offset %d", ErrMalformedToken, v, offset)
	}
	if tok.Kind < 0 {
		return Token{}, fmt.Errorf("%w: delimiter %q at offset %d", ErrMalformedToken, v, offset)
	}

	key, err := g.step(c, sep)
	if err != nil {
		return Token{}, fmt.Errorf("%w at offset %d", err, offset)
	}
	if key {
		tok.Kind = KindKey
	}
	tok.Offset = offset
	return tok, nil
}

func delim(r rune) (Kind, class) {
	switch r {
	case '{':
		return KindBeginObject, classOpenObject
	case '}':
		return KindEndObject, classCloseObject
	case '[':
		return KindBeginArray, classOpenArray
	case ']':
		return KindEndArray, classCloseArray
	default:
		return -1, classScalar
	}
}
