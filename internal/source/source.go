// Package source adapts JSON decoders into pull-based token streams.
//
// A Tokenizer reports one low-level token per call and keeps no more state than
// the container stack needed to tell object keys apart from string values.
package source

import (
	"fmt"
	"io"
	"sort"
)

// Kind represents token kinds reported by a tokenizer.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindBeginObject:
		return "BeginObject"
	case KindEndObject:
		return "EndObject"
	case KindBeginArray:
		return "BeginArray"
	case KindEndArray:
		return "EndArray"
	case KindKey:
		return "Key"
	case KindString:
		return "String"
	case KindNumber:
		return "Number"
	case KindBool:
		return "Bool"
	case KindNull:
		return "Null"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string // key or string value
	Number string // textual number, interpretation left to consumers
	Bool   bool
	Offset int64 // -1 when the decoder cannot report it
}

// Tokenizer is the pull interface consumed by the producers.
// NextToken returns io.EOF once the input is exhausted.
type Tokenizer interface {
	NextToken() (Token, error)
	Location() int64
}

// Driver names accepted by New.
const (
	DriverJSON   = "encoding/json"
	DriverGoJSON = "go-json"
)

var drivers = map[string]func(io.Reader) Tokenizer{
	DriverJSON:   NewJSON,
	DriverGoJSON: NewGoJSON,
}

// New returns a tokenizer for r using the named driver. An empty name selects
// the encoding/json driver.
func New(name string, r io.Reader) (Tokenizer, error) {
	if name == "" {
		name = DriverJSON
	}
	if err := CheckDriver(name); err != nil {
		return nil, err
	}
	return drivers[name](r), nil
}

// CheckDriver reports ErrUnknownDriver when name is not registered.
func CheckDriver(name string) error {
	if name == "" {
		return nil
	}
	if _, ok := drivers[name]; !ok {
		return fmt.Errorf("%w: %q (available: %v)", ErrUnknownDriver, name, Drivers())
	}
	return nil
}

// Drivers lists the registered driver names in sorted order.
func Drivers() []string {
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
