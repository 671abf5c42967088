package telnet

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Telnet command bytes.
const (
	iac  = 255
	dont = 254
	do   = 253
	wont = 252
	will = 251
	sb   = 250
	se   = 240
)

// codec converts between wire bytes and text in one character encoding.
// Undecodable input is dropped and unencodable output is replaced.
type codec struct {
	enc encoding.Encoding
}

func newCodec(name string) (*codec, error) {
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	return &codec{enc: enc}, nil
}

func (c *codec) decode(raw []byte) string {
	b, err := c.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return ""
	}
	return strings.ReplaceAll(string(b), "\uFFFD", "")
}

func (c *codec) encode(text string) []byte {
	b, err := encoding.ReplaceUnsupported(c.enc.NewEncoder()).Bytes([]byte(text))
	if err != nil {
		return nil
	}
	return b
}

// stripCommands removes telnet negotiation from one line of input along
// with a trailing carriage return.
func stripCommands(raw []byte) []byte {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		b := raw[i]
		if b != iac {
			out = append(out, b)
			continue
		}
		if i+1 >= len(raw) {
			break
		}
		i++
		switch raw[i] {
		case iac:
			out = append(out, iac)
		case will, wont, do, dont:
			i++
		case sb:
			for i+1 < len(raw) && !(raw[i] == iac && raw[i+1] == se) {
				i++
			}
			i++
		}
	}
	for len(out) > 0 && (out[len(out)-1] == '\r' || out[len(out)-1] == 0) {
		out = out[:len(out)-1]
	}
	return out
}
