package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseType parses the textual form produced by Type.String. The
// reconstruction config stores types as strings, so retyping a
// recorded object round-trips through this parser.
func ParseType(s string) (Type, error) {
	p := &typeParser{src: s}
	t, err := p.parse()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("ir: trailing characters in type %q", s)
	}
	return t, nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) parse() (Type, error) {
	t, err := p.parseBase()
	if err != nil {
		return nil, err
	}
	for p.pos < len(p.src) && p.src[p.pos] == '*' {
		p.pos++
		t = Ptr(t)
	}
	return t, nil
}

func (p *typeParser) parseBase() (Type, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("ir: empty type in %q", p.src)
	}
	if p.src[p.pos] == '{' {
		p.pos++
		var elems []Type
		for {
			elem, err := p.parse()
			if err != nil {
				return nil, err
			}
			elems = append(elems, elem)
			p.skipSpace()
			if p.pos < len(p.src) && p.src[p.pos] == ',' {
				p.pos++
				continue
			}
			break
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != '}' {
			return nil, fmt.Errorf("ir: unterminated aggregate type in %q", p.src)
		}
		p.pos++
		return Aggregate(elems...), nil
	}

	start := p.pos
	for p.pos < len(p.src) && isWordChar(p.src[p.pos]) {
		p.pos++
	}
	word := p.src[start:p.pos]
	if word == "" {
		return nil, fmt.Errorf("ir: invalid type %q", p.src)
	}
	if len(word) > 1 && (word[0] == 'i' || word[0] == 'f') {
		if bits, err := strconv.ParseUint(word[1:], 10, 16); err == nil {
			if bits == 0 {
				return nil, fmt.Errorf("ir: zero width type %q", word)
			}
			if word[0] == 'i' {
				return Int(uint(bits)), nil
			}
			if !ValidFloatWidth(uint(bits)) {
				return nil, fmt.Errorf("ir: unsupported floating-point width in %q", word)
			}
			return Float(uint(bits)), nil
		}
	}
	return &OpaqueType{Name: word}, nil
}

func (p *typeParser) skipSpace() {
	p.pos += len(p.src[p.pos:]) - len(strings.TrimLeft(p.src[p.pos:], " \t"))
}

func isWordChar(c byte) bool {
	return c == '_' || c == '.' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
