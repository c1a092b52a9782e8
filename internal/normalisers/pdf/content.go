package pdf

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

// Content stream token kinds.
type tokenKind int

const (
	tokOther tokenKind = iota
	tokNumber
	tokString
	tokName
	tokArray
	tokOperator
)

type token struct {
	kind  tokenKind
	text  string
	num   float64
	raw   []byte
	items []token
}

// textFromContent returns the text shown by a decoded page content stream.
// Text objects on different baselines become separate lines. Glyphs from
// fonts without a byte encoding (Identity-H CID fonts) are not decoded.
func textFromContent(content []byte) string {
	var (
		lx       = &lexer{data: content}
		lines    []string
		line     strings.Builder
		operands []token

		lineY     float64 // baseline of the current text line matrix
		printedY  float64 // baseline of the last shown text
		printed   bool
		newline   bool // T*, ' or " forces a line break
		movedX    bool
		inTextObj bool
	)

	flush := func() {
		if s := strings.TrimRight(line.String(), " \t"); s != "" {
			lines = append(lines, s)
		}
		line.Reset()
	}
	show := func(s string) {
		if printed && (newline || lineY != printedY) {
			flush()
		} else if printed && movedX && line.Len() > 0 && !strings.HasSuffix(line.String(), " ") {
			line.WriteByte(' ')
		}
		line.WriteString(s)
		printed, printedY = true, lineY
		newline, movedX = false, false
	}

	for {
		tok, ok := lx.next()
		if !ok {
			break
		}
		if tok.kind != tokOperator {
			operands = append(operands, tok)
			continue
		}

		switch tok.text {
		case "BT":
			inTextObj = true
			lineY = 0
		case "ET":
			inTextObj = false
		case "Td", "TD":
			if tx, ty, ok := lastTwoNumbers(operands); ok {
				lineY += ty
				movedX = movedX || tx != 0
			}
		case "Tm":
			if len(operands) >= 6 && operands[len(operands)-1].kind == tokNumber {
				lineY = operands[len(operands)-1].num
				movedX = true
			}
		case "T*":
			newline = true
		case "Tj":
			if s, ok := lastString(operands); ok && inTextObj {
				show(s)
			}
		case "'", "\"":
			newline = true
			if s, ok := lastString(operands); ok && inTextObj {
				show(s)
			}
		case "TJ":
			if len(operands) > 0 && operands[len(operands)-1].kind == tokArray && inTextObj {
				show(textFromArray(operands[len(operands)-1].items))
			}
		case "ID":
			lx.skipInlineImage()
		}
		operands = operands[:0]
	}
	flush()
	return strings.Join(lines, "\n")
}

// textFromArray joins the strings of a TJ array. Large negative
// adjustments are rendered as word spaces.
func textFromArray(items []token) string {
	var b strings.Builder
	for _, it := range items {
		switch it.kind {
		case tokString:
			b.WriteString(decodeString(it.raw))
		case tokNumber:
			if it.num < -200 && b.Len() > 0 && !strings.HasSuffix(b.String(), " ") {
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}

func lastString(operands []token) (string, bool) {
	if len(operands) == 0 || operands[len(operands)-1].kind != tokString {
		return "", false
	}
	return decodeString(operands[len(operands)-1].raw), true
}

func lastTwoNumbers(operands []token) (float64, float64, bool) {
	n := len(operands)
	if n < 2 || operands[n-2].kind != tokNumber || operands[n-1].kind != tokNumber {
		return 0, 0, false
	}
	return operands[n-2].num, operands[n-1].num, true
}

// decodeString converts a PDF string to UTF-8. Strings with a UTF-16BE byte
// order mark are decoded as UTF-16; everything else as WinAnsi (Windows-1252).
func decodeString(raw []byte) string {
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		body := raw[2:]
		units := make([]uint16, 0, len(body)/2)
		for i := 0; i+1 < len(body); i += 2 {
			units = append(units, uint16(body[i])<<8|uint16(body[i+1]))
		}
		return string(utf16.Decode(units))
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

// lexer tokenises a PDF content stream.
type lexer struct {
	data []byte
	pos  int
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

func isDelimiter(c byte) bool {
	return strings.IndexByte("()<>[]{}/%", c) >= 0
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case isSpace(c):
			l.pos++
		case c == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) regular() string {
	start := l.pos
	for l.pos < len(l.data) && !isSpace(l.data[l.pos]) && !isDelimiter(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

func (l *lexer) next() (token, bool) {
	l.skipSpace()
	if l.pos >= len(l.data) {
		return token{}, false
	}

	c := l.data[l.pos]
	switch c {
	case '(':
		return token{kind: tokString, raw: l.literal()}, true
	case '<':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
			l.pos += 2
			return token{kind: tokOther, text: "<<"}, true
		}
		return token{kind: tokString, raw: l.hex()}, true
	case '>':
		l.pos++
		if l.pos < len(l.data) && l.data[l.pos] == '>' {
			l.pos++
		}
		return token{kind: tokOther, text: ">>"}, true
	case '[':
		l.pos++
		var items []token
		for {
			l.skipSpace()
			if l.pos >= len(l.data) {
				break
			}
			if l.data[l.pos] == ']' {
				l.pos++
				break
			}
			it, ok := l.next()
			if !ok {
				break
			}
			items = append(items, it)
		}
		return token{kind: tokArray, items: items}, true
	case ']', ')', '{', '}':
		l.pos++
		return token{kind: tokOther, text: string(c)}, true
	case '/':
		l.pos++
		return token{kind: tokName, text: l.regular()}, true
	}

	word := l.regular()
	if word == "" {
		l.pos++
		return token{kind: tokOther}, true
	}
	if c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9') {
		if n, err := strconv.ParseFloat(word, 64); err == nil {
			return token{kind: tokNumber, text: word, num: n}, true
		}
	}
	return token{kind: tokOperator, text: word}, true
}

// literal reads a parenthesised string, resolving escapes and nesting.
func (l *lexer) literal() []byte {
	l.pos++ // (
	var out []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '\\':
			if l.pos >= len(l.data) {
				return out
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '7'; i++ {
						v = v*8 + int(l.data[l.pos]-'0')
						l.pos++
					}
					out = append(out, byte(v))
				} else {
					out = append(out, e)
				}
			}
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				return out
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return out
}

// hex reads a <...> hex string.
func (l *lexer) hex() []byte {
	l.pos++ // <
	var digits []byte
	for l.pos < len(l.data) && l.data[l.pos] != '>' {
		if c := l.data[l.pos]; !isSpace(c) {
			digits = append(digits, c)
		}
		l.pos++
	}
	l.pos++ // >
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, 0, len(digits)/2)
	for i := 0; i+1 < len(digits); i += 2 {
		v, err := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		if err != nil {
			continue
		}
		out = append(out, byte(v))
	}
	return out
}

// skipInlineImage moves past binary inline image data up to the EI operator.
func (l *lexer) skipInlineImage() {
	for l.pos < len(l.data) {
		i := bytes.Index(l.data[l.pos:], []byte("EI"))
		if i < 0 {
			l.pos = len(l.data)
			return
		}
		at := l.pos + i
		before := at == 0 || isSpace(l.data[at-1])
		after := at+2 >= len(l.data) || isSpace(l.data[at+2])
		l.pos = at + 2
		if before && after {
			return
		}
	}
}
