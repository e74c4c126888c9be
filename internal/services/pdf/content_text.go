package pdf

import (
	"encoding/hex"
	"strings"
)

// decodeContentText pulls readable text out of a decoded PDF content stream.
// pdfcpu extracts raw content streams rather than text, so the text-showing
// operators (Tj, TJ, ', ") are decoded here: literal and hex strings are
// collected in stream order, with line breaks on the text-positioning
// operators (Td, TD, T*) and the next-line show operators.
func decodeContentText(content []byte) string {
	buf := make([]byte, 0, len(content))
	var pending []string

	// show appends the pending strings followed by a word separator
	show := func() {
		for _, s := range pending {
			buf = append(buf, s...)
		}
		pending = pending[:0]
		if len(buf) > 0 && buf[len(buf)-1] != ' ' && buf[len(buf)-1] != '\n' {
			buf = append(buf, ' ')
		}
	}

	// newline replaces any trailing word separator with a line break
	newline := func() {
		for len(buf) > 0 && buf[len(buf)-1] == ' ' {
			buf = buf[:len(buf)-1]
		}
		if len(buf) > 0 && buf[len(buf)-1] != '\n' {
			buf = append(buf, '\n')
		}
	}

	i := 0
	n := len(content)
	for i < n {
		c := content[i]
		switch {
		case c == '(':
			s, next := readLiteralString(content, i)
			pending = append(pending, s)
			i = next
		case c == '<' && i+1 < n && content[i+1] != '<':
			s, next := readHexString(content, i)
			pending = append(pending, s)
			i = next
		case c == '%':
			// Comment runs to end of line
			for i < n && content[i] != '\n' && content[i] != '\r' {
				i++
			}
		default:
			op, next := readToken(content, i)
			switch op {
			case "Tj", "TJ":
				show()
			case "'", "\"":
				newline()
				show()
			case "Td", "TD", "T*":
				// Positioning operators between shows imply a line break.
				// Pending strings without a show operator are dropped: they
				// belong to non-text operators.
				pending = pending[:0]
				newline()
			}
			i = next
		}
	}

	return strings.TrimSpace(string(buf))
}

// readLiteralString parses a PDF literal string starting at the '(' in
// content[start]. Returns the decoded string and the index after the
// closing ')'.
func readLiteralString(content []byte, start int) (string, int) {
	var sb strings.Builder
	depth := 0
	i := start
	n := len(content)

	for i < n {
		c := content[i]
		switch c {
		case '\\':
			if i+1 >= n {
				return sb.String(), n
			}
			i++
			switch e := content[i]; e {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'b', 'f':
				// Backspace and form feed carry no retrieval value
			case '(', ')', '\\':
				sb.WriteByte(e)
			case '\n':
				// Line continuation
			default:
				if e >= '0' && e <= '7' {
					// Up to three octal digits
					val := int(e - '0')
					for k := 0; k < 2 && i+1 < n && content[i+1] >= '0' && content[i+1] <= '7'; k++ {
						i++
						val = val*8 + int(content[i]-'0')
					}
					sb.WriteByte(byte(val))
				} else {
					sb.WriteByte(e)
				}
			}
			i++
		case '(':
			depth++
			if depth > 1 {
				sb.WriteByte(c)
			}
			i++
		case ')':
			depth--
			if depth == 0 {
				return sb.String(), i + 1
			}
			sb.WriteByte(c)
			i++
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String(), n
}

// readHexString parses a PDF hex string starting at the '<' in
// content[start]. Returns the decoded string and the index after '>'.
func readHexString(content []byte, start int) (string, int) {
	i := start + 1
	n := len(content)
	var digits strings.Builder

	for i < n && content[i] != '>' {
		c := content[i]
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') {
			digits.WriteByte(c)
		}
		i++
	}
	if i < n {
		i++ // consume '>'
	}

	hexStr := digits.String()
	if len(hexStr)%2 != 0 {
		hexStr += "0" // trailing zero per the PDF spec
	}
	decoded, err := hex.DecodeString(hexStr)
	if err != nil {
		return "", i
	}
	return string(decoded), i
}

// readToken reads the next whitespace-delimited token starting at or after
// content[start]. Returns the token and the index after it.
func readToken(content []byte, start int) (string, int) {
	n := len(content)
	i := start

	for i < n && isWhitespace(content[i]) {
		i++
	}
	if i >= n {
		return "", n
	}

	// Single-character delimiters are tokens on their own
	if c := content[i]; c == '[' || c == ']' || c == '/' || c == '\'' || c == '"' {
		return string(c), i + 1
	}

	begin := i
	for i < n && !isWhitespace(content[i]) && !isDelimiter(content[i]) {
		i++
	}
	if i == begin {
		i++
	}
	return string(content[begin:i]), i
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == 0
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}
