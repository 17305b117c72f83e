package boundre

import (
	"strconv"
	"strings"
)

// ReplaceAllString replaces all matches of the regular expression with the replacement string.
// Inside repl, $ signs are interpreted as in Expand, so for instance $1 represents
// the text of the first submatch.
func (re *Regexp) ReplaceAllString(src, repl string) string {
	return re.replaceAll(src, func(b *strings.Builder, caps []int) {
		re.expand(b, repl, submatchStrings(src, caps))
	})
}

// ReplaceAllLiteralString replaces all matches with the replacement string literally
// (no template expansion).
func (re *Regexp) ReplaceAllLiteralString(src, repl string) string {
	return re.replaceAll(src, func(b *strings.Builder, _ []int) {
		b.WriteString(repl)
	})
}

// ReplaceAllStringFunc replaces all matches using a function to generate replacement text.
func (re *Regexp) ReplaceAllStringFunc(src string, repl func(string) string) string {
	return re.replaceAll(src, func(b *strings.Builder, caps []int) {
		b.WriteString(repl(src[caps[0]:caps[1]]))
	})
}

// ReplaceAll replaces all matches in a byte slice.
func (re *Regexp) ReplaceAll(src, repl []byte) []byte {
	return []byte(re.ReplaceAllString(string(src), string(repl)))
}

// ReplaceAllLiteral replaces all matches in a byte slice literally.
func (re *Regexp) ReplaceAllLiteral(src, repl []byte) []byte {
	return []byte(re.ReplaceAllLiteralString(string(src), string(repl)))
}

// ReplaceAllFunc replaces all matches in a byte slice using a function.
func (re *Regexp) ReplaceAllFunc(src []byte, repl func([]byte) []byte) []byte {
	return []byte(re.ReplaceAllStringFunc(string(src), func(s string) string {
		return string(repl([]byte(s)))
	}))
}

// Expand appends template to dst with $1, ${1}, $name and ${name} replaced by
// the corresponding entries of match, which is laid out as FindStringSubmatch
// returns it. $$ is a literal dollar sign.
func (re *Regexp) Expand(dst []byte, template string, match []string) []byte {
	var b strings.Builder
	re.expand(&b, template, match)
	return append(dst, b.String()...)
}

func (re *Regexp) replaceAll(src string, write func(*strings.Builder, []int)) string {
	var result strings.Builder
	lastEnd := 0
	_ = re.each(NewStringInput(src), -1, 0, func(caps []int) bool {
		result.WriteString(src[lastEnd:caps[0]])
		write(&result, caps)
		lastEnd = caps[1]
		return true
	})
	result.WriteString(src[lastEnd:])
	return result.String()
}

func (re *Regexp) expand(b *strings.Builder, template string, captures []string) {
	group := func(name string) string {
		idx, err := strconv.Atoi(name)
		if err != nil {
			idx = re.SubexpIndex(name)
		}
		if idx < 0 || idx >= len(captures) {
			return ""
		}
		return captures[idx]
	}

	for i := 0; i < len(template); i++ {
		if template[i] != '$' || i+1 >= len(template) {
			b.WriteByte(template[i])
			continue
		}
		i++
		switch {
		case template[i] == '$':
			b.WriteByte('$')
		case template[i] == '{':
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				// Unclosed ${ is literal text.
				b.WriteString("${")
				continue
			}
			b.WriteString(group(template[i+1 : i+end]))
			i += end
		case template[i] >= '0' && template[i] <= '9':
			b.WriteString(group(template[i : i+1]))
		case isIdentChar(template[i]):
			start := i
			for i < len(template) && isIdentChar(template[i]) {
				i++
			}
			b.WriteString(group(template[start:i]))
			i--
		default:
			b.WriteByte('$')
			b.WriteByte(template[i])
		}
	}
}

// isIdentChar returns true if c is a valid identifier character (letter, digit, underscore).
func isIdentChar(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_'
}
