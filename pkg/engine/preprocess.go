package engine

import "strings"

// kwPrefix marks string literals that started life as :keywords.
const kwPrefix = "__kw_"

// preprocessSource rewrites assembly source into something zygomys reads:
//
//   - :outline becomes the string "__kw_outline", so builtins can tell
//     keywords from positional arguments without global symbols;
//   - kebab-case identifiers become snake_case, since zygomys reads a
//     hyphen as minus;
//   - ; comments become // comments.
//
// String literals ("..." and `...`) pass through untouched. := and a minus
// in front of a number or a space are left alone.
func preprocessSource(src string) string {
	var out strings.Builder
	out.Grow(len(src) + len(src)/4)

	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '"' || c == '`':
			end := stringEnd(src, i)
			out.WriteString(src[i:end])
			i = end

		case c == ';':
			for i < len(src) && src[i] == ';' {
				i++
			}
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				end = len(src) - i
			}
			out.WriteString("//")
			out.WriteString(src[i : i+end])
			i += end

		case c == ':' && i+1 < len(src) && isLetter(src[i+1]):
			j := i + 1
			for j < len(src) && isKeywordChar(src[j]) {
				j++
			}
			out.WriteByte('"')
			out.WriteString(kwPrefix)
			out.WriteString(src[i+1 : j])
			out.WriteByte('"')
			i = j

		case c == '-' && i > 0 && i+1 < len(src) && isIdentChar(src[i-1]) && isLetter(src[i+1]):
			out.WriteByte('_')
			i++

		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// stringEnd returns the index just past the literal opening at src[start].
// Double-quoted literals honour backslash escapes; an unterminated literal
// runs to the end of input.
func stringEnd(src string, start int) int {
	quote := src[start]
	i := start + 1
	for i < len(src) {
		switch {
		case quote == '"' && src[i] == '\\' && i+1 < len(src):
			i += 2
		case src[i] == quote:
			return i + 1
		default:
			i++
		}
	}
	return len(src)
}

func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentChar(c byte) bool { return isLetter(c) || isDigit(c) || c == '_' }

func isKeywordChar(c byte) bool { return isIdentChar(c) || c == '-' }
