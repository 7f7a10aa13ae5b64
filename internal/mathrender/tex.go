package mathrender

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const maxGroupDepth = 64

var (
	errEmpty           = errors.New("empty expression")
	errMissingArgument = errors.New("missing argument")
)

// typeset converts a TeX expression to Unicode text.
func typeset(expr string) (string, error) {
	p := &texParser{src: []rune(strings.TrimSpace(expr))}
	if len(p.src) == 0 {
		return "", errEmpty
	}
	out, err := p.sequence(false)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

type texParser struct {
	src   []rune
	pos   int
	depth int
}

// sequence typesets tokens until the end of input or, inside a group, until
// the closing brace, which is left for the caller to consume.
func (p *texParser) sequence(inGroup bool) (string, error) {
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '}':
			if !inGroup {
				return "", fmt.Errorf("unbalanced '}' at offset %d", p.pos)
			}
			return b.String(), nil
		case '{':
			g, err := p.group()
			if err != nil {
				return "", err
			}
			b.WriteString(g)
		case '^', '_':
			p.pos++
			arg, err := p.argument()
			if err != nil {
				return "", fmt.Errorf("%c at offset %d: %w", c, p.pos-1, err)
			}
			b.WriteString(script(arg, c == '^'))
		case '\\':
			s, err := p.command()
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		case '~', '&':
			b.WriteByte(' ')
			p.pos++
		default:
			b.WriteRune(c)
			p.pos++
		}
	}
	if inGroup {
		return "", errors.New("missing '}'")
	}
	return b.String(), nil
}

func (p *texParser) group() (string, error) {
	p.pos++ // '{'
	p.depth++
	if p.depth > maxGroupDepth {
		return "", fmt.Errorf("groups nested deeper than %d", maxGroupDepth)
	}
	s, err := p.sequence(true)
	if err != nil {
		return "", err
	}
	p.pos++ // '}'
	p.depth--
	return s, nil
}

// rawGroup returns the source text of a brace group without typesetting it.
func (p *texParser) rawGroup() (string, error) {
	p.skipSpaces()
	if p.pos >= len(p.src) || p.src[p.pos] != '{' {
		return "", errMissingArgument
	}
	start := p.pos + 1
	depth := 0
	for ; p.pos < len(p.src); p.pos++ {
		switch p.src[p.pos] {
		case '\\':
			p.pos++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				s := string(p.src[start:p.pos])
				p.pos++
				return s, nil
			}
		}
	}
	return "", errors.New("missing '}'")
}

// argument reads one command or script argument: a group, a command or a
// single character.
func (p *texParser) argument() (string, error) {
	p.skipSpaces()
	if p.pos >= len(p.src) {
		return "", errMissingArgument
	}
	switch c := p.src[p.pos]; c {
	case '{':
		return p.group()
	case '}', '^', '_':
		return "", errMissingArgument
	case '\\':
		return p.command()
	default:
		p.pos++
		return string(c), nil
	}
}

// optional reads a bracketed optional argument such as the index of \sqrt[3].
func (p *texParser) optional() (string, bool, error) {
	p.skipSpaces()
	if p.pos >= len(p.src) || p.src[p.pos] != '[' {
		return "", false, nil
	}
	end := -1
	for k := p.pos + 1; k < len(p.src); k++ {
		if p.src[k] == ']' {
			end = k
			break
		}
	}
	if end < 0 {
		return "", false, errors.New("missing ']'")
	}
	inner := &texParser{src: p.src[p.pos+1 : end], depth: p.depth}
	s, err := inner.sequence(false)
	if err != nil {
		return "", false, err
	}
	p.pos = end + 1
	return s, true, nil
}

func (p *texParser) command() (string, error) {
	start := p.pos
	p.pos++ // '\'
	if p.pos >= len(p.src) {
		return "", errors.New("trailing backslash")
	}

	if c := p.src[p.pos]; !isLetter(c) {
		p.pos++
		switch c {
		case ',', ':', '>', ' ':
			return " ", nil
		case ';':
			return "  ", nil
		case '!':
			return "", nil
		case '\\':
			return " ", nil
		case '{', '}', '$', '%', '&', '#', '_':
			return string(c), nil
		case '|':
			return "‖", nil
		}
		return "", fmt.Errorf("unknown control symbol \\%c at offset %d", c, start)
	}

	nameStart := p.pos
	for p.pos < len(p.src) && isLetter(p.src[p.pos]) {
		p.pos++
	}
	name := string(p.src[nameStart:p.pos])

	if s, ok := symbols[name]; ok {
		return s, nil
	}
	if functions[name] {
		return name, nil
	}
	if switches[name] {
		return "", nil
	}
	if styles[name] {
		return p.argument()
	}
	if textCommands[name] {
		return p.rawGroup()
	}
	if acc, ok := accents[name]; ok {
		arg, err := p.argument()
		if err != nil {
			return "", fmt.Errorf("\\%s: %w", name, err)
		}
		return accent(arg, acc.mark, acc.perRune), nil
	}

	switch name {
	case "frac", "dfrac", "tfrac":
		num, err := p.argument()
		if err != nil {
			return "", fmt.Errorf("\\%s numerator: %w", name, err)
		}
		den, err := p.argument()
		if err != nil {
			return "", fmt.Errorf("\\%s denominator: %w", name, err)
		}
		return wrap(num) + "/" + wrapDenominator(den), nil

	case "sqrt":
		index, hasIndex, err := p.optional()
		if err != nil {
			return "", fmt.Errorf("\\sqrt index: %w", err)
		}
		arg, err := p.argument()
		if err != nil {
			return "", fmt.Errorf("\\sqrt: %w", err)
		}
		return root(index, hasIndex) + wrap(arg), nil

	case "left", "right":
		return p.delimiter(name)

	case "ce":
		src, err := p.rawGroup()
		if err != nil {
			return "", fmt.Errorf("\\ce: %w", err)
		}
		return chem(src), nil

	case "begin":
		env, err := p.rawGroup()
		if err != nil {
			return "", fmt.Errorf("\\begin: %w", err)
		}
		return p.environment(strings.TrimSpace(env))

	case "end":
		env, err := p.rawGroup()
		if err != nil {
			return "", fmt.Errorf("\\end: %w", err)
		}
		return "", fmt.Errorf("unmatched \\end{%s} at offset %d", env, start)
	}

	return "", fmt.Errorf("unknown command \\%s at offset %d", name, start)
}

// environment typesets the body of \begin{name} up to its matching \end.
// Matrices are written on one line with cells separated by spaces and rows
// by semicolons, so a column vector reads (3; 4).
func (p *texParser) environment(name string) (string, error) {
	delims, ok := matrixDelims[name]
	if !ok {
		return "", fmt.Errorf("unsupported environment %q", name)
	}
	body, err := p.environmentBody(name)
	if err != nil {
		return "", err
	}

	var rows []string
	for _, row := range splitTop(body, true) {
		if strings.TrimSpace(string(row)) == "" {
			continue
		}
		var cells []string
		for _, cell := range splitTop(row, false) {
			inner := &texParser{src: cell, depth: p.depth + 1}
			s, err := inner.sequence(false)
			if err != nil {
				return "", fmt.Errorf("%s cell: %w", name, err)
			}
			cells = append(cells, strings.TrimSpace(s))
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("empty %s", name)
	}
	return delims[0] + strings.Join(rows, "; ") + delims[1], nil
}

// environmentBody returns the source up to the \end that closes name and
// moves past it.
func (p *texParser) environmentBody(name string) ([]rune, error) {
	begin, end := []rune(`\begin{`+name+`}`), []rune(`\end{`+name+`}`)
	start, depth := p.pos, 1
	for p.pos < len(p.src) {
		if p.src[p.pos] != '\\' {
			p.pos++
			continue
		}
		switch {
		case hasRunes(p.src[p.pos:], begin):
			depth++
			p.pos += len(begin)
		case hasRunes(p.src[p.pos:], end):
			depth--
			if depth == 0 {
				body := p.src[start:p.pos]
				p.pos += len(end)
				return body, nil
			}
			p.pos += len(end)
		default:
			p.pos += 2
		}
	}
	return nil, fmt.Errorf("missing \\end{%s}", name)
}

// splitTop splits src outside braces, on \\ when rows is set and on &
// otherwise.
func splitTop(src []rune, rows bool) [][]rune {
	var parts [][]rune
	start, depth := 0, 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
		case '\\':
			if rows && depth == 0 && i+1 < len(src) && src[i+1] == '\\' {
				parts = append(parts, src[start:i])
				start = i + 2
			}
			i++
		case '&':
			if !rows && depth == 0 {
				parts = append(parts, src[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, src[start:])
}

func hasRunes(s, prefix []rune) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i, r := range prefix {
		if s[i] != r {
			return false
		}
	}
	return true
}

// delimiter reads the delimiter after \left or \right. "." is invisible.
func (p *texParser) delimiter(cmd string) (string, error) {
	p.skipSpaces()
	if p.pos >= len(p.src) {
		return "", fmt.Errorf("\\%s: missing delimiter", cmd)
	}
	switch c := p.src[p.pos]; c {
	case '.':
		p.pos++
		return "", nil
	case '\\':
		return p.command()
	case '{', '}', '^', '_':
		return "", fmt.Errorf("\\%s: invalid delimiter %q", cmd, c)
	default:
		p.pos++
		return string(c), nil
	}
}

func (p *texParser) skipSpaces() {
	for p.pos < len(p.src) && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// script renders a superscript or subscript, using Unicode script characters
// when every rune has one and a caret or underscore notation otherwise.
func script(arg string, super bool) string {
	table, mark := subscripts, "_"
	if super {
		table, mark = superscripts, "^"
	}
	compact := strings.Join(strings.Fields(arg), "")
	if compact == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range compact {
		s, ok := table[r]
		if !ok {
			return mark + wrap(arg)
		}
		b.WriteRune(s)
	}
	return b.String()
}

// wrapDenominator parenthesises a fraction denominator unless it is a single
// number or a single symbol. "1/2a" would read as (1/2)a.
func wrapDenominator(s string) string {
	s = strings.TrimSpace(s)
	if isNumber(s) || isSymbol(s) {
		return s
	}
	return "(" + s + ")"
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return false
		}
	}
	return true
}

// isSymbol reports whether s is one letter, optionally carrying combining
// marks and script characters, as in x, π, r̂ or x².
func isSymbol(s string) bool {
	rs := []rune(s)
	if len(rs) == 0 || !unicode.IsLetter(rs[0]) {
		return false
	}
	for _, r := range rs[1:] {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if _, ok := scriptRunes[r]; ok {
			continue
		}
		return false
	}
	return true
}

// wrap parenthesises s unless it is a single term.
func wrap(s string) string {
	s = strings.TrimSpace(s)
	if isAtom(s) {
		return s
	}
	return "(" + s + ")"
}

func isAtom(s string) bool {
	if s == "" {
		return true
	}
	letters, digits := 0, 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r) || r == '.':
			digits++
		case unicode.IsLetter(r) || unicode.Is(unicode.Mn, r):
			letters++
		default:
			return false
		}
	}
	// 12, x, 2x, ab are single terms; a mix like x2y is not.
	return digits == 0 || letters == 0 || unicode.IsDigit([]rune(s)[0])
}

func root(index string, hasIndex bool) string {
	if !hasIndex {
		return "√"
	}
	switch strings.TrimSpace(index) {
	case "", "2":
		return "√"
	case "3":
		return "∛"
	case "4":
		return "∜"
	}
	return script(index, true) + "√"
}

func accent(arg string, mark rune, perRune bool) string {
	if !perRune {
		return arg + string(mark)
	}
	var b strings.Builder
	for _, r := range arg {
		b.WriteRune(r)
		if !unicode.IsSpace(r) {
			b.WriteRune(mark)
		}
	}
	return b.String()
}
