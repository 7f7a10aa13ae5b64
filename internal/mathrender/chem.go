package mathrender

import "strings"

var chemArrows = map[string]string{
	"->":  "→",
	"<-":  "←",
	"<=>": "⇌",
	"<->": "↔",
}

// chem typesets the body of \ce{...}: species get subscript counts and
// superscript charges, arrows become arrow symbols.
func chem(src string) string {
	fields := strings.Fields(src)
	for i, f := range fields {
		if a, ok := chemArrows[f]; ok {
			fields[i] = a
			continue
		}
		if f == "+" || f == "=" {
			continue
		}
		fields[i] = species(f)
	}
	return strings.Join(fields, " ")
}

// species formats one formula such as 2H2O, SO4^2-, Ag+, Fe3+ or Ca(OH)2.
// A leading coefficient stays full size.
func species(s string) string {
	body, charge := s, ""
	if k := strings.IndexByte(s, '^'); k >= 0 {
		body, charge = s[:k], strings.Trim(s[k+1:], "{}")
	} else if n := len(s); n > 1 && (s[n-1] == '+' || s[n-1] == '-') && s[n-2] != '(' {
		body, charge = splitCharge(s[:n-1], s[n-1:])
	}

	var b strings.Builder
	leading := true
	for _, r := range body {
		digit := r >= '0' && r <= '9'
		if digit && !leading {
			b.WriteRune(subscripts[r])
			continue
		}
		if !digit {
			leading = false
		}
		b.WriteRune(r)
	}
	if charge != "" {
		b.WriteString(script(charge, true))
	}
	return b.String()
}

// splitCharge moves the digits before a trailing sign into the charge when
// they follow a lone element symbol: Fe3+ is Fe³⁺ but NH4+ is NH₄⁺.
func splitCharge(body, sign string) (string, string) {
	k := len(body)
	for k > 0 && body[k-1] >= '0' && body[k-1] <= '9' {
		k--
	}
	if k == len(body) {
		return body, sign
	}
	if !isElement(strings.TrimLeft(body[:k], "0123456789")) {
		return body, sign
	}
	return body[:k], body[k:] + sign
}

// isElement reports whether s looks like one element symbol such as Fe or N.
func isElement(s string) bool {
	switch len(s) {
	case 1:
		return s[0] >= 'A' && s[0] <= 'Z'
	case 2:
		return s[0] >= 'A' && s[0] <= 'Z' && s[1] >= 'a' && s[1] <= 'z'
	}
	return false
}
