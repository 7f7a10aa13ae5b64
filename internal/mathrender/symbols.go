package mathrender

var symbols = map[string]string{
	// operators and relations
	"times": "×", "div": "÷", "pm": "±", "mp": "∓", "cdot": "·", "ast": "∗",
	"leq": "≤", "le": "≤", "geq": "≥", "ge": "≥", "neq": "≠", "ne": "≠",
	"approx": "≈", "equiv": "≡", "sim": "∼", "cong": "≅", "propto": "∝",
	"ll": "≪", "gg": "≫", "lt": "<", "gt": ">",
	"in": "∈", "notin": "∉", "ni": "∋", "subset": "⊂", "subseteq": "⊆",
	"supset": "⊃", "supseteq": "⊇", "cup": "∪", "cap": "∩", "setminus": "∖",
	"emptyset": "∅", "varnothing": "∅", "forall": "∀", "exists": "∃", "neg": "¬",
	"land": "∧", "lor": "∨", "perp": "⊥", "parallel": "∥", "mid": "∣",

	// arrows
	"to": "→", "rightarrow": "→", "leftarrow": "←", "gets": "←",
	"Rightarrow": "⇒", "Leftarrow": "⇐", "Leftrightarrow": "⇔", "iff": "⇔",
	"leftrightarrow": "↔", "rightleftharpoons": "⇌", "uparrow": "↑", "downarrow": "↓",
	"implies": "⇒", "mapsto": "↦", "longrightarrow": "⟶",

	// geometry and misc
	"circ": "∘", "degree": "°", "angle": "∠", "measuredangle": "∡",
	"triangle": "△", "square": "□", "therefore": "∴", "because": "∵",
	"infty": "∞", "partial": "∂", "nabla": "∇", "prime": "′",
	"sum": "∑", "prod": "∏", "int": "∫", "oint": "∮",
	"ldots": "…", "cdots": "⋯", "vdots": "⋮", "dots": "…",
	"langle": "⟨", "rangle": "⟩", "lfloor": "⌊", "rfloor": "⌋",
	"lceil": "⌈", "rceil": "⌉", "hbar": "ℏ", "ell": "ℓ",

	// greek
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ", "epsilon": "ϵ",
	"varepsilon": "ε", "zeta": "ζ", "eta": "η", "theta": "θ", "vartheta": "ϑ",
	"iota": "ι", "kappa": "κ", "lambda": "λ", "mu": "μ", "nu": "ν", "xi": "ξ",
	"pi": "π", "rho": "ρ", "sigma": "σ", "tau": "τ", "upsilon": "υ",
	"phi": "ϕ", "varphi": "φ", "chi": "χ", "psi": "ψ", "omega": "ω",
	"Gamma": "Γ", "Delta": "Δ", "Theta": "Θ", "Lambda": "Λ", "Xi": "Ξ",
	"Pi": "Π", "Sigma": "Σ", "Upsilon": "Υ", "Phi": "Φ", "Psi": "Ψ", "Omega": "Ω",

	// spacing
	"quad": "  ", "qquad": "    ",
}

// functions are upright operator names written as plain words.
var functions = map[string]bool{
	"sin": true, "cos": true, "tan": true, "sec": true, "csc": true, "cot": true,
	"arcsin": true, "arccos": true, "arctan": true, "sinh": true, "cosh": true, "tanh": true,
	"log": true, "ln": true, "lg": true, "exp": true, "lim": true,
	"max": true, "min": true, "det": true, "gcd": true, "mod": true,
}

// accents map to a combining mark applied after each rune of the argument
// (perRune) or once after the whole argument.
var accents = map[string]struct {
	mark    rune
	perRune bool
}{
	"vec":            {'⃗', false},
	"overrightarrow": {'⃗', false},
	"hat":            {'̂', false},
	"widehat":        {'̂', false},
	"tilde":          {'̃', false},
	"dot":            {'̇', false},
	"ddot":           {'̈', false},
	"bar":            {'̅', true},
	"overline":       {'̅', true},
	"underline":      {'̲', true},
}

// styles are font switches rendered as their plain argument.
var styles = map[string]bool{
	"mathbf": true, "mathit": true, "mathsf": true, "mathtt": true,
	"boldsymbol": true, "bm": true, "mathcal": true, "mathbb": true,
}

// switches change layout only and produce no output.
var switches = map[string]bool{
	"displaystyle": true, "textstyle": true, "scriptstyle": true,
	"limits": true, "nolimits": true,
}

// text commands take their argument verbatim.
var textCommands = map[string]bool{
	"text": true, "textrm": true, "textbf": true, "textit": true,
	"mathrm": true, "mbox": true, "operatorname": true,
}

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴',
	'5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
	'+': '⁺', '-': '⁻', '−': '⁻', '=': '⁼', '(': '⁽', ')': '⁾',
	'a': 'ᵃ', 'b': 'ᵇ', 'c': 'ᶜ', 'd': 'ᵈ', 'e': 'ᵉ', 'f': 'ᶠ', 'g': 'ᵍ',
	'h': 'ʰ', 'i': 'ⁱ', 'j': 'ʲ', 'k': 'ᵏ', 'l': 'ˡ', 'm': 'ᵐ', 'n': 'ⁿ',
	'o': 'ᵒ', 'p': 'ᵖ', 'r': 'ʳ', 's': 'ˢ', 't': 'ᵗ', 'u': 'ᵘ', 'v': 'ᵛ',
	'w': 'ʷ', 'x': 'ˣ', 'y': 'ʸ', 'z': 'ᶻ',
	'∘': '°', '′': '′',
}

var subscripts = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄',
	'5': '₅', '6': '₆', '7': '₇', '8': '₈', '9': '₉',
	'+': '₊', '-': '₋', '−': '₋', '=': '₌', '(': '₍', ')': '₎',
	'a': 'ₐ', 'e': 'ₑ', 'h': 'ₕ', 'i': 'ᵢ', 'j': 'ⱼ', 'k': 'ₖ', 'l': 'ₗ',
	'm': 'ₘ', 'n': 'ₙ', 'o': 'ₒ', 'p': 'ₚ', 'r': 'ᵣ', 's': 'ₛ', 't': 'ₜ',
	'u': 'ᵤ', 'v': 'ᵥ', 'x': 'ₓ',
}

// scriptRunes holds every rune produced by the script tables.
var scriptRunes = func() map[rune]struct{} {
	m := make(map[rune]struct{}, len(superscripts)+len(subscripts))
	for _, r := range superscripts {
		m[r] = struct{}{}
	}
	for _, r := range subscripts {
		m[r] = struct{}{}
	}
	return m
}()

// matrixDelims maps matrix environments to their opening and closing
// delimiters.
var matrixDelims = map[string][2]string{
	"matrix":  {"", ""},
	"pmatrix": {"(", ")"},
	"bmatrix": {"[", "]"},
	"Bmatrix": {"{", "}"},
	"vmatrix": {"|", "|"},
	"Vmatrix": {"‖", "‖"},
}
