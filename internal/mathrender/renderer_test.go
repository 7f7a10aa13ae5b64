package mathrender_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/p-n-ai/pai-notes/internal/mathrender"
)

func TestRender(t *testing.T) {
	r := mathrender.NewRenderer(mathrender.RendererConfig{})

	tests := []struct {
		name string
		expr string
		want string
	}{
		{"plain", "x + 1", "x + 1"},
		{"superscript", "x^2", "x²"},
		{"grouped superscript", "x^{n+1}", "xⁿ⁺¹"},
		{"subscript", "a_{12}", "a₁₂"},
		{"script fallback", `e^{i\pi}`, "e^iπ"},
		{"degree", `90^\circ`, "90°"},
		{"times", `420 = 2^2 \times 3 \times 5 \times 7`, "420 = 2² × 3 × 5 × 7"},
		{"frac", `\frac{1}{2}`, "1/2"},
		{"frac compound", `\frac{a+b}{2}`, "(a+b)/2"},
		{"dfrac", `\dfrac{-b}{2a}`, "(-b)/(2a)"},
		{"frac product denominator", `\frac{1}{2x}`, "1/(2x)"},
		{"frac symbol denominator", `\frac{2a}{b}`, "2a/b"},
		{"frac scripted denominator", `\frac{1}{a^n}`, "1/aⁿ"},
		{"frac decimal denominator", `\frac{m}{0.5}`, "m/0.5"},
		{"sqrt", `\sqrt{25}`, "√25"},
		{"sqrt compound", `\sqrt{x^2 + y^2}`, "√(x² + y²)"},
		{"cube root", `\sqrt[3]{8}`, "∛8"},
		{"vector", `\vec{AB}`, "AB\u20d7"},
		{"underline", `\underline{i}`, "i\u0332"},
		{"greek and relation", `\theta \neq 0`, "θ ≠ 0"},
		{"function", `\sin x`, "sin x"},
		{"text", `5\text{ km}`, "5 km"},
		{"style", `\mathbf{v}`, "v"},
		{"left right", `\left( x \right)`, "( x )"},
		{"invisible delimiter", `\left. x \right|`, "x |"},
		{"spacing", `a\,b`, "a b"},
		{"chemistry", `\ce{2H2 + O2 -> 2H2O}`, "2H₂ + O₂ → 2H₂O"},
		{"chemistry charge", `\ce{SO4^2-}`, "SO₄²⁻"},
		{"chemistry equilibrium", `\ce{N2 + 3H2 <=> 2NH3}`, "N₂ + 3H₂ ⇌ 2NH₃"},
		{"chemistry ion", `\ce{Ag+}`, "Ag⁺"},
		{"chemistry iron ion", `\ce{Fe3+}`, "Fe³⁺"},
		{"chemistry copper ion", `\ce{Cu2+ + 2e- -> Cu}`, "Cu²⁺ + 2e⁻ → Cu"},
		{"chemistry aluminium ion", `\ce{2Al3+}`, "2Al³⁺"},
		{"chemistry polyatomic ion", `\ce{NH4+}`, "NH₄⁺"},
		{"column vector", `\begin{pmatrix} 3 \\ 4 \end{pmatrix}`, "(3; 4)"},
		{"bracket matrix", `\begin{bmatrix} 1 & 0 \\ 0 & x^2 \\ \end{bmatrix}`, "[1 0; 0 x²]"},
		{"determinant", `\begin{vmatrix} a & b \\ c & d \end{vmatrix}`, "|a b; c d|"},
		{"vector equation", `\vec{AB} = \begin{pmatrix} 3 \\ 4 \end{pmatrix}`, "AB\u20d7 = (3; 4)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := r.Render(tt.expr, mathrender.Inline)
			if !node.Rendered {
				t.Fatalf("Render(%q) fell back: %s", tt.expr, node.Err)
			}
			if node.Text != tt.want {
				t.Errorf("Render(%q).Text = %q, want %q", tt.expr, node.Text, tt.want)
			}
			if node.Source != tt.expr {
				t.Errorf("Source = %q, want %q", node.Source, tt.expr)
			}
		})
	}
}

func TestRender_Fallback(t *testing.T) {
	r := mathrender.NewRenderer(mathrender.RendererConfig{})

	tests := []struct {
		name    string
		expr    string
		wantErr string
	}{
		{"empty", "  ", "empty"},
		{"unknown command", `x + \foo`, `unknown command \foo`},
		{"environment", `\begin{align} x &= 1 \end{align}`, `unsupported environment "align"`},
		{"unclosed matrix", `\begin{pmatrix} 3 \\ 4`, `missing \end{pmatrix}`},
		{"unmatched end", `x \end{pmatrix}`, `unmatched \end{pmatrix}`},
		{"empty matrix", `\begin{pmatrix} \end{pmatrix}`, "empty pmatrix"},
		{"bad matrix cell", `\begin{pmatrix} \foo \end{pmatrix}`, `unknown command \foo`},
		{"missing brace", `\frac{1}{2`, "missing '}'"},
		{"stray brace", `x}`, "unbalanced"},
		{"missing argument", `\frac{1}`, "missing argument"},
		{"trailing backslash", `x\`, "trailing backslash"},
		{"empty script", `x^`, "missing argument"},
		{"deep nesting", strings.Repeat("{", 100) + "x" + strings.Repeat("}", 100), "nested deeper"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := r.Render(tt.expr, mathrender.Block)
			if node.Rendered {
				t.Fatalf("Render(%q) = %q, want fallback", tt.expr, node.Text)
			}
			if node.Text != tt.expr {
				t.Errorf("fallback Text = %q, want the source %q", node.Text, tt.expr)
			}
			if node.Mode != mathrender.Block {
				t.Errorf("Mode = %v, want block", node.Mode)
			}
			if !strings.Contains(node.Err, tt.wantErr) {
				t.Errorf("Err = %q, want it to mention %q", node.Err, tt.wantErr)
			}
		})
	}
}

func TestRender_Isolated(t *testing.T) {
	r := mathrender.NewRenderer(mathrender.RendererConfig{})

	exprs := []string{`x^2`, `\begin{align}1\end{align}`, `\frac{1}{2}`}
	var rendered int
	for _, e := range exprs {
		if r.Render(e, mathrender.Inline).Rendered {
			rendered++
		}
	}
	if rendered != 2 {
		t.Errorf("rendered %d of %d, want 2: one failure must not affect the others", rendered, len(exprs))
	}
}

func TestRender_MaxExprLen(t *testing.T) {
	r := mathrender.NewRenderer(mathrender.RendererConfig{MaxExprLen: 5})
	if got := r.MaxExprLen(); got != 5 {
		t.Errorf("MaxExprLen() = %d, want 5", got)
	}

	if node := r.Render("x+y", mathrender.Inline); !node.Rendered {
		t.Errorf("Render(x+y) fell back: %s", node.Err)
	}
	node := r.Render("x+y+z+w", mathrender.Inline)
	if node.Rendered {
		t.Error("Render() should fall back above the length limit")
	}
	if !strings.Contains(node.Err, "limit is 5") {
		t.Errorf("Err = %q", node.Err)
	}

	if got := mathrender.NewRenderer(mathrender.RendererConfig{}).MaxExprLen(); got != 4096 {
		t.Errorf("default MaxExprLen() = %d, want 4096", got)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    mathrender.Mode
		wantErr bool
	}{
		{"", mathrender.Inline, false},
		{"inline", mathrender.Inline, false},
		{"block", mathrender.Block, false},
		{"display", mathrender.Block, false},
		{"sideways", mathrender.Inline, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := mathrender.ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNode_JSON(t *testing.T) {
	r := mathrender.NewRenderer(mathrender.RendererConfig{})
	data, err := json.Marshal(r.Render("x^2", mathrender.Block))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"mode":"block","source":"x^2","text":"x²","rendered":true}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}
