package mathtext

import (
	"reflect"
	"testing"
)

func TestRewriteShapes(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []Run
		ok   bool
	}{
		{
			name: "ion charge signs only",
			expr: "^{-}",
			want: []Run{{RunSuperscript, "-"}},
			ok:   true,
		},
		{
			name: "ion charge count then sign",
			expr: "^{2+}",
			want: []Run{{RunSuperscript, "2+"}},
			ok:   true,
		},
		{
			name: "ion charge sign then count",
			expr: "^{+2}",
			want: []Run{{RunSuperscript, "+2"}},
			ok:   true,
		},
		{
			name: "isotope drops atomic number",
			expr: `^{203}_{82}\mathrm{Pb}`,
			want: []Run{{RunSuperscript, "203"}, {RunPlain, "Pb"}},
			ok:   true,
		},
		{
			name: "isotope without atomic number",
			expr: `^{99}\mathrm{Mo}`,
			want: []Run{{RunSuperscript, "99"}, {RunPlain, "Mo"}},
			ok:   true,
		},
		{
			name: "bare chemical subscript",
			expr: "_2",
			want: []Run{{RunSubscript, "2"}},
			ok:   true,
		},
		{
			name: "si value with unit",
			expr: `\SI{315}{\kelvin}`,
			want: []Run{{RunPlain, "315 K"}},
			ok:   true,
		},
		{
			name: "fraction unit keeps upright exponent",
			expr: `\mathrm{m}^{3}/\mathrm{s}`,
			want: []Run{{RunPlain, "m"}, {RunSuperscript, "3"}, {RunPlain, " /s"}},
			ok:   true,
		},
		{
			name: "chemical formula",
			expr: "CO_{2}",
			want: []Run{{RunPlain, "CO"}, {RunSubscript, "2"}},
			ok:   true,
		},
		{
			name: "decay arrow",
			expr: `^{99}\mathrm{Mo} \xrightarrow{\gamma} {}^{99m}\mathrm{Tc} + \gamma`,
			want: []Run{
				{RunSuperscript, "99"},
				{RunPlain, "Mo →"},
				{RunSuperscript, "γ"},
				{RunPlain, " "},
				{RunSuperscript, "99m"},
				{RunPlain, "Tc + γ"},
			},
			ok: true,
		},

		{name: "single letter variable declines", expr: "v", ok: false},
		{name: "polynomial declines", expr: "a^2 + b^2", ok: false},
		{name: "equation rejects", expr: "E=mc^2", ok: false},
		{name: "unknown command rejects", expr: `\int_0^1 f`, ok: false},
		{name: "empty expression declines", expr: "", ok: false},
		{name: "lowercase subscripted variable declines", expr: "x_i", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession()
			got, ok := s.Rewrite(tt.expr)
			if ok != tt.ok {
				t.Fatalf("Rewrite(%q) ok = %v, want %v", tt.expr, ok, tt.ok)
			}
			if !ok {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Rewrite(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestMatchShapePrecedence(t *testing.T) {
	// A lone sign superscript is an ion charge even though it would also
	// pass the generic gate.
	decision, _, ok := matchShape([]Token{{KindSuperscript, "2+"}})
	if !ok || decision != DecisionIonCharge {
		t.Errorf("lone sign superscript = (%v, %v), want (DecisionIonCharge, true)", decision, ok)
	}

	// A digits-only lone superscript is not a charge.
	if _, _, ok := matchShape([]Token{{KindSuperscript, "99"}}); ok {
		t.Error("digits-only superscript should not match a special shape")
	}

	// A letter-bearing lone subscript is not a bare chemical subscript.
	if _, _, ok := matchShape([]Token{{KindSubscript, "aq"}}); ok {
		t.Error("letter subscript should not match a special shape")
	}

	// Isotope requires the subscript to be digits-only.
	tokens := []Token{{KindSuperscript, "99"}, {KindSubscript, "m"}, {KindText, "Tc"}}
	if _, _, ok := matchShape(tokens); ok {
		t.Error("isotope shape must require a digits-only atomic number")
	}
}

func TestRewriteOutputIsAllowed(t *testing.T) {
	exprs := []string{
		`\SI{315}{\kelvin}`,
		`\si{\mole\per\square\metre\per\second}`,
		`^{203}_{82}\mathrm{Pb}`,
		`\mathrm{m}^{3}/\mathrm{s}`,
		`^{99}\mathrm{Mo} \xrightarrow{\gamma} {}^{99m}\mathrm{Tc} + \gamma`,
	}
	s := NewSession()
	for _, expr := range exprs {
		runs, ok := s.Rewrite(expr)
		if !ok {
			t.Fatalf("Rewrite(%q) declined", expr)
		}
		for _, run := range runs {
			for _, r := range run.Text {
				if !isAllowedChar(r) {
					t.Errorf("Rewrite(%q) produced disallowed character %q", expr, r)
				}
			}
		}
	}
}

func TestNonStandardUnitDiagnostic(t *testing.T) {
	s := NewSession()

	expr := `300\ \mathrm{K}`
	if _, ok := s.Rewrite(expr); !ok {
		t.Fatalf("Rewrite(%q) declined", expr)
	}
	if _, ok := s.Rewrite(expr); !ok {
		t.Fatalf("Rewrite(%q) declined on second run", expr)
	}

	warnings := s.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want exactly 1: %v", len(warnings), warnings)
	}

	// A different offending expression gets its own line.
	other := `1.8\ \mathrm{mol}`
	if _, ok := s.Rewrite(other); !ok {
		t.Fatalf("Rewrite(%q) declined", other)
	}
	if got := len(s.Warnings()); got != 2 {
		t.Errorf("got %d warnings after second expression, want 2", got)
	}
}

func TestNoDiagnosticForProperUnits(t *testing.T) {
	s := NewSession()
	for _, expr := range []string{`\SI{315}{\kelvin}`, `^{99}\mathrm{Mo}`, `\mathrm{Mo}`} {
		if _, ok := s.Rewrite(expr); !ok {
			t.Fatalf("Rewrite(%q) declined", expr)
		}
	}
	if warnings := s.Warnings(); len(warnings) != 0 {
		t.Errorf("unexpected diagnostics: %v", warnings)
	}
}
