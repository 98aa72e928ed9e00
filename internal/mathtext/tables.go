package mathtext

// textCommands are the text-mode commands whose group argument is flattened
// into plain text.
var textCommands = map[string]bool{
	"mathrm":       true,
	"text":         true,
	"textrm":       true,
	"textnormal":   true,
	"operatorname": true,
	"mbox":         true,
}

// spaceCommands contribute exactly one literal space.
var spaceCommands = map[string]bool{
	"quad":         true,
	"qquad":        true,
	"enspace":      true,
	"thinspace":    true,
	"negthinspace": true,
	"medspace":     true,
	"thickspace":   true,
}

// charEscapes maps backslash-escaped single characters to their expansion.
// Escapes outside this table reject the containing fragment.
var charEscapes = map[byte]string{
	' ': " ",
	',': " ",
	';': " ",
	':': " ",
	'!': "",
	'%': "%",
	'_': "_",
	'^': "^",
	'-': "-",
}

// symbolCommands are named symbol macros with a direct glyph expansion.
var symbolCommands = map[string]string{
	"times":      "×",
	"cdot":       "⋅",
	"rightarrow": "→",
	"to":         "→",
	"leftarrow":  "←",
	"gets":       "←",
}

// greekLetters maps the standard Greek letter commands to their Unicode
// output.
var greekLetters = map[string]string{
	"alpha":      "α",
	"beta":       "β",
	"gamma":      "γ",
	"delta":      "δ",
	"epsilon":    "ε",
	"varepsilon": "ε",
	"zeta":       "ζ",
	"eta":        "η",
	"theta":      "θ",
	"vartheta":   "ϑ",
	"iota":       "ι",
	"kappa":      "κ",
	"lambda":     "λ",
	"mu":         "μ",
	"nu":         "ν",
	"xi":         "ξ",
	"omicron":    "ο",
	"pi":         "π",
	"varpi":      "ϖ",
	"rho":        "ρ",
	"varrho":     "ϱ",
	"sigma":      "σ",
	"varsigma":   "ς",
	"tau":        "τ",
	"upsilon":    "υ",
	"phi":        "φ",
	"varphi":     "φ",
	"chi":        "χ",
	"psi":        "ψ",
	"omega":      "ω",
	"Gamma":      "Γ",
	"Delta":      "Δ",
	"Theta":      "Θ",
	"Lambda":     "Λ",
	"Xi":         "Ξ",
	"Pi":         "Π",
	"Sigma":      "Σ",
	"Upsilon":    "Υ",
	"Phi":        "Φ",
	"Psi":        "Ψ",
	"Omega":      "Ω",
}

// greekRunes is the Greek output set, derived from greekLetters so the
// character predicate and the macro table cannot drift apart.
var greekRunes = func() map[rune]struct{} {
	set := make(map[rune]struct{}, len(greekLetters))
	for _, v := range greekLetters {
		for _, r := range v {
			set[r] = struct{}{}
		}
	}
	return set
}()

// siPrefixes maps siunitx prefix macros to their symbol.
var siPrefixes = map[string]string{
	"yocto": "y",
	"zepto": "z",
	"atto":  "a",
	"femto": "f",
	"pico":  "p",
	"nano":  "n",
	"micro": "µ",
	"milli": "m",
	"centi": "c",
	"deci":  "d",
	"deca":  "da",
	"deka":  "da",
	"hecto": "h",
	"kilo":  "k",
	"mega":  "M",
	"giga":  "G",
	"tera":  "T",
	"peta":  "P",
	"exa":   "E",
	"zetta": "Z",
	"yotta": "Y",
}

// siUnits maps siunitx unit macros to their canonical symbol.
var siUnits = map[string]string{
	"ampere":        "A",
	"bar":           "bar",
	"becquerel":     "Bq",
	"candela":       "cd",
	"coulomb":       "C",
	"day":           "d",
	"degree":        "°",
	"degreeCelsius": "°C",
	"electronvolt":  "eV",
	"farad":         "F",
	"gram":          "g",
	"gray":          "Gy",
	"henry":         "H",
	"hertz":         "Hz",
	"hour":          "h",
	"joule":         "J",
	"katal":         "kat",
	"kelvin":        "K",
	"kilogram":      "kg",
	"liter":         "L",
	"litre":         "L",
	"lumen":         "lm",
	"lux":           "lx",
	"meter":         "m",
	"metre":         "m",
	"minute":        "min",
	"mole":          "mol",
	"newton":        "N",
	"ohm":           "Ω",
	"pascal":        "Pa",
	"percent":       "%",
	"radian":        "rad",
	"second":        "s",
	"siemens":       "S",
	"sievert":       "Sv",
	"steradian":     "sr",
	"tesla":         "T",
	"tonne":         "t",
	"volt":          "V",
	"watt":          "W",
	"weber":         "Wb",
}
