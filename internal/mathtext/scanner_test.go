package mathtext

import "testing"

func TestReadGroup(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		start   int
		content string
		next    int
		ok      bool
	}{
		{"simple", "{abc}", 0, "abc", 5, true},
		{"nested", "{a{b}c}", 0, "a{b}c", 7, true},
		{"escaped brace", `{a\}b}`, 0, `a\}b`, 6, true},
		{"escaped backslash", `{a\\}`, 0, `a\\`, 5, true},
		{"offset start", "x{y}", 1, "y", 4, true},
		{"empty group", "{}", 0, "", 2, true},
		{"unbalanced", "{abc", 0, "", 0, false},
		{"not a brace", "abc", 0, "", 0, false},
		{"past end", "{", 0, "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, next, ok := readGroup(tt.input, tt.start)
			if ok != tt.ok {
				t.Fatalf("readGroup(%q, %d) ok = %v, want %v", tt.input, tt.start, ok, tt.ok)
			}
			if !ok {
				return
			}
			if content != tt.content || next != tt.next {
				t.Errorf("readGroup(%q, %d) = (%q, %d), want (%q, %d)",
					tt.input, tt.start, content, next, tt.content, tt.next)
			}
		})
	}
}

func TestReadSuperSub(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		start   int
		content string
		ok      bool
	}{
		{"single char", "2", 0, "2", true},
		{"braced", "{23}", 0, "23", true},
		{"escaped char", `\%`, 0, `\%`, true},
		{"unicode char", "γ", 0, "γ", true},
		{"end of input", "", 0, "", false},
		{"unbalanced group", "{2", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, _, ok := readSuperSub(tt.input, tt.start)
			if ok != tt.ok {
				t.Fatalf("readSuperSub(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && content != tt.content {
				t.Errorf("readSuperSub(%q) = %q, want %q", tt.input, content, tt.content)
			}
		})
	}
}

func TestIsAllowedChar(t *testing.T) {
	allowed := []rune{'a', 'Z', '0', '9', ' ', '-', '+', ',', '.', '/', '(', ')',
		'[', ']', ':', ';', '\'', '"', '~', '⋅', '×', '→', '←',
		'µ', 'Ω', '°', 'α', 'Ω', 'γ'}
	for _, r := range allowed {
		if !isAllowedChar(r) {
			t.Errorf("isAllowedChar(%q) = false, want true", r)
		}
	}

	forbidden := []rune{'=', '<', '>', '{', '}', '\\', '$', '&', '#', '%', '\n', '∫'}
	for _, r := range forbidden {
		if isAllowedChar(r) {
			t.Errorf("isAllowedChar(%q) = true, want false", r)
		}
	}
}
