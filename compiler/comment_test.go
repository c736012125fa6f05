package compiler

import "testing"

func TestDescription(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"none", "class Main { }", ""},
		{"leading", `"a demo program" class Main { }`, "a demo program"},
		{"first wins", `class Main { "one" run [ | "two" ] }`, "one"},
		{"newline folded", "\"a demo\nprogram\"", "a demo program"},
		{"crlf folded", "\"a demo\r\nprogram\"", "a demo program"},
		{"each newline folded", "\"a\n\nb\"", "a  b"},
		{"empty comment", `"" "later"`, ""},
		{"unterminated", `class Main { "open`, ""},
		{"lone cr folded", "\"a\rb\"", "a b"},
		{"tab and controls folded", "\"a\tb\x01c\x7fd\"", "a b c d"},
		{"quote after string", `x := 'say'. "hi"`, "hi"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Description(tc.src); got != tc.want {
				t.Errorf("Description(%q) = %q, want %q", tc.src, got, tc.want)
			}
		})
	}
}

func TestFirstComment(t *testing.T) {
	if _, ok := FirstComment("no comment"); ok {
		t.Error("FirstComment should report false without a quote")
	}
	if got, ok := FirstComment(`""`); !ok || got != "" {
		t.Errorf(`FirstComment("") = %q, %v`, got, ok)
	}
	if got, ok := FirstComment("x \"keep\nnewline\" y"); !ok || got != "keep\nnewline" {
		t.Errorf("FirstComment = %q, %v", got, ok)
	}
}
