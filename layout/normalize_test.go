package layout

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"crlf", "linha um\r\nlinha dois\rtrês", "linha um\nlinha dois\ntrês"},
		{"nfc", "promoc\u0327a\u0303o", "promo\u00e7\u00e3o"},
		{"controls", "a\x00b\x07c\td\x7fe\u0085f", "abcdef"},
		{"keeps newline", "a\n\nb", "a\n\nb"},
		{"empty", "", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Fatalf("%s: Normalize(%q) = %q, 期望 %q", c.name, c.in, got, c.want)
		}
	}
}
