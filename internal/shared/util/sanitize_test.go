package util

import "testing"

func TestSanitizeID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "sub-123", want: "sub-123"},
		{name: "traversal", in: "../../etc/passwd", want: "etcpasswd"},
		{name: "windows separators", in: `..\..\boot.ini`, want: "bootini"},
		{name: "underscore and dots dropped", in: "a_b.c", want: "abc"},
		{name: "unicode dropped", in: "café-1", want: "caf-1"},
		{name: "whitespace dropped", in: "  id 42\n", want: "id42"},
		{name: "only junk", in: "../", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeID(tt.in); got != tt.want {
				t.Fatalf("SanitizeID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
