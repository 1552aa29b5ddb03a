package bot

import "testing"

func TestShortID(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"p-1", "p-1"},
		{"12345678", "12345678"},
		{"0f8fad5b-d9cb-469f-a165-70867728950e", "0f8fad5b"},
	}
	for _, tc := range cases {
		if got := shortID(tc.in); got != tc.want {
			t.Fatalf("shortID(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}
