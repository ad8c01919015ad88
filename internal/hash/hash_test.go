package hash

import "testing"

func TestKey(t *testing.T) {
	// printf abc | sha256sum
	if got, want := Key("abc"), "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"; got != want {
		t.Errorf("Key(abc) = %s, want %s", got, want)
	}

	tests := []struct {
		name string
		a, b []string
	}{
		{"different input", []string{"a"}, []string{"b"}},
		{"split point", []string{"ab", "c"}, []string{"a", "bc"}},
		{"extra empty part", []string{"a"}, []string{"a", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Key(tt.a...) == Key(tt.b...) {
				t.Errorf("Key(%q) == Key(%q)", tt.a, tt.b)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"same", "same", true},
		{"same", "diff", false},
		{"short", "longer", false},
		{"", "", true},
	}
	for _, tt := range tests {
		if got := Equal([]byte(tt.a), []byte(tt.b)); got != tt.want {
			t.Errorf("Equal(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
