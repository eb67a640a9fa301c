package rewrite

import "testing"

func TestSanitiseResolutionName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Alpha Beta", "alpha_beta"},
		{"!!!", "_"},
		{"  leading and trailing  ", "leading_and_trailing"},
		{"Already_Fine-123", "already_fine_123"},
	}
	for _, c := range cases {
		if got := SanitiseResolutionName(c.in); got != c.want {
			t.Errorf("SanitiseResolutionName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSanitiseResolutionNameTruncatesTo48(t *testing.T) {
	long := "this is a very long display name that definitely exceeds forty eight characters"
	got := SanitiseResolutionName(long)
	if len(got) != resolutionNameMaxLen {
		t.Fatalf("got length %d: %q", len(got), got)
	}
}
