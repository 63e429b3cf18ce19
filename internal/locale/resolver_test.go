package locale_test

import (
	"slices"
	"testing"

	"github.com/goliatone/go-portal/internal/locale"
)

func TestResolve(t *testing.T) {
	available := []string{"bs", "en"}
	cases := []struct {
		requested string
		want      string
	}{
		{"bs", "bs"},
		{"EN", "en"},
		{" en ", "en"},
		{"bs-Latn-BA", "bs"},
		{"en-GB", "en"},
		{"de", "bs"},
		{"", "bs"},
		{"not a locale!", "bs"},
	}
	for _, tc := range cases {
		if got := locale.Resolve(tc.requested, available, "bs"); got != tc.want {
			t.Fatalf("Resolve(%q) = %q, want %q", tc.requested, got, tc.want)
		}
	}
}

func TestResolveIsTotal(t *testing.T) {
	inputs := []string{"", "bs", "en", "fr", "x-klingon", "en-US", "123", "bs_BA", "\x00"}
	sets := [][]string{nil, {}, {"bs"}, {"en"}, {"bs", "en"}, {"en", "bs", "hr"}}
	for _, available := range sets {
		for _, requested := range inputs {
			got := locale.Resolve(requested, available, "bs")
			if got != "bs" && !slices.Contains(available, got) {
				t.Fatalf("Resolve(%q, %v) returned unsupported %q", requested, available, got)
			}
		}
	}
}

func TestResolverAddsDefaultToSupported(t *testing.T) {
	r := locale.NewResolver("bs", []string{"en"})
	if !r.IsSupported("bs") || !r.IsSupported("en") {
		t.Fatalf("expected bs and en to be supported, got %v", r.Supported())
	}
	if r.Resolve("fr") != "bs" {
		t.Fatalf("expected fallback to default")
	}
}

func TestResolverAcceptLanguage(t *testing.T) {
	r := locale.NewResolver("bs", []string{"bs", "en"})
	cases := map[string]string{
		"en-US,en;q=0.9":   "en",
		"bs-BA,bs;q=0.8":   "bs",
		"fr-FR":            "bs",
		"":                 "bs",
		"garbage;;q=a,,,,": "bs",
	}
	for header, want := range cases {
		if got := r.ResolveAcceptLanguage(header); got != want {
			t.Fatalf("ResolveAcceptLanguage(%q) = %q, want %q", header, got, want)
		}
	}
}
