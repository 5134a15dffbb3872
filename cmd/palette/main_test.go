package main

import (
	"strings"
	"testing"

	"github.com/evanschultz/kanwow/internal/config"
)

func TestRenderPalettesListsEveryRole(t *testing.T) {
	var out strings.Builder
	renderPalettes(&out, config.Themes())

	got := out.String()
	for _, p := range config.Themes() {
		if !strings.Contains(got, "=== "+p.Name+" ===") {
			t.Fatalf("expected heading for %s, got\n%s", p.Name, got)
		}
		for _, s := range swatches(p) {
			if !strings.Contains(got, s.hex) {
				t.Fatalf("expected %s %s in output", p.Name, s.role)
			}
		}
	}
	if !strings.Contains(got, "Write release notes") {
		t.Fatal("expected card preview in output")
	}
}
