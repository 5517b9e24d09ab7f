package htmllang

import (
	"strings"
	"testing"
)

func TestKeepOnlyEnglish(t *testing.T) {
	in := `<p lang="en">Sea view bungalow</p><p lang="kh">បឹងហ្គាឡូ</p><ul><li>Shared</li><li lang="kh">ឯកសារ</li><li lang="en-GB">Terrace</li></ul>`

	out, err := KeepOnly("en", in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(out, "<div>") || !strings.HasSuffix(out, "</div>") {
		t.Fatalf("expected wrapping div, got %s", out)
	}
	for _, want := range []string{"Sea view bungalow", "Shared", "Terrace"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %s", want, out)
		}
	}
	if strings.Contains(out, `lang="kh"`) {
		t.Fatalf("expected khmer blocks removed, got %s", out)
	}
}

func TestKeepOnlyEmptyFragment(t *testing.T) {
	out, err := KeepOnly("en", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "<div></div>" {
		t.Fatalf("expected empty div, got %s", out)
	}
}

func TestKeepOnlyRequiresLanguage(t *testing.T) {
	if _, err := KeepOnly(" ", "<p>x</p>"); err == nil {
		t.Fatal("expected error for empty language")
	}
}
