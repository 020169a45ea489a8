package richtext

import (
	"strings"
	"testing"
)

func TestPlainText_StripsMarkup(t *testing.T) {
	in := `<h2>Summary</h2><p>Read <strong>this</strong> and <a href="http://x.com">that</a>.</p>`
	got := PlainText(in)
	if strings.ContainsAny(got, "<>*#[]") {
		t.Errorf("markup left in %q", got)
	}
	for _, want := range []string{"Summary", "Read this and that."} {
		if !strings.Contains(got, want) {
			t.Errorf("PlainText = %q, missing %q", got, want)
		}
	}
}

func TestPlainText_NoHTMLUnchanged(t *testing.T) {
	if got := PlainText("  just text  "); got != "just text" {
		t.Errorf("PlainText = %q", got)
	}
	if got := PlainText(""); got != "" {
		t.Errorf("PlainText(empty) = %q", got)
	}
}

func TestPlainText_Lists(t *testing.T) {
	got := PlainText(`<ul><li>one</li><li>two</li></ul>`)
	if strings.Contains(got, "- ") {
		t.Errorf("bullet markers left in %q", got)
	}
	if !strings.Contains(got, "one") || !strings.Contains(got, "two") {
		t.Errorf("PlainText = %q", got)
	}
}

func TestPreview_Truncates(t *testing.T) {
	in := "<p>" + strings.Repeat("é", 150) + "</p>"
	got := Preview(in, 100)
	if n := len([]rune(got)); n != 100 {
		t.Errorf("preview runes = %d, want 100", n)
	}
}

func TestContainsHTML(t *testing.T) {
	if !ContainsHTML("<P>x</P>") {
		t.Error("uppercase tag not detected")
	}
	if ContainsHTML("a < b > c") {
		t.Error("comparison operators are not HTML")
	}
}

func TestPlainText_KeepsLiteralMarkers(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<p>use my_var_name and 2*3*4</p>", "use my_var_name and 2*3*4"},
		{"<p><em>read</em> the <strong>docs</strong> for a_b</p>", "read the docs for a_b"},
	}
	for _, tt := range tests {
		if got := PlainText(tt.in); got != tt.want {
			t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
