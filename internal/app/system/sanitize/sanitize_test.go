package sanitize_test

import (
	"testing"

	"github.com/taskhub/taskhub/internal/app/system/sanitize"
)

func TestText_PlainUnchanged(t *testing.T) {
	if got := sanitize.Text("Book the venue"); got != "Book the venue" {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestText_StripsMarkup(t *testing.T) {
	if got := sanitize.Text("<b>Launch</b> <script>alert(1)</script>plan"); got != "Launch plan" {
		t.Errorf("expected markup stripped, got %q", got)
	}
}

func TestBody_KeepsFormatting(t *testing.T) {
	in := "<p><strong>Catering</strong> quotes due <em>Friday</em></p>"
	if got := sanitize.Body(in); got != in {
		t.Errorf("expected safe markup preserved, got %q", got)
	}
}

func TestBody_RemovesScript(t *testing.T) {
	got := sanitize.Body("<p>ok</p><script>alert('xss')</script>")
	if got != "<p>ok</p>" {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestBody_RemovesJavascriptHref(t *testing.T) {
	in := `<a href="javascript:alert('xss')">Click</a>`
	if got := sanitize.Body(in); got == in {
		t.Error("expected javascript: href to be removed")
	}
}
