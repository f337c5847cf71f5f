package outreach

import (
	"strings"
	"testing"
)

func TestComposeOutreachEmailWithoutArtifact(t *testing.T) {
	html := ComposeOutreachEmail("Ada Lovelace", "Backend Engineer", "")

	if !strings.Contains(html, "Ada Lovelace") {
		t.Fatalf("expected candidate name in body")
	}
	if !strings.Contains(html, "Backend Engineer") {
		t.Fatalf("expected job title in body")
	}
	if strings.Contains(html, "<a href=") {
		t.Fatalf("expected no call-to-action link without an artifact url")
	}
}

func TestComposeOutreachEmailWithArtifact(t *testing.T) {
	html := ComposeOutreachEmail("Ada Lovelace", "Backend Engineer", "https://files.example.com/resume.pdf")

	if !strings.Contains(html, `href="https://files.example.com/resume.pdf"`) {
		t.Fatalf("expected call-to-action link, got: %s", html)
	}
}

func TestComposeOutreachEmailEscapesMarkup(t *testing.T) {
	html := ComposeOutreachEmail("<script>alert(1)</script>", "Engineer", "")

	if strings.Contains(html, "<script>") {
		t.Fatalf("expected candidate name escaped")
	}
}
