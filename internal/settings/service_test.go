package settings

import (
	"strings"
	"testing"
)

func TestBuildSystemPrompt_PersonalityThenBusiness(t *testing.T) {
	got := BuildSystemPrompt("Friendly concierge.", Customization{BusinessName: "Acme"})

	pi := strings.Index(got, "Friendly concierge.")
	bi := strings.Index(got, "Acme")
	if pi < 0 {
		t.Fatalf("prompt missing personality text: %q", got)
	}
	if bi < 0 {
		t.Fatalf("prompt missing business name: %q", got)
	}
	if pi > bi {
		t.Fatalf("personality must come before business framing: %q", got)
	}
}

func TestBuildSystemPrompt_PersonalityPreferredOverFallback(t *testing.T) {
	got := BuildSystemPrompt("Crisp and direct.", Customization{
		BusinessName:        "Acme",
		FallbackPersonality: "Warm and chatty.",
	})
	if !strings.Contains(got, "Crisp and direct.") {
		t.Fatalf("expected personality text, got %q", got)
	}
	if strings.Contains(got, "Warm and chatty.") {
		t.Fatalf("fallback must not leak in when personality exists: %q", got)
	}
}

func TestBuildSystemPrompt_FallbackUsedWhenNoPersonality(t *testing.T) {
	got := BuildSystemPrompt("", Customization{
		BusinessName:        "Acme",
		FallbackPersonality: "Warm and chatty.",
	})
	if !strings.Contains(got, "Warm and chatty.") {
		t.Fatalf("expected fallback personality, got %q", got)
	}
}

func TestBuildSystemPrompt_MissingBusinessNameUsesPlaceholder(t *testing.T) {
	got := BuildSystemPrompt("Friendly concierge.", Customization{})
	if !strings.Contains(got, businessNamePlaceholder) {
		t.Fatalf("expected placeholder business name, got %q", got)
	}
}

func TestBuildSystemPrompt_ToneAndDescriptionIncluded(t *testing.T) {
	got := BuildSystemPrompt("P.", Customization{
		BusinessName: "Acme",
		Tone:         "cheerful",
		Description:  "We sell anvils.",
	})
	if !strings.Contains(got, "We sell anvils.") || !strings.Contains(got, "cheerful") {
		t.Fatalf("expected description and tone, got %q", got)
	}
}
