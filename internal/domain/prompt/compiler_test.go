package prompt_test

import (
	"strings"
	"testing"
	"time"

	"zooworld/assistant-api/internal/domain/catalog"
	"zooworld/assistant-api/internal/domain/prompt"
)

func testPersonality() *catalog.Personality {
	return &catalog.Personality{
		ID:          "gentle-storyteller",
		Name:        "Gentle Storyteller",
		Description: "You are Bella, a warm hedgehog who tells gentle stories.",
		UpdatedAt:   time.Unix(1700000000, 0),
	}
}

func testGuardrail() *catalog.Guardrail {
	return &catalog.Guardrail{
		ID:        "family-strict",
		Name:      "Family Strict",
		Rules:     []string{"Never discuss violence.", "Redirect personal questions."},
		Severity:  catalog.SeverityStrict,
		UpdatedAt: time.Unix(1700000100, 0),
	}
}

func TestCompile_Deterministic(t *testing.T) {
	refs := []string{"kb_02", "kb_01"}

	first, err := prompt.Compile(testPersonality(), testGuardrail(), refs)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	second, err := prompt.Compile(testPersonality(), testGuardrail(), refs)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	if first.Prompt != second.Prompt {
		t.Error("expected identical prompts for identical inputs")
	}
	if first.InputHash != second.InputHash {
		t.Error("expected identical hashes for identical inputs")
	}
}

func TestCompile_SectionOrder(t *testing.T) {
	compiled, err := prompt.Compile(testPersonality(), testGuardrail(), []string{"kb_01"})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	descIdx := strings.Index(compiled.Prompt, "warm hedgehog")
	rulesIdx := strings.Index(compiled.Prompt, "Never discuss violence.")
	refsIdx := strings.Index(compiled.Prompt, "ref:kb_01")

	if descIdx == -1 || rulesIdx == -1 || refsIdx == -1 {
		t.Fatalf("missing sections in prompt:\n%s", compiled.Prompt)
	}
	if !(descIdx < rulesIdx && rulesIdx < refsIdx) {
		t.Errorf("sections out of order: desc=%d rules=%d refs=%d", descIdx, rulesIdx, refsIdx)
	}
}

func TestCompile_RulesKeepStoredOrderAndSeverity(t *testing.T) {
	compiled, err := prompt.Compile(testPersonality(), testGuardrail(), nil)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	first := strings.Index(compiled.Prompt, "[strict] Never discuss violence.")
	second := strings.Index(compiled.Prompt, "[strict] Redirect personal questions.")
	if first == -1 || second == -1 || first > second {
		t.Errorf("guardrail rules not in stored order with severity annotation:\n%s", compiled.Prompt)
	}
}

func TestInputHash_RefOrderInsensitive(t *testing.T) {
	a := prompt.InputHash(testPersonality(), testGuardrail(), []string{"kb_01", "kb_02"})
	b := prompt.InputHash(testPersonality(), testGuardrail(), []string{"kb_02", "kb_01"})
	if a != b {
		t.Error("knowledge ref ordering should not change the hash")
	}
}

func TestInputHash_SensitiveToEdits(t *testing.T) {
	base := prompt.InputHash(testPersonality(), testGuardrail(), nil)

	edited := testPersonality()
	edited.UpdatedAt = edited.UpdatedAt.Add(time.Second)
	if prompt.InputHash(edited, testGuardrail(), nil) == base {
		t.Error("personality edit should change the hash")
	}

	otherGuardrail := testGuardrail()
	otherGuardrail.UpdatedAt = otherGuardrail.UpdatedAt.Add(time.Second)
	if prompt.InputHash(testPersonality(), otherGuardrail, nil) == base {
		t.Error("guardrail edit should change the hash")
	}

	if prompt.InputHash(testPersonality(), testGuardrail(), []string{"kb_09"}) == base {
		t.Error("knowledge ref change should change the hash")
	}
}

func TestCompile_UnresolvedInputs(t *testing.T) {
	if _, err := prompt.Compile(nil, testGuardrail(), nil); err == nil {
		t.Error("expected error for missing personality")
	}
	if _, err := prompt.Compile(testPersonality(), nil, nil); err == nil {
		t.Error("expected error for missing guardrail")
	}
}
