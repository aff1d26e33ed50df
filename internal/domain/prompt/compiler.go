// Package prompt compiles an animal ambassador's behavioral configuration
// into the effective system prompt handed to the reply generator.
package prompt

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"zooworld/assistant-api/internal/domain/catalog"
)

// Compiled is the deterministic output of Compile.
type Compiled struct {
	// Prompt is the effective system prompt text.
	Prompt string
	// InputHash fingerprints the inputs; a mismatch against a stored hash
	// means the compiled prompt is stale and must be rebuilt.
	InputHash string
}

// Compile merges a personality, a guardrail, and knowledge references into a
// single system prompt. It is pure: the same inputs always produce the same
// Compiled value. Knowledge reference content is fetched downstream at call
// time; only identifiers appear in the prompt.
func Compile(personality *catalog.Personality, guardrail *catalog.Guardrail, knowledgeRefIDs []string) (Compiled, error) {
	if personality == nil {
		return Compiled{}, fmt.Errorf("personality is unresolved")
	}
	if guardrail == nil {
		return Compiled{}, fmt.Errorf("guardrail is unresolved")
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(personality.Description))
	b.WriteString("\n\n## Safety rules")
	for _, rule := range guardrail.Rules {
		b.WriteString(fmt.Sprintf("\n- [%s] %s", guardrail.Severity, rule))
	}
	if len(knowledgeRefIDs) > 0 {
		b.WriteString("\n\n## Knowledge references")
		for _, ref := range knowledgeRefIDs {
			b.WriteString("\n- ref:")
			b.WriteString(ref)
		}
	}

	return Compiled{
		Prompt:    b.String(),
		InputHash: InputHash(personality, guardrail, knowledgeRefIDs),
	}, nil
}

// InputHash computes the staleness fingerprint without building the prompt
// text. Version markers are the UpdatedAt timestamps of the referenced
// personality and guardrail, so a replace-in-place edit changes the hash.
// Knowledge refs are sorted: reordering them is not a semantic change.
func InputHash(personality *catalog.Personality, guardrail *catalog.Guardrail, knowledgeRefIDs []string) string {
	refs := append([]string(nil), knowledgeRefIDs...)
	sort.Strings(refs)

	h := sha256.New()
	fmt.Fprintf(h, "%s@%d\n", personality.ID, personality.UpdatedAt.UnixNano())
	fmt.Fprintf(h, "%s@%d\n", guardrail.ID, guardrail.UpdatedAt.UnixNano())
	for _, ref := range refs {
		fmt.Fprintf(h, "%s\n", ref)
	}
	return hex.EncodeToString(h.Sum(nil))
}
