package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// citationPattern matches inline citation tags like
// [source: policy.pdf, page: 3].
var citationPattern = regexp.MustCompile(`\[source:\s*([^,\]]+?)\s*,\s*page:\s*(\d+)\s*\]`)

// GroundingPolicy decides whether the model may answer and verifies that
// what it produced stays inside the provided context. It owns the prompt:
// callers hand it an assembled context and get back either a cited answer
// or a refusal. A refusal is a valid outcome, never an error.
type GroundingPolicy struct {
	prompts driven.PromptStore
	strict  bool
}

// NewGroundingPolicy creates a grounding policy.
// When strict is true, a generated answer whose citations cannot all be
// verified against the context is replaced with a refusal.
func NewGroundingPolicy(prompts driven.PromptStore, strict bool) *GroundingPolicy {
	return &GroundingPolicy{
		prompts: prompts,
		strict:  strict,
	}
}

// BuildPrompt renders the grounded answer prompt for a question and its
// assembled context. Each excerpt is preceded by its citation header so
// the model can cite by copying.
func (g *GroundingPolicy) BuildPrompt(assembled domain.AssembledContext, question string) (string, error) {
	template, err := g.prompts.Load(driven.PromptGroundedAnswer)
	if err != nil {
		return "", fmt.Errorf("load grounded answer prompt: %w", err)
	}

	var sb strings.Builder
	for i, cc := range assembled.Chunks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		cit := assembled.Citations[i]
		fmt.Fprintf(&sb, "[source: %s, page: %d]\n%s", cit.Document, cit.Page, cc.Chunk.Text)
	}

	return fmt.Sprintf(template, sb.String(), question), nil
}

// Evaluate turns raw model output into an Answer.
// It detects refusals, extracts and verifies citation tags against the
// context, and in strict mode refuses answers with no verifiable citation.
func (g *GroundingPolicy) Evaluate(raw string, assembled domain.AssembledContext) *domain.Answer {
	text := strings.TrimSpace(raw)

	if isRefusal(text) {
		return domain.Refusal()
	}

	citations := g.verifyCitations(text, assembled)
	if g.strict && len(citations) == 0 {
		logger.Info("Answer carried no verifiable citation, refusing")
		return domain.Refusal()
	}

	return &domain.Answer{
		Text:       text,
		Citations:  citations,
		Confidence: assembled.MeanScore(),
	}
}

// verifyCitations extracts citation tags from the text and keeps those
// matching a context citation. Results are in first-use order with
// duplicates collapsed. Tags naming sources outside the context are
// dropped; the model may not cite what it was not shown.
func (g *GroundingPolicy) verifyCitations(text string, assembled domain.AssembledContext) []domain.Citation {
	matches := citationPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return []domain.Citation{}
	}

	verified := make([]domain.Citation, 0, len(matches))
	seen := make(map[string]bool)

	for _, m := range matches {
		doc := strings.TrimSpace(m[1])
		page, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}

		key := fmt.Sprintf("%s:%d", doc, page)
		if seen[key] {
			continue
		}

		for _, cit := range assembled.Citations {
			if cit.Document == doc && cit.Page == page {
				verified = append(verified, cit)
				seen[key] = true
				break
			}
		}
		if !seen[key] {
			// Mark so a repeated bad tag is only logged once
			logger.Debug("Dropping unverifiable citation %s", key)
			seen[key] = true
		}
	}

	return verified
}

// isRefusal reports whether the model declined to answer.
// Models sometimes wrap the refusal sentence in extra words or echo it
// with a typographic apostrophe, so the check is containment over both
// apostrophe forms rather than equality.
func isRefusal(text string) bool {
	needle := strings.TrimSuffix(domain.RefusalMessage, ".")
	if strings.Contains(text, needle) {
		return true
	}
	curly := strings.ReplaceAll(text, "’", "'")
	return strings.Contains(curly, needle)
}
