// Package roles adapts a raw LLMService into the Generator, Reviewer and
// Extractor capabilities the pipeline depends on. Each call is a fresh
// two-message chat: the role's system prompt, then the task material.
package roles

import (
	"context"
	"fmt"
	"strings"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
)

// Ensure Roles implements the capability interfaces.
var (
	_ driven.Generator = (*Roles)(nil)
	_ driven.Reviewer  = (*Roles)(nil)
	_ driven.Extractor = (*Roles)(nil)
)

// extractionTemperature keeps JSON extraction deterministic regardless of
// the generation setting.
const extractionTemperature = 0

// Roles sends role prompts to an LLM.
type Roles struct {
	llm      driven.LLMService
	prompts  driven.PromptStore
	settings domain.GenerationSettings
}

// New creates the role adapter. llm may be nil, in which case every call
// fails with domain.ErrGeneratorUnavailable.
func New(llm driven.LLMService, prompts driven.PromptStore, settings domain.GenerationSettings) *Roles {
	return &Roles{llm: llm, prompts: prompts, settings: settings}
}

// Run executes the named role against prompt, with extra appended when set.
func (r *Roles) Run(ctx context.Context, role, prompt, extra string) (string, error) {
	content := prompt
	if strings.TrimSpace(extra) != "" {
		content = prompt + "\n\n" + extra
	}
	return r.chat(ctx, role, content, r.settings.Temperature)
}

// Review asks the reviewer role to approve candidate or return a fixed one.
func (r *Roles) Review(ctx context.Context, candidate, requirements string) (string, error) {
	var b strings.Builder
	b.WriteString("## Requirements\n")
	b.WriteString(requirements)
	b.WriteString("\n\n## Candidate\n")
	b.WriteString(candidate)
	return r.chat(ctx, driven.PromptReviewer, b.String(), r.settings.Temperature)
}

// Extract asks the extractor role for a JSON requirement object. The
// current profile is passed so the model can resolve references.
func (r *Roles) Extract(ctx context.Context, message, contextJSON string) (string, error) {
	var b strings.Builder
	if contextJSON != "" && contextJSON != "{}" {
		b.WriteString("Known so far:\n")
		b.WriteString(contextJSON)
		b.WriteString("\n\n")
	}
	b.WriteString("User message:\n")
	b.WriteString(message)
	return r.chat(ctx, driven.PromptExtractor, b.String(), extractionTemperature)
}

func (r *Roles) chat(ctx context.Context, role, content string, temperature float64) (string, error) {
	if r.llm == nil {
		return "", fmt.Errorf("%w: no LLM configured", domain.ErrGeneratorUnavailable)
	}

	system, err := r.systemPrompt(role)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneratorUnavailable, err)
	}

	messages := make([]driven.ChatMessage, 0, 2)
	if system != "" {
		messages = append(messages, driven.ChatMessage{Role: "system", Content: system})
	}
	messages = append(messages, driven.ChatMessage{Role: "user", Content: content})

	out, err := r.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   r.settings.MaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %s: %w", domain.ErrGeneratorUnavailable, role, err)
	}
	return out, nil
}

func (r *Roles) systemPrompt(role string) (string, error) {
	if r.prompts == nil {
		return "", nil
	}
	prompt, err := r.prompts.Load(role)
	if err != nil {
		return "", fmt.Errorf("load %s prompt: %w", role, err)
	}
	return prompt, nil
}
