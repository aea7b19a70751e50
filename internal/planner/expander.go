package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/admitscan/internal/llm"
)

// LLMExpander appends model-suggested course queries to a base plan. The
// deterministic queries always come first; failures leave the base plan as is.
type LLMExpander struct {
	Base   Planner
	Client llm.Client
	Model  string
}

const expanderSystemMessage = "You help find official university course pages. Respond with strict JSON only, no narration. The JSON schema is {\"queries\": string[1..5]}. Each query is a concise web search string for the program's official handbook or entry requirements page."

// Plan implements Planner.
func (e *LLMExpander) Plan(ctx context.Context, in Input) (Plan, error) {
	base := e.Base
	if base == nil {
		base = NewBuilder()
	}
	plan, err := base.Plan(ctx, in)
	if err != nil {
		return Plan{}, err
	}
	if e.Client == nil || strings.TrimSpace(e.Model) == "" {
		return plan, nil
	}
	extra, err := e.suggest(ctx, in, plan.Level)
	if err != nil {
		log.Warn().Err(err).Str("stage", "planner").Msg("query expansion failed; using deterministic queries")
		return plan, nil
	}
	n := in.N
	if n <= 0 {
		n = DefaultN
	}
	plan.Course = toQueries(withExtras(Texts(plan.Course), extra, n), PurposeCourse)
	return plan, nil
}

// withExtras keeps the deterministic queries first but reserves tail slots for
// new model queries, so a full base list cannot crowd them out.
func withExtras(base, extra []string, n int) []string {
	known := map[string]struct{}{}
	for _, q := range base {
		known[lower(strings.TrimSpace(q))] = struct{}{}
	}
	var fresh []string
	for _, q := range sanitize(extra, len(extra)) {
		if _, ok := known[lower(q)]; !ok {
			fresh = append(fresh, q)
		}
	}
	reserve := min(len(fresh), max(1, n/3))
	reserve = min(len(fresh), max(reserve, n-len(base)))
	keep := min(len(base), n-reserve)
	texts := append(append([]string(nil), base[:keep]...), fresh[:reserve]...)
	return sanitize(texts, n)
}

func (e *LLMExpander) suggest(ctx context.Context, in Input, level StudyLevel) ([]string, error) {
	resp, err := e.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: expanderSystemMessage},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(in, level)},
		},
		Temperature: 0.1,
		N:           1,
	})
	if err != nil {
		return nil, fmt.Errorf("expander call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices")
	}
	var payload struct {
		Queries []string `json:"queries"`
	}
	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("parse expander json: %w", err)
	}
	if len(payload.Queries) == 0 {
		return nil, errors.New("empty expander output")
	}
	return payload.Queries, nil
}

func buildUserPrompt(in Input, level StudyLevel) string {
	var sb strings.Builder
	sb.WriteString("University: ")
	sb.WriteString(in.University)
	sb.WriteString("\nProgram: ")
	sb.WriteString(in.Program)
	if in.Domain != "" {
		sb.WriteString("\nOfficial domain: ")
		sb.WriteString(in.Domain)
	}
	if level != LevelUnknown {
		sb.WriteString("\nStudy level: ")
		sb.WriteString(level.String())
	}
	return sb.String()
}
