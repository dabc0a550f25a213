package bench

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"nyaya-backend/internal/decode"
	"nyaya-backend/internal/procurement"
)

var (
	// ErrEmptyTender is returned when there is no tender text to parse.
	ErrEmptyTender = errors.New("tender text is empty")
	// ErrEmptyQuestion is returned when a cross-examination has no question.
	ErrEmptyQuestion = errors.New("question is empty")
)

// ParseTender asks the model to extract a case from free tender text. When the
// reply holds no object, the draft is empty and the result is the ParseFailure.
func (o *Orchestrator) ParseTender(ctx context.Context, text string) (procurement.Draft, decode.Result, error) {
	if strings.TrimSpace(text) == "" {
		return procurement.Draft{}, decode.Result{}, ErrEmptyTender
	}
	reply, err := o.client.Complete(ctx, o.prompts.TenderPrompt(text), "")
	if err != nil {
		return procurement.Draft{}, decode.Result{}, fmt.Errorf("parse tender: %w", err)
	}
	res := decodeReply("tender", "", reply)
	if !res.OK() {
		return procurement.Draft{}, res, nil
	}
	draft, err := procurement.DraftFromObject(res.Object())
	if err != nil {
		return procurement.Draft{}, decode.Failure(reply), nil
	}
	return draft, res, nil
}

// CrossExamine answers a follow-up question about a delivered result. The reply
// is returned as the model wrote it.
func (o *Orchestrator) CrossExamine(ctx context.Context, question string, c procurement.Case, result AnalysisResult) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuestion
	}
	caseJSON, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode case: %w", err)
	}
	resultJSON, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	answer, err := o.client.Complete(ctx, o.prompts.BenchPrompt(question, caseJSON, resultJSON), o.prompts.BenchChat)
	if err != nil {
		return "", fmt.Errorf("cross examine: %w", err)
	}
	return answer, nil
}
