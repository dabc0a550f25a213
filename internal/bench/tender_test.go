package bench

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyaya-backend/internal/llm"
	"nyaya-backend/internal/procurement"
)

func TestParseTenderBuildsDraft(t *testing.T) {
	client := &fakeClient{reply: func(ctx context.Context, prompt string) (string, error) {
		return "Extracted:\n" + `{"tender_id":"GEM/2024/B/4521","title":"Laptops for district offices",` +
			`"estimated_value":"fifty lakh","procurement_method":"open_tender","publication_date":"2024-03-01",` +
			`"selected_vendor":"","bids":[{"vendor_name":"Acme","bid_amount":4200000,"is_msme":true}]}`, nil
	}}
	o := New(client)

	draft, res, err := o.ParseTender(context.Background(), "Tender GEM/2024/B/4521 for laptops, value fifty lakh")
	require.NoError(t, err)

	assert.True(t, res.OK())
	require.NotNil(t, draft.TenderID)
	assert.Equal(t, "GEM/2024/B/4521", *draft.TenderID)
	assert.Nil(t, draft.EstimatedValue)
	assert.Nil(t, draft.SelectedVendor)
	require.NotNil(t, draft.ProcurementMethod)
	assert.Equal(t, procurement.MethodOpenTender, *draft.ProcurementMethod)
	require.Len(t, draft.Bids, 1)
	assert.Equal(t, 4200000.0, *draft.Bids[0].BidAmount)

	require.Equal(t, 1, client.calls())
	assert.True(t, strings.HasPrefix(client.prompts[0], "You are a LEGAL DOCUMENT PARSER."))
	assert.Contains(t, client.prompts[0], "TENDER TEXT:\nTender GEM/2024/B/4521")
}

func TestParseTenderFailureReturnsSentinel(t *testing.T) {
	client := &fakeClient{reply: func(ctx context.Context, prompt string) (string, error) {
		return "Sorry, I could not find a tender.", nil
	}}

	draft, res, err := New(client).ParseTender(context.Background(), "random text")
	require.NoError(t, err)

	assert.False(t, res.OK())
	assert.Equal(t, "Sorry, I could not find a tender.", res.Raw())
	assert.Equal(t, procurement.Draft{}, draft)
}

func TestParseTenderRejectsEmptyText(t *testing.T) {
	client := scripted()
	_, _, err := New(client).ParseTender(context.Background(), "  \n ")

	assert.ErrorIs(t, err, ErrEmptyTender)
	assert.Zero(t, client.calls())
}

func TestParseTenderTransportFailure(t *testing.T) {
	client := &fakeClient{reply: func(ctx context.Context, prompt string) (string, error) {
		return "", &llm.StatusError{StatusCode: 503, Body: "loading model"}
	}}
	_, _, err := New(client).ParseTender(context.Background(), "text")

	assert.ErrorIs(t, err, llm.ErrTransport)
}

func TestCrossExamineUsesBenchPrompt(t *testing.T) {
	o := New(scripted())
	c := procurement.SampleViolation()
	result, err := o.Analyze(context.Background(), c)
	require.NoError(t, err)

	client := &fakeClient{reply: func(ctx context.Context, prompt string) (string, error) {
		return "  Rule 149 requires an open tender.  ", nil
	}}
	answer, err := New(client).CrossExamine(context.Background(), "Why was this rejected?", c, result)
	require.NoError(t, err)

	assert.Equal(t, "  Rule 149 requires an open tender.  ", answer)
	require.Equal(t, 1, client.calls())
	assert.Equal(t, DefaultPrompts().BenchChat, client.systems[0])
	assert.Contains(t, client.prompts[0], `"tender_id": "TENDER-2024-001"`)
	assert.Contains(t, client.prompts[0], `"verdict": "REJECT"`)
	assert.True(t, strings.HasSuffix(client.prompts[0], "QUESTION:\nWhy was this rejected?"))
}

func TestCrossExamineRequiresQuestion(t *testing.T) {
	client := scripted()
	_, err := New(client).CrossExamine(context.Background(), " ", procurement.SampleCompliant(), AnalysisResult{})

	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Zero(t, client.calls())
}
