package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyaya-backend/internal/procurement"
)

func TestContextAboveThresholdCitesOpenTender(t *testing.T) {
	ctx := Context(5000000, procurement.MethodLimitedTender)

	assert.Contains(t, ctx, "GFR RULE 149: Open tender inquiry is mandatory")
	assert.NotContains(t, ctx, "GFR RULE 150")
	assert.Contains(t, ctx, "GFR RULE 161")
	assert.NotContains(t, ctx, "GFR RULE 166")
}

func TestContextBelowThresholdCitesLimitedTender(t *testing.T) {
	ctx := Context(1500000, procurement.MethodLimitedTender)

	assert.Contains(t, ctx, "GFR RULE 150: Limited tender inquiry may be adopted")
	assert.NotContains(t, ctx, "GFR RULE 149")
}

func TestContextThresholdIsInclusive(t *testing.T) {
	assert.Contains(t, Context(2500000, procurement.MethodOpenTender), "GFR RULE 149")
	assert.Contains(t, Context(2499999, procurement.MethodOpenTender), "GFR RULE 150")
}

func TestContextSingleSourceAddsRule166(t *testing.T) {
	ctx := Context(100000, procurement.MethodSingleSource)

	assert.Contains(t, ctx, "GFR RULE 166: Single source procurement only in genuine emergency")
}

func TestContextOrderAndArticles(t *testing.T) {
	ctx := Context(100000, procurement.MethodSingleSource)

	want := "GFR RULE 150: Limited tender inquiry may be adopted when estimated value is less than ₹25 lakh. " +
		"Should not be used to avoid open competition.\n\n" +
		"GFR RULE 161: Micro and Small Enterprises shall be given preference. If MSME quotes within L1+15%, " +
		"they shall be given opportunity to match L1 price. 25% procurement should be from MSMEs.\n\n" +
		"GFR RULE 166: Single source procurement only in genuine emergency or when only one source exists. " +
		"Written justification and competent authority approval mandatory.\n\n" +
		"ARTICLE 14: State shall not deny equality before law. All vendors must be treated equally.\n\n" +
		"ARTICLE 19: Citizens have right to know how public money is spent. Procurement decisions must be transparent."
	assert.Equal(t, want, ctx)
}

func TestContextIsDeterministic(t *testing.T) {
	assert.Equal(t, Context(3200000, procurement.MethodOpenTender), Context(3200000, procurement.MethodOpenTender))
}

func TestLoadRejectsIncompleteKnowledgeBase(t *testing.T) {
	_, err := Load([]byte("open_tender_threshold: 100\nrules:\n  - id: rule_149\n    label: X\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing rule_150")
}

func TestCheckViolationSample(t *testing.T) {
	findings := Check(procurement.SampleViolation())

	checks := map[string]Finding{}
	for _, f := range findings {
		checks[f.Check] = f
	}
	require.Len(t, findings, 3)
	assert.Equal(t, SeverityCritical, checks["procurement_method"].Severity)
	assert.Equal(t, "GFR 149", checks["procurement_method"].Rule)
	assert.Contains(t, checks["bid_window"].Message, "10 days is shorter than the 21 day minimum")
	assert.Contains(t, checks["msme_preference"].Message, "XYZ Computers")
}

func TestCheckCompliantSampleIsClean(t *testing.T) {
	findings := Check(procurement.SampleCompliant())

	assert.NotNil(t, findings)
	assert.Empty(t, findings)
}

func TestCheckLargeTenderNeedsThirtyDays(t *testing.T) {
	c := procurement.SampleCompliant()
	c.EstimatedValue = 20000000
	c.ProcurementMethod = procurement.MethodOpenTender
	c.PublicationDate = "2024-03-01"
	c.BidOpeningDate = "2024-03-26"

	findings := Check(c)

	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "25 days is shorter than the 30 day minimum")
}

func TestCheckSelectedVendorMustHaveBid(t *testing.T) {
	c := procurement.SampleCompliant()
	c.SelectedVendor = "Ghost Traders"

	findings := Check(c)

	require.NotEmpty(t, findings)
	assert.Equal(t, "selected_vendor", findings[len(findings)-1].Check)
}

func TestCheckMSMEOutsideBandIsNotFlagged(t *testing.T) {
	c := procurement.SampleViolation()
	c.EstimatedValue = 1000000
	c.PublicationDate = "2024-01-01"
	c.BidOpeningDate = "2024-01-20"
	c.Bids[1].BidAmount = 6000000

	assert.Empty(t, Check(c))
}
