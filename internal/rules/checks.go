package rules

import (
	"fmt"
	"math"
	"strings"
	"time"

	"nyaya-backend/internal/procurement"
)

const dateLayout = "2006-01-02"

// Severity of an advisory finding, using the scale the dimension prompts ask for.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Finding is a deterministic observation about a case. Findings are advisory:
// they are reported next to the model's verdict and never sent to the model.
type Finding struct {
	Check    string `json:"check"`
	Severity string `json:"severity"`
	Rule     string `json:"rule"`
	Message  string `json:"message"`
}

// Check runs every deterministic check against c.
func Check(c procurement.Case) []Finding {
	return Default().Check(c)
}

// Check runs every deterministic check against c. The result is never nil.
func (kb *KnowledgeBase) Check(c procurement.Case) []Finding {
	out := []Finding{}
	out = append(out, kb.checkMethod(c)...)
	out = append(out, kb.checkBidWindow(c)...)
	out = append(out, kb.checkMSMEPreference(c)...)
	out = append(out, checkSelection(c)...)
	return out
}

func (kb *KnowledgeBase) checkMethod(c procurement.Case) []Finding {
	if c.EstimatedValue < kb.OpenTenderThreshold {
		return nil
	}
	switch c.ProcurementMethod {
	case procurement.MethodLimitedTender:
		return []Finding{{
			Check:    "procurement_method",
			Severity: SeverityCritical,
			Rule:     "GFR 149",
			Message: fmt.Sprintf("estimated value %s is at or above the open tender threshold %s but limited tender was used",
				procurement.FormatRupees(c.EstimatedValue), procurement.FormatRupees(kb.OpenTenderThreshold)),
		}}
	case procurement.MethodSingleSource:
		if strings.TrimSpace(c.SelectionReason) == "" {
			return []Finding{{
				Check:    "procurement_method",
				Severity: SeverityHigh,
				Rule:     "GFR 166",
				Message:  "single source procurement above the open tender threshold has no written justification",
			}}
		}
	}
	return nil
}

// minimumBidDays returns the minimum bid submission window for the case.
func (kb *KnowledgeBase) minimumBidDays(c procurement.Case) (int, string) {
	if c.ProcurementMethod == procurement.MethodSingleSource {
		return 0, ""
	}
	if kb.TechnicalBidThreshold > 0 && c.EstimatedValue > kb.TechnicalBidThreshold {
		return 30, "GFR 149"
	}
	if c.ProcurementMethod == procurement.MethodOpenTender || c.EstimatedValue >= kb.OpenTenderThreshold {
		return kb.byID["rule_149"].MinDays, "GFR 149"
	}
	return kb.byID["rule_150"].MinDays, "GFR 150"
}

func (kb *KnowledgeBase) checkBidWindow(c procurement.Case) []Finding {
	minDays, rule := kb.minimumBidDays(c)
	if minDays == 0 {
		return nil
	}
	published, err1 := time.Parse(dateLayout, c.PublicationDate)
	opening, err2 := time.Parse(dateLayout, c.BidOpeningDate)
	if err1 != nil || err2 != nil {
		return []Finding{{
			Check:    "bid_window",
			Severity: SeverityLow,
			Rule:     rule,
			Message:  "publication or bid opening date is not a YYYY-MM-DD date; bid window not checked",
		}}
	}
	days := int(opening.Sub(published).Hours() / 24)
	if days < 0 {
		return []Finding{{
			Check:    "bid_window",
			Severity: SeverityHigh,
			Rule:     rule,
			Message:  "bid opening date is before the publication date",
		}}
	}
	if days < minDays {
		return []Finding{{
			Check:    "bid_window",
			Severity: SeverityHigh,
			Rule:     rule,
			Message:  fmt.Sprintf("bid window of %d days is shorter than the %d day minimum", days, minDays),
		}}
	}
	return nil
}

// checkMSMEPreference flags MSME bids within the preference band of L1 when a
// non-MSME vendor was selected.
func (kb *KnowledgeBase) checkMSMEPreference(c procurement.Case) []Finding {
	if len(c.Bids) == 0 || kb.MSMEPreferenceBand <= 0 {
		return nil
	}
	l1 := c.Bids[0]
	for _, b := range c.Bids[1:] {
		if b.BidAmount < l1.BidAmount {
			l1 = b
		}
	}
	if l1.IsMSME {
		return nil
	}
	for _, b := range c.Bids {
		if b.VendorName == c.SelectedVendor && b.IsMSME {
			return nil
		}
	}
	band := l1.BidAmount * (1 + kb.MSMEPreferenceBand)
	var out []Finding
	for _, b := range c.Bids {
		if !b.IsMSME || b.BidAmount > band {
			continue
		}
		out = append(out, Finding{
			Check:    "msme_preference",
			Severity: SeverityHigh,
			Rule:     "GFR 161",
			Message: fmt.Sprintf("MSME %s bid %s is within %.0f%% of L1 %s (%s); confirm it was offered to match L1",
				b.VendorName, procurement.FormatRupees(b.BidAmount), math.Round(kb.MSMEPreferenceBand*100),
				l1.VendorName, procurement.FormatRupees(l1.BidAmount)),
		})
	}
	return out
}

func checkSelection(c procurement.Case) []Finding {
	for _, b := range c.Bids {
		if b.VendorName == c.SelectedVendor {
			return nil
		}
	}
	return []Finding{{
		Check:    "selected_vendor",
		Severity: SeverityHigh,
		Rule:     "GFR 144",
		Message:  fmt.Sprintf("selected vendor %q did not submit a bid", c.SelectedVendor),
	}}
}
