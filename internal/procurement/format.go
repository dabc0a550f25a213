package procurement

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amounts = message.NewPrinter(language.English)

// FormatRupees renders an amount rounded to whole rupees with thousands grouping, e.g. ₹4,800,000.
func FormatRupees(v float64) string {
	return amounts.Sprintf("₹%d", int64(math.Round(v)))
}

// Text renders the case as the plain-text block embedded in every prompt.
func (c Case) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "TENDER: %s\n", c.TenderID)
	fmt.Fprintf(&b, "TITLE: %s\n", c.Title)
	fmt.Fprintf(&b, "DEPARTMENT: %s\n", c.Department)
	fmt.Fprintf(&b, "VALUE: %s\n", FormatRupees(c.EstimatedValue))
	fmt.Fprintf(&b, "METHOD: %s\n", c.ProcurementMethod)
	fmt.Fprintf(&b, "PUBLICATION: %s\n", c.PublicationDate)
	fmt.Fprintf(&b, "BID OPENING: %s\n", c.BidOpeningDate)
	b.WriteString("\nBIDS RECEIVED:\n")
	for _, bid := range c.Bids {
		b.WriteString(bid.Line())
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\nSELECTED: %s\n", c.SelectedVendor)
	fmt.Fprintf(&b, "REASON: %s\n", c.SelectionReason)
	fmt.Fprintf(&b, "\nDOCUMENTS: %s\n", strings.Join(c.DocumentsAvailable, ", "))
	return b.String()
}

// Line renders one bid for the BIDS RECEIVED listing.
func (b Bid) Line() string {
	class := "Non-MSME"
	if b.IsMSME {
		class = "MSME"
	}
	line := fmt.Sprintf("- %s: %s (%s)", b.VendorName, FormatRupees(b.BidAmount), class)
	if b.TechnicalScore != nil {
		line += fmt.Sprintf(" [technical score %g]", *b.TechnicalScore)
	}
	return line
}
