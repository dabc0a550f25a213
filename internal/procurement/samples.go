package procurement

func score(v float64) *float64 { return &v }

// SampleViolation returns a case that breaks the open tender threshold, the bid window
// and the MSME preference rule.
func SampleViolation() Case {
	return Case{
		TenderID:          "TENDER-2024-001",
		Title:             "Supply of Computer Equipment for Government Schools",
		Department:        "Department of Education",
		EstimatedValue:    5000000,
		ProcurementMethod: MethodLimitedTender,
		PublicationDate:   "2024-01-15",
		BidOpeningDate:    "2024-01-25",
		Bids: []Bid{
			{VendorName: "ABC Technologies", BidAmount: 4800000, IsMSME: false, TechnicalScore: score(85)},
			{VendorName: "XYZ Computers", BidAmount: 5100000, IsMSME: true, TechnicalScore: score(82)},
		},
		SelectedVendor:     "ABC Technologies",
		SelectionReason:    "Lowest bid",
		DocumentsAvailable: []string{"Tender Notice"},
	}
}

// SampleCompliant returns a case that follows the limited tender rules.
func SampleCompliant() Case {
	return Case{
		TenderID:          "TENDER-2024-002",
		Title:             "Annual Maintenance Contract for Office Equipment",
		Department:        "Ministry of Finance",
		EstimatedValue:    1500000,
		ProcurementMethod: MethodLimitedTender,
		PublicationDate:   "2024-02-01",
		BidOpeningDate:    "2024-02-20",
		Bids: []Bid{
			{VendorName: "ServicePro Systems", BidAmount: 1400000, IsMSME: true, TechnicalScore: score(88)},
			{VendorName: "TechCare Solutions", BidAmount: 1550000, IsMSME: false, TechnicalScore: score(90)},
		},
		SelectedVendor:  "ServicePro Systems",
		SelectionReason: "L1 Bidder and MSME",
		DocumentsAvailable: []string{
			"Tender Notice",
			"Technical Evaluation Report",
			"Financial Bid Summary",
			"Committee Approval",
		},
	}
}
