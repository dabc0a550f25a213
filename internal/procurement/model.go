// Package procurement defines the procurement case under review and its text rendering.
package procurement

// Method is the procurement method chosen by the department.
type Method string

const (
	MethodOpenTender    Method = "open_tender"
	MethodLimitedTender Method = "limited_tender"
	MethodSingleSource  Method = "single_source"
)

// Valid reports whether m is one of the known methods.
func (m Method) Valid() bool {
	switch m {
	case MethodOpenTender, MethodLimitedTender, MethodSingleSource:
		return true
	default:
		return false
	}
}

// Bid is one vendor's offer. Bids keep the order in which they were submitted.
type Bid struct {
	VendorName     string   `json:"vendor_name" validate:"required"`
	BidAmount      float64  `json:"bid_amount" validate:"gte=0"`
	IsMSME         bool     `json:"is_msme"`
	TechnicalScore *float64 `json:"technical_score" validate:"omitempty,gte=0,lte=100"`
}

// Case is a procurement record submitted for review. It is not modified after submission.
type Case struct {
	TenderID           string   `json:"tender_id" validate:"required"`
	Title              string   `json:"title" validate:"required"`
	Department         string   `json:"department" validate:"required"`
	EstimatedValue     float64  `json:"estimated_value" validate:"gte=0"`
	ProcurementMethod  Method   `json:"procurement_method" validate:"required,oneof=open_tender limited_tender single_source"`
	PublicationDate    string   `json:"publication_date" validate:"required,datetime=2006-01-02"`
	BidOpeningDate     string   `json:"bid_opening_date" validate:"required,datetime=2006-01-02"`
	Bids               []Bid    `json:"bids" validate:"required,min=1,dive"`
	SelectedVendor     string   `json:"selected_vendor" validate:"required"`
	SelectionReason    string   `json:"selection_reason"`
	DocumentsAvailable []string `json:"documents_available"`
}
