package procurement

import "encoding/json"

// Draft is a best-effort Case recovered from unstructured tender text.
// Fields the text did not yield are nil and omitted from JSON.
type Draft struct {
	TenderID           *string    `json:"tender_id,omitempty"`
	Title              *string    `json:"title,omitempty"`
	Department         *string    `json:"department,omitempty"`
	EstimatedValue     *float64   `json:"estimated_value,omitempty"`
	ProcurementMethod  *Method    `json:"procurement_method,omitempty"`
	PublicationDate    *string    `json:"publication_date,omitempty"`
	BidOpeningDate     *string    `json:"bid_opening_date,omitempty"`
	Bids               []DraftBid `json:"bids,omitempty"`
	SelectedVendor     *string    `json:"selected_vendor,omitempty"`
	SelectionReason    *string    `json:"selection_reason,omitempty"`
	DocumentsAvailable []string   `json:"documents_available,omitempty"`
}

// DraftBid is a bid recovered from unstructured text.
type DraftBid struct {
	VendorName     *string  `json:"vendor_name,omitempty"`
	BidAmount      *float64 `json:"bid_amount,omitempty"`
	IsMSME         *bool    `json:"is_msme,omitempty"`
	TechnicalScore *float64 `json:"technical_score,omitempty"`
}

// DraftFromObject maps a decoded model object onto a Draft. Each field is decoded on
// its own, so a field whose value has the wrong type is left out rather than failing
// the whole draft or becoming a zero value. An unknown procurement method is dropped
// too, and empty strings count as absent.
func DraftFromObject(object map[string]any) (Draft, error) {
	data, err := json.Marshal(object)
	if err != nil {
		return Draft{}, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Draft{}, err
	}

	d := Draft{
		TenderID:           text(raw, "tender_id"),
		Title:              text(raw, "title"),
		Department:         text(raw, "department"),
		EstimatedValue:     field[float64](raw, "estimated_value"),
		ProcurementMethod:  field[Method](raw, "procurement_method"),
		PublicationDate:    text(raw, "publication_date"),
		BidOpeningDate:     text(raw, "bid_opening_date"),
		Bids:               draftBids(raw["bids"]),
		SelectedVendor:     text(raw, "selected_vendor"),
		SelectionReason:    text(raw, "selection_reason"),
		DocumentsAvailable: stringList(raw["documents_available"]),
	}
	if d.ProcurementMethod != nil && !d.ProcurementMethod.Valid() {
		d.ProcurementMethod = nil
	}
	return d, nil
}

// field decodes raw[key] as a T, or returns nil when it is missing, null or mistyped.
func field[T any](raw map[string]json.RawMessage, key string) *T {
	data, ok := raw[key]
	if !ok {
		return nil
	}
	var v *T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	return v
}

func text(raw map[string]json.RawMessage, key string) *string {
	s := field[string](raw, key)
	if s != nil && *s == "" {
		return nil
	}
	return s
}

// draftBids keeps every element that is an object. Non-object elements are skipped.
func draftBids(data json.RawMessage) []DraftBid {
	var items []json.RawMessage
	if len(data) == 0 || json.Unmarshal(data, &items) != nil {
		return nil
	}
	var bids []DraftBid
	for _, item := range items {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(item, &raw); err != nil || raw == nil {
			continue
		}
		bids = append(bids, DraftBid{
			VendorName:     text(raw, "vendor_name"),
			BidAmount:      field[float64](raw, "bid_amount"),
			IsMSME:         field[bool](raw, "is_msme"),
			TechnicalScore: field[float64](raw, "technical_score"),
		})
	}
	return bids
}

// stringList keeps the non-empty string elements of a JSON array.
func stringList(data json.RawMessage) []string {
	var items []json.RawMessage
	if len(data) == 0 || json.Unmarshal(data, &items) != nil {
		return nil
	}
	var out []string
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil && s != "" {
			out = append(out, s)
		}
	}
	return out
}
