package model

import (
	"encoding/json"
	"fmt"
)

// DocumentType discriminates the parsed payload of a trade document.
type DocumentType string

const (
	DocInvoice        DocumentType = "invoice"
	DocBillOfLading   DocumentType = "bl"
	DocPackingList    DocumentType = "packing_list"
	DocLetterOfCredit DocumentType = "lc"
)

func ParseDocumentType(s string) (DocumentType, error) {
	switch t := DocumentType(s); t {
	case DocInvoice, DocBillOfLading, DocPackingList, DocLetterOfCredit:
		return t, nil
	}
	return "", fmt.Errorf("알 수 없는 문서 유형입니다: %q", s)
}

type DocumentStatus string

const (
	DocStatusUploaded  DocumentStatus = "uploaded"
	DocStatusParsed    DocumentStatus = "parsed"
	DocStatusConfirmed DocumentStatus = "confirmed"
	DocStatusError     DocumentStatus = "error"
)

// DocumentData is implemented by exactly one payload type per DocumentType.
type DocumentData interface {
	DocType() DocumentType
}

type InvoiceLine struct {
	Product   string  `json:"product"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	UnitPrice float64 `json:"unit_price"`
	Amount    float64 `json:"amount"`
	HSCode    string  `json:"hs_code,omitempty"`
}

type InvoiceData struct {
	InvoiceNo       string        `json:"invoice_no"`
	Date            string        `json:"date"`
	Customer        string        `json:"customer"`
	CustomerAddress string        `json:"customer_address,omitempty"`
	Country         string        `json:"country,omitempty"`
	Currency        string        `json:"currency"`
	Items           []InvoiceLine `json:"items,omitempty"`
	Total           float64       `json:"total"`
	Amount          float64       `json:"amount,omitempty"`
	PaymentTerms    string        `json:"payment_terms,omitempty"`
	Incoterms       string        `json:"incoterms,omitempty"`
	Origin          string        `json:"origin,omitempty"`
}

func (InvoiceData) DocType() DocumentType { return DocInvoice }

type BillOfLadingData struct {
	BLNo             string  `json:"bl_no"`
	InvoiceRef       string  `json:"invoice_ref,omitempty"`
	Shipper          string  `json:"shipper"`
	Consignee        string  `json:"consignee"`
	NotifyParty      string  `json:"notify_party,omitempty"`
	Vessel           string  `json:"vessel"`
	VoyageNo         string  `json:"voyage_no,omitempty"`
	PortOfLoading    string  `json:"port_of_loading"`
	PortOfDischarge  string  `json:"port_of_discharge"`
	ShipDate         string  `json:"ship_date"`
	CargoDescription string  `json:"cargo_description,omitempty"`
	Quantity         float64 `json:"quantity"`
	Unit             string  `json:"unit"`
	GrossWeight      float64 `json:"gross_weight,omitempty"`
	Measurement      float64 `json:"measurement,omitempty"`
	ContainerNo      string  `json:"container_no,omitempty"`
}

func (BillOfLadingData) DocType() DocumentType { return DocBillOfLading }

type PackingLine struct {
	Product     string  `json:"product"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	NetWeight   float64 `json:"net_weight"`
	GrossWeight float64 `json:"gross_weight"`
	Measurement float64 `json:"measurement,omitempty"`
	CartonNo    string  `json:"carton_no,omitempty"`
}

type PackingListData struct {
	PackingListNo    string        `json:"packing_list_no"`
	InvoiceRef       string        `json:"invoice_ref"`
	Date             string        `json:"date"`
	Shipper          string        `json:"shipper"`
	Consignee        string        `json:"consignee"`
	Items            []PackingLine `json:"items,omitempty"`
	TotalPackages    int           `json:"total_packages"`
	TotalNetWeight   float64       `json:"total_net_weight"`
	TotalGrossWeight float64       `json:"total_gross_weight"`
}

func (PackingListData) DocType() DocumentType { return DocPackingList }

type LetterOfCreditData struct {
	LCNo               string  `json:"lc_no"`
	IssuingBank        string  `json:"issuing_bank"`
	Applicant          string  `json:"applicant"`
	Beneficiary        string  `json:"beneficiary"`
	Amount             float64 `json:"amount"`
	Currency           string  `json:"currency"`
	ExpiryDate         string  `json:"expiry_date"`
	LatestShipmentDate string  `json:"latest_shipment_date"`
	PartialShipment    string  `json:"partial_shipment,omitempty"`
	Transhipment       string  `json:"transhipment,omitempty"`
	PaymentTerms       string  `json:"payment_terms,omitempty"`
}

func (LetterOfCreditData) DocType() DocumentType { return DocLetterOfCredit }

// TradeDocument is an uploaded trade document with its typed parsed payload.
// Data is nil until the document has been parsed.
type TradeDocument struct {
	FileID       string         `json:"file_id"`
	DocType      DocumentType   `json:"doc_type"`
	OriginalName string         `json:"original_name"`
	UploadDate   string         `json:"upload_date"`
	Status       DocumentStatus `json:"status"`
	ReferenceNo  string         `json:"reference_no,omitempty"`
	Data         DocumentData   `json:"parsed_data,omitempty"`
}

type tradeDocumentWire struct {
	FileID       string          `json:"file_id"`
	DocType      DocumentType    `json:"doc_type"`
	OriginalName string          `json:"original_name"`
	UploadDate   string          `json:"upload_date"`
	Status       DocumentStatus  `json:"status"`
	ReferenceNo  string          `json:"reference_no,omitempty"`
	ParsedData   json.RawMessage `json:"parsed_data,omitempty"`
}

func (d *TradeDocument) UnmarshalJSON(b []byte) error {
	var w tradeDocumentWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	data, err := DecodeDocumentData(w.DocType, w.ParsedData)
	if err != nil {
		return err
	}
	*d = TradeDocument{
		FileID:       w.FileID,
		DocType:      w.DocType,
		OriginalName: w.OriginalName,
		UploadDate:   w.UploadDate,
		Status:       w.Status,
		ReferenceNo:  w.ReferenceNo,
		Data:         data,
	}
	return nil
}

// DecodeDocumentData decodes raw parsed data into the payload type selected by t.
// Empty or null payloads decode to nil.
func DecodeDocumentData(t DocumentType, raw json.RawMessage) (DocumentData, error) {
	var data DocumentData
	switch t {
	case DocInvoice:
		data = &InvoiceData{}
	case DocBillOfLading:
		data = &BillOfLadingData{}
	case DocPackingList:
		data = &PackingListData{}
	case DocLetterOfCredit:
		data = &LetterOfCreditData{}
	default:
		return nil, fmt.Errorf("unknown document type %q", t)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", t, err)
	}
	return data, nil
}

// ReferenceNo returns the document's own reference number from its payload.
func ReferenceNo(data DocumentData) string {
	switch d := data.(type) {
	case *InvoiceData:
		return d.InvoiceNo
	case *BillOfLadingData:
		return d.BLNo
	case *PackingListData:
		return d.PackingListNo
	case *LetterOfCreditData:
		return d.LCNo
	case nil:
		return ""
	default:
		panic(fmt.Sprintf("unhandled document payload %T", data))
	}
}
