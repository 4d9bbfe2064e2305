package domain

import (
	"fmt"
	"time"
)

// DocType classifies a captured document. The type is assigned by the
// classification pipeline at ingest time and is carried for display and
// filtering only; ranking never reads it.
type DocType string

// Known document types, ordered by detection priority in the
// classification pipeline.
const (
	DocTypeReceipt       DocType = "receipt"
	DocTypePromotional   DocType = "promotional"
	DocTypeBillStatement DocType = "billStatement"
	DocTypeCreditCard    DocType = "creditCard"
	DocTypeInsuranceCard DocType = "insuranceCard"
	DocTypeLetter        DocType = "letter"
	DocTypeGeneric       DocType = "generic"
)

// ParseDocType validates a type string from user input. Empty input
// means generic.
func ParseDocType(s string) (DocType, error) {
	switch DocType(s) {
	case DocTypeReceipt, DocTypePromotional, DocTypeBillStatement,
		DocTypeCreditCard, DocTypeInsuranceCard, DocTypeLetter, DocTypeGeneric:
		return DocType(s), nil
	case "":
		return DocTypeGeneric, nil
	default:
		return "", fmt.Errorf("%w: unknown document type %q", ErrInvalidInput, s)
	}
}

// Label returns human-readable label text for the document type.
// The label is denormalised into the full-text index so queries like
// "insurance" match cards even when the OCR text never says so.
func (t DocType) Label() string {
	switch t {
	case DocTypeReceipt:
		return "Receipt"
	case DocTypePromotional:
		return "Promotional"
	case DocTypeBillStatement:
		return "Bill Statement"
	case DocTypeCreditCard:
		return "Credit Card"
	case DocTypeInsuranceCard:
		return "Insurance Card"
	case DocTypeLetter:
		return "Letter"
	case DocTypeGeneric:
		return "Document"
	default:
		return string(t)
	}
}

// Document represents a captured document and its searchable text.
// It is the canonical record produced by the ingest pipeline.
type Document struct {
	// ID is the unique, immutable identifier. It is the join key for
	// embeddings, assets and the full-text index row.
	ID string

	// Title is the human-readable title.
	Title string

	// DocType is the classified document type.
	DocType DocType

	// RawText is the source text as produced by OCR.
	RawText string

	// CleanedText is the optional normalised text. Empty when the
	// cleanup pass has not run for this document.
	CleanedText string

	// Location is an optional free-form label of where the document
	// was captured or where the physical original lives.
	Location string

	// Assets are the files attached to this document. They are
	// replaced wholesale on every upsert.
	Assets []Asset

	// CreatedAt is when the document was first stored.
	CreatedAt time.Time

	// CapturedAt is when the physical document was scanned, if known.
	CapturedAt *time.Time
}

// SearchableText returns the concatenation of all fields that
// participate in keyword matching, lower-casing left to the caller.
func (d *Document) SearchableText() string {
	text := d.Title + "\n" + d.RawText
	if d.CleanedText != "" {
		text += "\n" + d.CleanedText
	}
	if d.Location != "" {
		text += "\n" + d.Location
	}
	return text
}

// EmbeddingText returns the text that should be embedded for this
// document. The cleaned text is preferred when available because OCR
// artefacts degrade embedding quality.
func (d *Document) EmbeddingText() string {
	if d.CleanedText != "" {
		return d.Title + "\n" + d.CleanedText
	}
	return d.Title + "\n" + d.RawText
}

// Asset is a file attached to a document: a scan page, a photo or a
// generated thumbnail. Assets are opaque to search.
type Asset struct {
	// ID is the unique identifier for the asset.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// FileURL locates the stored file.
	FileURL string

	// AssetType describes the file ("scan", "photo", "pdf").
	AssetType string

	// PageNumber is the ordinal position within the document.
	PageNumber int

	// AddedAt is when the asset was attached.
	AddedAt time.Time

	// ThumbnailURL optionally locates a rendered preview.
	ThumbnailURL string
}
