package labeling

import "github.com/pexcode/qds-print-sdk/internal/domain/shared"

// Margins represents the page margins in millimeters
type Margins struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// NewMargins creates a new Margins value object
func NewMargins(top, right, bottom, left int) (Margins, error) {
	if top < 0 || right < 0 || bottom < 0 || left < 0 {
		return Margins{}, shared.NewDomainError("INVALID_MARGINS", "Margins cannot be negative")
	}
	if top > 50 || right > 50 || bottom > 50 || left > 50 {
		return Margins{}, shared.NewDomainError("INVALID_MARGINS", "Margins cannot exceed 50mm")
	}
	return Margins{Top: top, Right: right, Bottom: bottom, Left: left}, nil
}

// LabelMargins returns the default margins for label stock
func LabelMargins() Margins {
	return Margins{Top: 3, Right: 3, Bottom: 3, Left: 3}
}

// SheetMargins returns the default margins for A4/A5 sheets
func SheetMargins() Margins {
	return Margins{Top: 10, Right: 10, Bottom: 10, Left: 10}
}

// DefaultMarginsFor picks label or sheet margins for the paper size
func DefaultMarginsFor(p PaperSize) Margins {
	if p.IsLabelStock() {
		return LabelMargins()
	}
	return SheetMargins()
}

// IsZero returns true if all margins are zero
func (m Margins) IsZero() bool {
	return m.Top == 0 && m.Right == 0 && m.Bottom == 0 && m.Left == 0
}
