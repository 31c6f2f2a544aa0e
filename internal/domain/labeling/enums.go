package labeling

// Symbology is the encoding scheme of a scannable code
type Symbology string

const (
	SymbologyQR     Symbology = "QR"     // 2D QR code
	SymbologyCode39 Symbology = "CODE39" // linear Code 39
)

// IsValid checks if the Symbology is a supported value
func (s Symbology) IsValid() bool {
	switch s {
	case SymbologyQR, SymbologyCode39:
		return true
	}
	return false
}

// IsLinear returns true for one-dimensional barcodes
func (s Symbology) IsLinear() bool {
	return s == SymbologyCode39
}

// String returns the string representation of Symbology
func (s Symbology) String() string {
	return string(s)
}

// AllSymbologies returns all supported Symbology values
func AllSymbologies() []Symbology {
	return []Symbology{SymbologyQR, SymbologyCode39}
}

// PaperSize represents the paper size labels are printed on
type PaperSize string

const (
	PaperSizeLabel4x6    PaperSize = "LABEL_4X6"     // 4in x 6in shipping label
	PaperSizeLabel100150 PaperSize = "LABEL_100X150" // 100mm x 150mm shipping label
	PaperSizeA4          PaperSize = "A4"            // 210mm x 297mm
	PaperSizeA5          PaperSize = "A5"            // 148mm x 210mm
)

// IsValid checks if the PaperSize is a valid value
func (p PaperSize) IsValid() bool {
	switch p {
	case PaperSizeLabel4x6, PaperSizeLabel100150, PaperSizeA4, PaperSizeA5:
		return true
	}
	return false
}

// String returns the string representation of PaperSize
func (p PaperSize) String() string {
	return string(p)
}

// Dimensions returns the paper dimensions in millimeters (width, height)
func (p PaperSize) Dimensions() (width, height int) {
	switch p {
	case PaperSizeLabel4x6:
		return 102, 152
	case PaperSizeLabel100150:
		return 100, 150
	case PaperSizeA4:
		return 210, 297
	case PaperSizeA5:
		return 148, 210
	default:
		return 102, 152
	}
}

// IsLabelStock returns true for dedicated label stock sizes
func (p PaperSize) IsLabelStock() bool {
	return p == PaperSizeLabel4x6 || p == PaperSizeLabel100150
}

// AllPaperSizes returns all valid PaperSize values
func AllPaperSizes() []PaperSize {
	return []PaperSize{PaperSizeLabel4x6, PaperSizeLabel100150, PaperSizeA4, PaperSizeA5}
}

// Orientation represents the page orientation for printing
type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// IsValid checks if the Orientation is a valid value
func (o Orientation) IsValid() bool {
	switch o {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// String returns the string representation of Orientation
func (o Orientation) String() string {
	return string(o)
}

// JobStatus is the state of one print call
type JobStatus string

const (
	JobStatusIdle       JobStatus = "IDLE"
	JobStatusGenerating JobStatus = "GENERATING"
	JobStatusComposing  JobStatus = "COMPOSING"
	JobStatusRendering  JobStatus = "RENDERING"
	JobStatusPrinted    JobStatus = "PRINTED"
	JobStatusFailed     JobStatus = "FAILED"
)

// IsValid checks if the JobStatus is a valid value
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusIdle, JobStatusGenerating, JobStatusComposing,
		JobStatusRendering, JobStatusPrinted, JobStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of JobStatus
func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal returns true if this is a terminal status (no further transitions)
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusPrinted || s == JobStatusFailed
}

// CanTransitionTo checks if the status can transition to the target status.
// Every non-terminal state may fail; otherwise the pipeline only moves forward.
func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	if target == JobStatusFailed {
		return !s.IsTerminal() && s.IsValid()
	}
	switch s {
	case JobStatusIdle:
		return target == JobStatusGenerating
	case JobStatusGenerating:
		return target == JobStatusComposing
	case JobStatusComposing:
		return target == JobStatusRendering
	case JobStatusRendering:
		return target == JobStatusPrinted
	}
	return false
}
