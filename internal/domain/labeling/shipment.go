package labeling

import "time"

// ProcessInfo describes the process stage a shipment currently belongs to
type ProcessInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	ID      string `json:"id"`
}

// ShipmentRecord is the immutable input unit of a label batch.
// ID is the join key between a record and its codes and must be unique
// within a batch.
type ShipmentRecord struct {
	ID            string      `json:"id" validate:"required"`
	TrackingID    string      `json:"uuid"`
	DestName      string      `json:"dest_name"`
	DestAddress   string      `json:"dest_address"`
	SenderName    string      `json:"sender_name"`
	SenderAddress string      `json:"sender_address"`
	CreatedAt     time.Time   `json:"created_at"`
	Process       ProcessInfo `json:"shipping"`
}

// RecordIDs returns the ids of the records in input order
func RecordIDs(records []ShipmentRecord) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}

// DuplicateIDs returns every id that occurs more than once, in order of
// its second occurrence.
func DuplicateIDs(records []ShipmentRecord) []string {
	seen := make(map[string]int, len(records))
	var dups []string
	for _, r := range records {
		seen[r.ID]++
		if seen[r.ID] == 2 {
			dups = append(dups, r.ID)
		}
	}
	return dups
}

// CodeArtifact holds the encoded images for one record. Each slot is an
// embeddable image reference (a data URL); a slot that was not requested
// is empty.
type CodeArtifact struct {
	RecordID string `json:"record_id"`
	// Track is the QR code pointing at the tracking page
	Track string `json:"track"`
	// Barcode is the linear barcode of the record id
	Barcode string `json:"barcode"`
}

// IsEmpty returns true if no image was produced
func (a CodeArtifact) IsEmpty() bool {
	return a.Track == "" && a.Barcode == ""
}

// CodeSet maps record ids to their code artifacts
type CodeSet map[string]CodeArtifact

// Lookup returns the artifact for id. A miss yields an empty artifact
// and false; it is never an error.
func (c CodeSet) Lookup(id string) (CodeArtifact, bool) {
	a, ok := c[id]
	if !ok {
		return CodeArtifact{RecordID: id}, false
	}
	return a, true
}
