package labeling

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pexcode/qds-print-sdk/internal/domain/labeling"
	"github.com/stretchr/testify/mock"
)

// fakeEncoder returns "qr:<payload>" and "bar:<payload>". Payloads that
// contain a key of failOn fail with the mapped error.
type fakeEncoder struct {
	failOn map[string]error
	delay  map[string]time.Duration

	mu       sync.Mutex
	calls    []string
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (e *fakeEncoder) enter(payload string) func() {
	n := e.inFlight.Add(1)
	for {
		p := e.peak.Load()
		if n <= p || e.peak.CompareAndSwap(p, n) {
			break
		}
	}
	e.mu.Lock()
	e.calls = append(e.calls, payload)
	e.mu.Unlock()
	return func() { e.inFlight.Add(-1) }
}

func (e *fakeEncoder) failure(payload string) error {
	for key, err := range e.failOn {
		if strings.Contains(payload, key) {
			return err
		}
	}
	return nil
}

func (e *fakeEncoder) wait(ctx context.Context, payload string) error {
	for key, d := range e.delay {
		if strings.Contains(payload, key) {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

func (e *fakeEncoder) EncodeQR(ctx context.Context, text string) (string, error) {
	defer e.enter(text)()
	if err := e.wait(ctx, text); err != nil {
		return "", err
	}
	if err := e.failure(text); err != nil {
		return "", err
	}
	return "qr:" + text, nil
}

func (e *fakeEncoder) EncodeLinear(text string, _ labeling.Symbology) (string, error) {
	defer e.enter(text)()
	if err := e.failure(text); err != nil {
		return "", err
	}
	return "bar:" + text, nil
}

func (e *fakeEncoder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

// fakeComposer records its input and reports lookup misses like the real one
type fakeComposer struct {
	err   error
	calls int
}

func (c *fakeComposer) Compose(records []labeling.ShipmentRecord, codes labeling.CodeSet) (*labeling.LabelDocument, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	doc := &labeling.LabelDocument{RecordIDs: labeling.RecordIDs(records)}
	for _, r := range records {
		if _, ok := codes.Lookup(r.ID); !ok {
			doc.LookupMisses = append(doc.LookupMisses, r.ID)
		}
	}
	return doc, nil
}

// fakeTarget signals ready from a goroutine after readyDelay, unless
// neverReady or closeReady is set.
type fakeTarget struct {
	loadErr    error
	readyErr   error
	printErr   error
	readyDelay time.Duration
	neverReady bool
	closeReady bool

	mu                 sync.Mutex
	loaded             []*labeling.LabelDocument
	prints             int
	readySent          atomic.Bool
	printedBeforeReady bool
}

func (f *fakeTarget) Load(_ context.Context, doc *labeling.LabelDocument) (<-chan error, error) {
	f.mu.Lock()
	f.loaded = append(f.loaded, doc)
	f.mu.Unlock()

	if f.loadErr != nil {
		return nil, f.loadErr
	}

	ch := make(chan error, 1)
	switch {
	case f.neverReady:
	case f.closeReady:
		close(ch)
	default:
		go func() {
			time.Sleep(f.readyDelay)
			f.readySent.Store(true)
			ch <- f.readyErr
		}()
	}
	return ch, nil
}

func (f *fakeTarget) Print(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.readySent.Load() {
		f.printedBeforeReady = true
	}
	f.prints++
	return f.printErr
}

func (f *fakeTarget) loads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.loaded)
}

func (f *fakeTarget) printCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prints
}

type mockReportSink struct {
	mock.Mock
}

func (m *mockReportSink) Report(ctx context.Context, result *BatchResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func shipment(id string) labeling.ShipmentRecord {
	return labeling.ShipmentRecord{
		ID:            id,
		TrackingID:    "trk-" + id,
		DestName:      "Dest " + id,
		DestAddress:   "1 Rue " + id,
		SenderName:    "Sender " + id,
		SenderAddress: "2 Avenue " + id,
		CreatedAt:     time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC),
		Process: labeling.ProcessInfo{
			Name:    "Hub " + id,
			Address: "Zone " + id,
			ID:      "P-" + id,
		},
	}
}
