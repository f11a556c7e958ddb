package gpio

import "errors"

// FakeReader is a test double that returns scripted button states.
type FakeReader struct {
	// Samples contains scripted readings. Each call to Read consumes the
	// next one; the last is repeated once they run out.
	Samples [][]bool

	// ReadError, if set, is returned by Read.
	ReadError error

	// Closed tracks if Close was called.
	Closed bool

	index int
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples ...[]bool) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
func (f *FakeReader) Read() ([]bool, error) {
	if f.ReadError != nil {
		return nil, f.ReadError
	}
	if len(f.Samples) == 0 {
		return nil, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return append([]bool(nil), sample...), nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds to the first sample.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}
