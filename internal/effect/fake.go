package effect

// Write is one recorded sink write.
type Write struct {
	Channel Channel
	Level   uint8
}

// FakeSink records writes for test assertions.
type FakeSink struct {
	// Writes contains every write in call order.
	Writes []Write
}

// NewFakeSink creates an empty FakeSink.
func NewFakeSink() *FakeSink {
	return &FakeSink{}
}

// Write records the write.
func (f *FakeSink) Write(ch Channel, level uint8) {
	f.Writes = append(f.Writes, Write{Channel: ch, Level: level})
}

// Count returns the number of writes to ch.
func (f *FakeSink) Count(ch Channel) int {
	n := 0
	for _, w := range f.Writes {
		if w.Channel == ch {
			n++
		}
	}
	return n
}

// Last returns the most recent level written to ch.
func (f *FakeSink) Last(ch Channel) (uint8, bool) {
	for i := len(f.Writes) - 1; i >= 0; i-- {
		if f.Writes[i].Channel == ch {
			return f.Writes[i].Level, true
		}
	}
	return 0, false
}

// Reset clears recorded writes.
func (f *FakeSink) Reset() {
	f.Writes = nil
}
