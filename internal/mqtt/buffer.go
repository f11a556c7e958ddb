package mqtt

// bufferedMsg is a serialized message held for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer is a fixed-capacity FIFO of messages not yet handed to the
// broker. When full the oldest message is overwritten. Not safe for
// concurrent use.
type ringBuffer struct {
	buf     []bufferedMsg
	head    int // next write position
	count   int
	dropped int // overwritten since the last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &ringBuffer{buf: make([]bufferedMsg, capacity)}
}

// push appends msg and reports whether an older message was dropped.
func (r *ringBuffer) push(msg bufferedMsg) bool {
	r.buf[r.head] = msg
	r.head = (r.head + 1) % len(r.buf)
	if r.count == len(r.buf) {
		r.dropped++
		return true
	}
	r.count++
	return false
}

// drainAll returns the buffered messages oldest first and empties the
// buffer, along with how many were dropped.
func (r *ringBuffer) drainAll() ([]bufferedMsg, int) {
	dropped := r.dropped
	if r.count == 0 {
		r.dropped = 0
		return nil, dropped
	}

	out := make([]bufferedMsg, r.count)
	start := (r.head - r.count + len(r.buf)) % len(r.buf)
	for i := range out {
		out[i] = r.buf[(start+i)%len(r.buf)]
	}

	r.head, r.count, r.dropped = 0, 0, 0
	return out, dropped
}

func (r *ringBuffer) len() int {
	return r.count
}
