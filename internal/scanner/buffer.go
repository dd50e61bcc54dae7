package scanner

// ResponseBuffer collects a response body. Each Handle owns one and reuses it
// for every probe, so callers must copy anything they need to keep before the
// next probe.
type ResponseBuffer struct {
	data []byte
}

// Write appends p. It never fails.
func (b *ResponseBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

// Reset empties the buffer, keeping its capacity.
func (b *ResponseBuffer) Reset() {
	b.data = b.data[:0]
}

// Len is the number of bytes written since the last Reset.
func (b *ResponseBuffer) Len() int {
	return len(b.data)
}

// Bytes returns the buffered body. The slice is only valid until the next
// Write or Reset.
func (b *ResponseBuffer) Bytes() []byte {
	return b.data
}
