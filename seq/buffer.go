package seq

// ByteBuffer wraps an immutable bytecode buffer. Readers carved from it
// share the underlying bytes and must not outlive them.
type ByteBuffer struct {
	data []byte
}

func NewByteBuffer(data []byte) *ByteBuffer {
	return &ByteBuffer{data: data}
}

// Size returns the buffer length in bytes.
func (b *ByteBuffer) Size() int {
	return len(b.data)
}

// Reader returns a reader spanning the whole buffer.
func (b *ByteBuffer) Reader() *BufferReader {
	return &BufferReader{data: b.data, first: 0, last: len(b.data) - 1, position: -1}
}

// Range returns a reader spanning the inclusive byte range [first, last].
func (b *ByteBuffer) Range(first, last int) (*BufferReader, error) {
	if first < 0 || last > len(b.data)-1 || first > last {
		return nil, &InternalError{Message: "invalid buffer reader range"}
	}
	return &BufferReader{data: b.data, first: first, last: last, position: first - 1}, nil
}

// BufferReader is a random-access cursor over an inclusive slice
// [first, last] of a shared byte buffer. Reads past the end yield zero
// bytes and do not advance.
type BufferReader struct {
	data     []byte
	first    int
	last     int
	position int
}

// Copy duplicates the reader, including its position. The underlying
// bytes are shared.
func (r *BufferReader) Copy() *BufferReader {
	c := *r
	return &c
}

// PeekByte returns the next byte without consuming it.
func (r *BufferReader) PeekByte() byte {
	if r.position >= r.last {
		return 0
	}
	return r.data[r.position+1]
}

// NextByte consumes and returns the next byte.
func (r *BufferReader) NextByte() byte {
	if r.position >= r.last {
		return 0
	}
	r.position++
	return r.data[r.position]
}

// HasNext reports whether any bytes remain.
func (r *BufferReader) HasNext() bool {
	return r.position < r.last
}

// NextBlock consumes length bytes and returns a sub-reader spanning them.
func (r *BufferReader) NextBlock(length int64) (*BufferReader, error) {
	if length < 0 {
		return nil, &InternalError{Message: "invalid block size"}
	}

	newPos := r.position + int(length)
	oldPos := r.position + 1

	if newPos > r.last {
		newPos = r.last
	}
	r.position = newPos

	return &BufferReader{data: r.data, first: oldPos, last: newPos, position: oldPos - 1}, nil
}

// NextInt reads a little-endian unsigned integer preceded by its byte
// width, stored in the high nibble of a head byte. Only widths 0, 1, 2, 4
// and 8 are accepted.
func (r *BufferReader) NextInt() (int64, error) {

	head := r.NextByte()
	a := head >> 4

	if a&(a-1) != 0 {
		return 0, &InternalError{Message: "invalid int header"}
	}

	var n int64
	for i := byte(0); i < a; i++ {
		n |= int64(r.NextByte()) << (i * 8)
	}

	return n, nil
}

// Next decodes one tagged value starting at the current position.
func (r *BufferReader) Next() (*TokenReader, error) {
	return newTokenReader(r)
}

// ReadAll decodes values until the reader is exhausted.
func (r *BufferReader) ReadAll() (Stream, error) {
	var stream Stream
	for r.HasNext() {
		tr, err := r.Next()
		if err != nil {
			return nil, err
		}
		stream = append(stream, tr.Generic())
	}
	return stream, nil
}

// SubBuffer materialises the remaining bytes as a buffer of their own.
func (r *BufferReader) SubBuffer() *ByteBuffer {
	return &ByteBuffer{data: r.data[r.position+1 : r.last+1]}
}
