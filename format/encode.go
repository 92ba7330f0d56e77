package format

// EncodeWorld encodes a World into a buffer.
func EncodeWorld(buf *buffer, w *World) {
	// Write identity and rule
	buf.WriteString(w.WorldID.String())
	buf.WriteString(w.Rule)

	// Write generation counter
	buf.WriteUInt64(w.Generation)

	// Write user data
	buf.WriteBytes(w.UserData)

	// Write chunks
	chunks := w.Chunks()
	buf.WriteVarInt(int64(len(chunks)))
	for _, chunk := range chunks {
		encodeChunk(buf, chunk)
	}
}

// encodeChunk encodes a Chunk into a buffer.
func encodeChunk(buf *buffer, c *Chunk) {
	// Write coordinates
	buf.WriteInt32(c.X)
	buf.WriteInt32(c.Y)

	// Write packed rows
	for _, row := range c.Rows {
		buf.WriteUInt32(row)
	}
}
