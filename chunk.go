package encryptedframe

// chunk is a half-open row range [offset, offset+length).
type chunk struct {
	offset int64
	length int64
}

// splitOffsets partitions [0, rows) into n contiguous chunks.
// Every chunk but the last has rows/n rows; the last absorbs the remainder.
// n below 1 is treated as 1. Chunks may be empty when rows < n.
func splitOffsets(rows int64, n int) []chunk {
	if n <= 1 {
		return []chunk{{offset: 0, length: rows}}
	}

	size := rows / int64(n)
	chunks := make([]chunk, n)
	for i := range chunks {
		offset := int64(i) * size
		length := size
		if i == n-1 {
			length = rows - offset
		}
		chunks[i] = chunk{offset: offset, length: length}
	}
	return chunks
}
