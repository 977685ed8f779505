package retrieval

// SplitText splits text into overlapping windows of at most size runes, each
// window starting size-overlap runes after the previous one. Text shorter
// than one window comes back as a single chunk. Overlap is clamped below
// size so the split always advances.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}

	runes := []rune(text)
	if len(runes) <= size {
		if len(runes) == 0 {
			return nil
		}
		return []string{text}
	}

	step := size - overlap
	chunks := make([]string, 0, (len(runes)/step)+1)
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
