// Package chunker splits extracted text into overlapping windows
// sized for a single summarization call. The overlap keeps sentence
// context that spans a window boundary visible to the model on both
// sides.
package chunker

// Defaults proportioned for circular-length documents.
const (
	DefaultSize    = 6000
	DefaultOverlap = 400
)

// Chunk is one window of a document's text. Chunks are ephemeral and
// never persisted.
type Chunk struct {
	Index int
	Text  string
}

// Chunks splits text into windows of size runes, with consecutive
// windows overlapping by overlap runes. The final window may be
// shorter than size. Empty text yields no chunks. An overlap outside
// [0, size) is treated as zero.
func Chunks(text string, size, overlap int) []Chunk {
	if text == "" || size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	step := size - overlap
	var chunks []Chunk
	for start, idx := 0, 0; start < len(runes); start, idx = start+step, idx+1 {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{Index: idx, Text: string(runes[start:end])})
		if end == len(runes) {
			break
		}
	}
	return chunks
}
