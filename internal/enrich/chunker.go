package enrich

import (
	"unicode/utf8"

	"github.com/feichai0017/docintel/internal/models"
)

// ChunkContent splits content into overlapping chunks of at most maxChars
// bytes. Split points are pulled back to UTF-8 rune boundaries so no chunk
// ever starts or ends inside a multi-byte sequence; byte offsets are recorded
// on each chunk so callers can reconstruct the original text by trimming the
// overlapped spans. Page ranges are resolved against the extractor's page map
// when one is available.
func ChunkContent(content string, pages []models.Page, maxChars, maxOverlap int) []models.Chunk {
	if content == "" {
		return nil
	}
	if maxChars <= 0 {
		maxChars = len(content)
	}
	if maxOverlap < 0 {
		maxOverlap = 0
	}
	if maxOverlap >= maxChars {
		maxOverlap = maxChars - 1
	}

	var chunks []models.Chunk
	start := 0
	for start < len(content) {
		end := start + maxChars
		if end >= len(content) {
			end = len(content)
		} else {
			end = runeFloor(content, end)
			if end <= start {
				// a single rune wider than maxChars still advances
				end = runeCeil(content, start+maxChars)
			}
		}

		chunks = append(chunks, models.Chunk{
			Content:   content[start:end],
			ByteStart: start,
			ByteEnd:   end,
		})

		if end == len(content) {
			break
		}
		next := runeCeil(content, end-maxOverlap)
		if next <= start {
			next = end
		}
		start = next
	}

	for i := range chunks {
		chunks[i].ChunkIndex = i
		chunks[i].TotalChunks = len(chunks)
		chunks[i].FirstPage, chunks[i].LastPage = pageSpan(pages, chunks[i].ByteStart, chunks[i].ByteEnd)
	}
	return chunks
}

// runeFloor moves pos back to the start of the rune containing it.
func runeFloor(s string, pos int) int {
	for pos > 0 && !utf8.RuneStart(s[pos]) {
		pos--
	}
	return pos
}

// runeCeil moves pos forward to the next rune start.
func runeCeil(s string, pos int) int {
	if pos < 0 {
		return 0
	}
	for pos < len(s) && !utf8.RuneStart(s[pos]) {
		pos++
	}
	return pos
}

// pageSpan returns the first and last page numbers whose byte ranges overlap
// [start, end). Zero values mean no page information was available.
func pageSpan(pages []models.Page, start, end int) (int, int) {
	first, last := 0, 0
	for _, p := range pages {
		if p.ByteEnd <= start || p.ByteStart >= end {
			continue
		}
		if first == 0 || p.Number < first {
			first = p.Number
		}
		if p.Number > last {
			last = p.Number
		}
	}
	return first, last
}
