package models

// Table is a table lifted out of a document.
type Table struct {
	Cells      [][]string `json:"cells"`
	Markdown   string     `json:"markdown,omitempty"`
	PageNumber int        `json:"pageNumber,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// ExtractedImage is an embedded image carried through the pipeline.
type ExtractedImage struct {
	Data       []byte `json:"data,omitempty"`
	MimeType   string `json:"mimeType"`
	PageNumber int    `json:"pageNumber,omitempty"`
}

// Page marks the byte range a page occupies in the extracted content.
type Page struct {
	Number    int `json:"number"`
	ByteStart int `json:"byteStart"`
	ByteEnd   int `json:"byteEnd"`
}

// Chunk is a slice of the extracted content.
type Chunk struct {
	Content     string    `json:"content"`
	ByteStart   int       `json:"byteStart"`
	ByteEnd     int       `json:"byteEnd"`
	ChunkIndex  int       `json:"chunkIndex"`
	TotalChunks int       `json:"totalChunks"`
	Embedding   []float32 `json:"embedding,omitempty"`
	FirstPage   int       `json:"firstPage,omitempty"`
	LastPage    int       `json:"lastPage,omitempty"`
}

// Keyword is a scored term produced by keyword extraction.
type Keyword struct {
	Term  string  `json:"term"`
	Score float64 `json:"score"`
}

// RawExtractionResult is what a document extractor hands back to the
// orchestrator. It is transient: the orchestrator folds it into the final
// ExtractionResult and discards it.
type RawExtractionResult struct {
	Content  string
	Metadata map[string]interface{}
	Tables   []Table
	Images   []ExtractedImage
	Pages    []Page
}

// ExtractionResult is the terminal artifact of an extraction. It is owned by
// the caller and treated as immutable once returned.
type ExtractionResult struct {
	Content           string                 `json:"content"`
	MimeType          string                 `json:"mimeType"`
	Metadata          map[string]interface{} `json:"metadata"`
	Tables            []Table                `json:"tables,omitempty"`
	DetectedLanguages []string               `json:"detectedLanguages,omitempty"`
	Chunks            []Chunk                `json:"chunks,omitempty"`
	Images            []ExtractedImage       `json:"images,omitempty"`
	Pages             []Page                 `json:"pages,omitempty"`
	Keywords          []Keyword              `json:"keywords,omitempty"`
}

// NewResult folds a raw extractor result into an ExtractionResult.
func NewResult(raw *RawExtractionResult, mimeType string) *ExtractionResult {
	meta := raw.Metadata
	if meta == nil {
		meta = make(map[string]interface{})
	}
	return &ExtractionResult{
		Content:  raw.Content,
		MimeType: mimeType,
		Metadata: meta,
		Tables:   raw.Tables,
		Images:   raw.Images,
		Pages:    raw.Pages,
	}
}

// SetMeta records a metadata value, allocating the map if needed.
func (r *ExtractionResult) SetMeta(key string, val interface{}) {
	if r.Metadata == nil {
		r.Metadata = make(map[string]interface{})
	}
	r.Metadata[key] = val
}
