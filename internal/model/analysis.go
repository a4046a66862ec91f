package model

// AnalysisEvent asks the extraction stage to process a stored document.
// An empty S3Bucket means the configured default bucket.
type AnalysisEvent struct {
	S3Bucket string `json:"s3_bucket,omitempty"`
	S3Key    string `json:"s3_key"`
}

// AnalysisResult is written once next to the source document and never
// mutated. ExtractedText holds a prefix only; TextLength counts the whole
// extraction in characters.
type AnalysisResult struct {
	SourceFile    string `json:"source_file"`
	ExtractedText string `json:"extracted_text"`
	TextLength    int    `json:"text_length"`
	Analysis      string `json:"analysis"`
	ProcessedAt   string `json:"processed_at"`
}
