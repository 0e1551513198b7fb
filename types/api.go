package types

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Record statuses as stored by the API and reported in history listings.
const (
	RecordGenerating = "generating"
	RecordQueued     = "queued"
	RecordCompleted  = "completed"
	RecordFailed     = "failed"
)

type GenerateImageRequest struct {
	Prompt     string `json:"prompt"`
	Style      string `json:"style"`
	Resolution string `json:"resolution"`
	Format     string `json:"format"`
}

type GenerateVideoRequest struct {
	Prompt     string `json:"prompt"`
	Style      string `json:"style"`
	Duration   string `json:"duration"`
	Resolution string `json:"resolution"`
	Fps        int    `json:"fps"`
}

type BatchImageRequest struct {
	Prompts    []string `json:"prompts"`
	Style      string   `json:"style"`
	Resolution string   `json:"resolution"`
	Format     string   `json:"format"`
	// ClientID selects the websocket client that receives per-item events.
	ClientID string `json:"clientId,omitempty"`
}

type BatchVideoRequest struct {
	Prompts    []string `json:"prompts"`
	Style      string   `json:"style"`
	Duration   string   `json:"duration"`
	Resolution string   `json:"resolution"`
	Fps        int      `json:"fps"`
	ClientID   string   `json:"clientId,omitempty"`
}

// GenerationResponse is returned by both /generate and /generate_video.
// On failure only Status and Message are set.
type GenerationResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	ID           int64  `json:"id,omitempty"`
	ImageURL     string `json:"imageUrl,omitempty"`
	VideoURL     string `json:"videoUrl,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Prompt       string `json:"prompt,omitempty"`
	Style        string `json:"style,omitempty"`
	Resolution   string `json:"resolution,omitempty"`
	Format       string `json:"format,omitempty"`
	Duration     string `json:"duration,omitempty"`
	Fps          int    `json:"fps,omitempty"`
	FileSize     int64  `json:"fileSize,omitempty"`
}

type BatchItem struct {
	ID     int64  `json:"id"`
	Prompt string `json:"prompt"`
	Status string `json:"status"`
}

type BatchResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	BatchID string      `json:"batchId,omitempty"`
	Results []BatchItem `json:"results"`
}

// HistoryItem mirrors one stored image or video record. Image-only and
// video-only fields are left empty for the other kind.
type HistoryItem struct {
	ID           int64        `json:"id"`
	Prompt       string       `json:"prompt"`
	Style        string       `json:"style"`
	Resolution   string       `json:"resolution"`
	Format       string       `json:"format,omitempty"`
	ImageURL     string       `json:"image_url,omitempty"`
	Duration     string       `json:"duration,omitempty"`
	Fps          int          `json:"fps,omitempty"`
	VideoURL     string       `json:"video_url,omitempty"`
	ThumbnailURL string       `json:"thumbnail_url,omitempty"`
	FileSize     int64        `json:"file_size,omitempty"`
	Status       string       `json:"status"`
	ErrorMessage *string      `json:"error_message"`
	CreatedAt    FlexibleTime `json:"created_at"`
	UpdatedAt    FlexibleTime `json:"updated_at"`
}

type HistoryResponse struct {
	Status      string        `json:"status"`
	Message     string        `json:"message,omitempty"`
	Images      []HistoryItem `json:"images,omitempty"`
	Videos      []HistoryItem `json:"videos,omitempty"`
	Total       int           `json:"total"`
	Pages       int           `json:"pages"`
	CurrentPage int           `json:"current_page"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    int   `json:"status"`
	TimeStamp int64 `json:"timestamp"`
}

// JobEvent is pushed over the websocket channel when a batch item settles.
type JobEvent struct {
	Type    string `json:"type"` // generation.completed or generation.failed
	BatchID string `json:"batchId"`
	ItemID  int64  `json:"itemId"`
	Mode    string `json:"mode"`
	Message string `json:"message,omitempty"`
	URL     string `json:"url,omitempty"`
}

const (
	EventGenerationCompleted = "generation.completed"
	EventGenerationFailed    = "generation.failed"
)
