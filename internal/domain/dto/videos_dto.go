package dto

type VideoDTO struct {
	ID            uint64 `json:"id"`
	Backend       string `json:"backend"`
	Contract      string `json:"contract"`
	Uploader      string `json:"uploader"`
	UploaderShort string `json:"uploader_short"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	ContentHash   string `json:"content_hash"`
	ThumbnailHash string `json:"thumbnail_hash,omitempty"`
	VideoURL      string `json:"video_url"`
	ThumbnailURL  string `json:"thumbnail_url,omitempty"`
	Price         string `json:"price"`
	DisplayTime   int64  `json:"display_time"`
	Active        bool   `json:"active"`
	TotalViews    string `json:"total_views"`
	TotalRevenue  string `json:"total_revenue"`
}

type VideoListResponse struct {
	Backend string     `json:"backend"`
	Videos  []VideoDTO `json:"videos"`
	Stale   bool       `json:"stale,omitempty"` // served from the catalog mirror
}

type AccessResponse struct {
	VideoID  uint64 `json:"video_id"`
	Viewer   string `json:"viewer"`
	CanView  bool   `json:"can_view"`
	VideoURL string `json:"video_url,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
