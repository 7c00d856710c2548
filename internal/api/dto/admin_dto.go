package dto

// ModerateItemRequest payload for PUT /admin/items.
type ModerateItemRequest struct {
	ItemID string `json:"itemId"`
	Action string `json:"action"`
}

// UploadResponse is returned by POST /upload.
type UploadResponse struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl"`
	PublicID string `json:"publicId"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}
