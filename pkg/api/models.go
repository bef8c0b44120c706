package api

// ImageListEntry is one element of the randomized labeling batch returned by
// GET /api/imagesList.
type ImageListEntry struct {
	FileName    string `json:"file_name"`
	FileId      uint   `json:"file_id"`
	ImageBase64 string `json:"image_base64"`
}

type GuessRequest struct {
	FileId uint   `json:"file_id"`
	Answer string `json:"answer"`
}

// ImageDocument is the wire form of a stored image record.
type ImageDocument struct {
	FileId   uint     `json:"file_id"`
	FileName string   `json:"file_name"`
	Answers  []string `json:"answers"`
}

type ClassifyRequest struct {
	ImageFilename string `json:"image_filename"`
	ImageBase64   string `json:"image_base64"`
}

type ClassifyResponse struct {
	Score      float64 `json:"score"`
	TrashClass string  `json:"trash_class"`
}
