package books

// ===== Requests =====

type CreateBookRequest struct {
	Title  string `json:"title" binding:"required"`
	Author string `json:"author" binding:"required"`
	ISBN   string `json:"isbn"`
}

// ===== Responses =====

type BookResponse struct {
	BookID int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
	Status string `json:"status"`
}
