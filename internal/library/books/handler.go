package books

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"biblioteca-backend/internal/platform/apierr"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.POST("/books", h.CreateBook)
	r.GET("/books", h.ListBooks)
	r.GET("/books/:book_id", h.GetBook)
}

// CreateBook godoc
// @Summary  Add a book to the catalog
// @Tags     books
// @Accept   json
// @Produce  json
// @Success  201 {object} BookResponse
// @Router   /books [post]
func (h *Handler) CreateBook(c *gin.Context) {
	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	res, err := h.svc.CreateBook(c.Request.Context(), req)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.Header("Location", "/books/"+strconv.FormatInt(res.BookID, 10))
	c.JSON(http.StatusCreated, res)
}

// ListBooks godoc
// @Summary  List the whole catalog
// @Tags     books
// @Produce  json
// @Success  200 {array} BookResponse
// @Router   /books [get]
func (h *Handler) ListBooks(c *gin.Context) {
	res, err := h.svc.ListBooks(c.Request.Context())
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetBook(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("book_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "book_id must be a number"))
		return
	}
	res, err := h.svc.GetBook(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

