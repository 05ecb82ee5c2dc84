package fines

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"biblioteca-backend/internal/platform/apierr"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/fines", h.ListFines)
}

// ListFines godoc
// @Summary  List damage fines with member and book display fields
// @Tags     fines
// @Produce  json
// @Success  200 {array} FineResponse
// @Router   /fines [get]
func (h *Handler) ListFines(c *gin.Context) {
	res, err := h.svc.ListFines(c.Request.Context())
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.JSON(http.StatusOK, res)
}
