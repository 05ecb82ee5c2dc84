package members

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"biblioteca-backend/internal/platform/apierr"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.POST("/members", h.RegisterMember)
	r.GET("/members", h.ListMembers)
}

// RegisterMember godoc
// @Summary  Register a library member
// @Tags     members
// @Accept   json
// @Produce  json
// @Success  201 {object} MemberResponse
// @Router   /members [post]
func (h *Handler) RegisterMember(c *gin.Context) {
	var req CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	res, err := h.svc.RegisterMember(c.Request.Context(), req)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.Header("Location", "/members/"+strconv.FormatInt(res.MemberID, 10))
	c.JSON(http.StatusCreated, res)
}

// ListMembers godoc
// @Summary  List members
// @Tags     members
// @Produce  json
// @Success  200 {array} MemberResponse
// @Router   /members [get]
func (h *Handler) ListMembers(c *gin.Context) {
	res, err := h.svc.ListMembers(c.Request.Context())
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.JSON(http.StatusOK, res)
}
