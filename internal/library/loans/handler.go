package loans

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"biblioteca-backend/internal/platform/apierr"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.POST("/loans", h.CreateLoan)
	r.GET("/loans", h.ListActiveLoans)
	r.GET("/loans/:loan_id", h.GetLoan)
	r.PUT("/loans/:loan_id/return", h.CompleteReturn)
}

// CreateLoan godoc
// @Summary  Lend a book to a member
// @Tags     loans
// @Accept   json
// @Produce  json
// @Success  201 {object} LoanResponse
// @Router   /loans [post]
func (h *Handler) CreateLoan(c *gin.Context) {
	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	res, err := h.svc.CreateLoan(c.Request.Context(), req)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.Header("Location", "/loans/"+strconv.FormatInt(res.LoanID, 10))
	c.JSON(http.StatusCreated, res)
}

// CompleteReturn godoc
// @Summary  Register a return, optionally with a damage fine
// @Tags     loans
// @Accept   json
// @Produce  json
// @Success  200 {object} LoanResponse
// @Router   /loans/{loan_id}/return [put]
func (h *Handler) CompleteReturn(c *gin.Context) {
	loanID, err := strconv.ParseInt(c.Param("loan_id"), 10, 64)
	if err != nil || loanID <= 0 {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "loan_id must be a number"))
		return
	}
	var req CompleteReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	if err := h.svc.CompleteReturn(c.Request.Context(), loanID, req); err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	res, err := h.svc.GetLoan(c.Request.Context(), loanID)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListActiveLoans godoc
// @Summary  List open loans with member and book display fields
// @Tags     loans
// @Produce  json
// @Success  200 {array} ActiveLoanResponse
// @Router   /loans [get]
func (h *Handler) ListActiveLoans(c *gin.Context) {
	res, err := h.svc.ListActiveLoans(c.Request.Context())
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetLoan(c *gin.Context) {
	loanID, err := strconv.ParseInt(c.Param("loan_id"), 10, 64)
	if err != nil || loanID <= 0 {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "loan_id must be a number"))
		return
	}
	res, err := h.svc.GetLoan(c.Request.Context(), loanID)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.JSON(http.StatusOK, res)
}
