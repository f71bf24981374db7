package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/anyulbade/netaxept-gateway/internal/dto"
	"github.com/anyulbade/netaxept-gateway/internal/netaxept"
	"github.com/anyulbade/netaxept-gateway/internal/service"
)

type PaymentHandler struct {
	svc *service.PaymentService
}

func NewPaymentHandler(svc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// Register answers 201 when the gateway accepted the registration and 200
// with successful=false when it rejected it.
func (h *PaymentHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(&service.ValidationError{Field: "body", Message: err.Error()})
		return
	}

	resp, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	out := dto.NewOperationResponse(resp)
	if !resp.Successful {
		c.JSON(http.StatusOK, out)
		return
	}
	out.TerminalURL = h.svc.TerminalURL(resp.TransactionID)
	c.JSON(http.StatusCreated, out)
}

// Process returns a handler bound to one of auth, sale, capture or credit.
func (h *PaymentHandler) Process(op netaxept.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.ProcessRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(&service.ValidationError{Field: "body", Message: err.Error()})
			return
		}

		id := c.Param("id")
		resp, err := h.svc.Process(c.Request.Context(), op, id, &req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		out := dto.NewOperationResponse(resp)
		out.TransactionID = id
		c.JSON(http.StatusOK, out)
	}
}

// Annul accepts an empty body.
func (h *PaymentHandler) Annul(c *gin.Context) {
	// The body is optional and may arrive chunked, without a length.
	var req dto.AnnulRequest
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			_ = c.Error(&service.ValidationError{Field: "body", Message: err.Error()})
			return
		}
	}

	id := c.Param("id")
	resp, err := h.svc.Annul(c.Request.Context(), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	out := dto.NewOperationResponse(resp)
	out.TransactionID = id
	c.JSON(http.StatusOK, out)
}

func (h *PaymentHandler) Query(c *gin.Context) {
	id := c.Param("id")
	resp, err := h.svc.Query(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQueryResponse(id, resp))
}

// Statuses handles GET /transactions?ids=a,b,c.
func (h *PaymentHandler) Statuses(c *gin.Context) {
	var ids []string
	for _, raw := range c.QueryArray("ids") {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}

	results, err := h.svc.Statuses(c.Request.Context(), ids)
	if err != nil {
		_ = c.Error(err)
		return
	}

	data := make([]dto.QueryResponse, len(results))
	for i, resp := range results {
		data[i] = dto.NewQueryResponse(ids[i], resp)
	}
	c.JSON(http.StatusOK, dto.StatusListResponse{Data: data})
}

func (h *PaymentHandler) Terminal(c *gin.Context) {
	id := c.Param("id")
	c.JSON(http.StatusOK, dto.TerminalResponse{
		TransactionID: id,
		TerminalURL:   h.svc.TerminalURL(id),
	})
}

func (h *PaymentHandler) Operations(c *gin.Context) {
	params := dto.ParsePagination(c)

	records, total, err := h.svc.Operations(c.Request.Context(), c.Param("id"), params.PageSize, params.Offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.OperationListResponse{
		Data:       records,
		Pagination: dto.NewPagination(params.Page, params.PageSize, total),
	})
}

// Routes mounts the payment endpoints on an /api/v1 group.
func (h *PaymentHandler) Routes(api *gin.RouterGroup) {
	api.POST("/transactions", h.Register)
	api.GET("/transactions", h.Statuses)
	api.GET("/transactions/:id", h.Query)
	api.GET("/transactions/:id/terminal", h.Terminal)
	api.GET("/transactions/:id/operations", h.Operations)
	api.POST("/transactions/:id/auth", h.Process(netaxept.OpAuth))
	api.POST("/transactions/:id/sale", h.Process(netaxept.OpSale))
	api.POST("/transactions/:id/capture", h.Process(netaxept.OpCapture))
	api.POST("/transactions/:id/credit", h.Process(netaxept.OpCredit))
	api.POST("/transactions/:id/annul", h.Annul)
}
