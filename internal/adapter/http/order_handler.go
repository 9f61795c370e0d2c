package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	domain "github.com/Jaysins/yoghurt-backend/internal/entity"
	"github.com/Jaysins/yoghurt-backend/internal/logging"
	"github.com/Jaysins/yoghurt-backend/internal/storage"
	"github.com/Jaysins/yoghurt-backend/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	create   *usecase.CreateOrder
	update   *usecase.UpdateOrder
	finalize *usecase.FinalizeOrder
	query    usecase.OrderRepo
	uploads  *storage.UploadStore
}

func NewOrderHandler(create *usecase.CreateOrder, update *usecase.UpdateOrder, finalize *usecase.FinalizeOrder, query usecase.OrderRepo, uploads *storage.UploadStore) *OrderHandler {
	return &OrderHandler{create: create, update: update, finalize: finalize, query: query, uploads: uploads}
}

type itemReq struct {
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Quantity int             `json:"quantity"`
}

type createOrderReq struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	Street      string    `json:"street"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Country     string    `json:"country"`
	Items       []itemReq `json:"items"`
}

type updateOrderReq struct {
	Name        *string   `json:"name"`
	Email       *string   `json:"email"`
	PhoneNumber *string   `json:"phone_number"`
	Street      *string   `json:"street"`
	City        *string   `json:"city"`
	State       *string   `json:"state"`
	Country     *string   `json:"country"`
	Items       []itemReq `json:"items"`
}

type itemResp struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Quantity int    `json:"quantity"`
	Total    string `json:"total"`
}

type orderResp struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	PhoneNumber    string     `json:"phone_number"`
	Street         string     `json:"street"`
	City           string     `json:"city"`
	State          string     `json:"state"`
	Country        string     `json:"country"`
	ReferenceCode  string     `json:"reference_code"`
	PaymentCode    string     `json:"payment_code"`
	OrderStatus    string     `json:"order_status"`
	ProofOfPayment string     `json:"proof_of_payment,omitempty"`
	Items          []itemResp `json:"items"`
	Total          string     `json:"total"`
	CreatedAt      string     `json:"created_at"`
	UpdatedAt      string     `json:"updated_at"`
}

func toOrderResp(o *domain.Order) orderResp {
	items := make([]itemResp, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, itemResp{
			ID:       it.ID,
			Name:     it.Name,
			Amount:   it.Amount.StringFixed(2),
			Quantity: it.Quantity,
			Total:    it.Total().StringFixed(2),
		})
	}
	return orderResp{
		ID:             o.ID,
		Name:           o.Name,
		Email:          o.Email,
		PhoneNumber:    o.PhoneNumber,
		Street:         o.Street,
		City:           o.City,
		State:          o.State,
		Country:        o.Country,
		ReferenceCode:  o.ReferenceCode,
		PaymentCode:    o.PaymentCode,
		OrderStatus:    string(o.Status),
		ProofOfPayment: o.ProofOfPayment,
		Items:          items,
		Total:          o.Total().StringFixed(2),
		CreatedAt:      o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      o.UpdatedAt.Format(time.RFC3339),
	}
}

func toItemInputs(in []itemReq) []usecase.ItemInput {
	if in == nil {
		return nil
	}
	items := make([]usecase.ItemInput, 0, len(in))
	for _, it := range in {
		items = append(items, usecase.ItemInput{Name: it.Name, Amount: it.Amount, Quantity: it.Quantity})
	}
	return items
}

// CreateOrder handles POST /v1/orders.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request must be valid JSON"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	o, err := h.create.Execute(ctx, usecase.CreateOrderInput{
		Name:           req.Name,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		Street:         req.Street,
		City:           req.City,
		State:          req.State,
		Country:        req.Country,
		IdempotencyKey: c.GetHeader("X-Idempotency-Key"),
		Items:          toItemInputs(req.Items),
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"order":   toOrderResp(o),
	})
}

// UpdateOrder handles PUT /v1/orders/:id. Only pending orders can change.
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req updateOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request must be valid JSON"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	o, err := h.update.Execute(ctx, c.Param("id"), usecase.UpdateOrderInput{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Street:      req.Street,
		City:        req.City,
		State:       req.State,
		Country:     req.Country,
		Items:       toItemInputs(req.Items),
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order updated successfully",
		"order":   toOrderResp(o),
	})
}

// UploadPaymentProof handles POST /v1/orders/:id/payment. Storing the file
// and flipping the order to finalized commit first; the email outcomes ride
// along as data and never fail the request.
func (h *OrderHandler) UploadPaymentProof(c *gin.Context) {
	fh, err := c.FormFile("proof_of_payment")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing proof of payment file"})
		return
	}
	if fh.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file selected"})
		return
	}
	if !h.uploads.Allowed(fh.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid file type, allowed types: " + strings.Join(h.uploads.AllowedExtensions(), ", "),
		})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}
	defer f.Close()

	stored, err := h.uploads.Save(fh.Filename, f)
	if err != nil {
		if errors.Is(err, storage.ErrFileTooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		logging.From(c).Error("upload save failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store upload"})
		return
	}

	out, err := h.finalize.Execute(c.Request.Context(), c.Param("id"), stored)
	if err != nil {
		// the transition was rejected, so the file has no owner
		if rmErr := h.uploads.Remove(stored); rmErr != nil {
			logging.From(c).Warn("orphan upload cleanup failed", "file", stored, "error", rmErr)
		}
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Proof of payment uploaded successfully",
		"order":       toOrderResp(out.Order),
		"emails_sent": out.Notified,
	})
}

// GetOrderByID handles GET /v1/orders/:id.
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	o, err := h.query.GetByID(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": toOrderResp(o)})
}

// fail maps the usecase error taxonomy onto HTTP statuses.
func (h *OrderHandler) fail(c *gin.Context, err error) {
	if ve, ok := usecase.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
		return
	}
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, usecase.ErrInvalidState):
		c.JSON(http.StatusForbidden, gin.H{"error": "order is no longer pending"})
	case errors.Is(err, usecase.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate request"})
	default:
		logging.From(c).Error("request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
