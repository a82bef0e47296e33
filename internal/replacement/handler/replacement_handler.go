package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/najmulislamnajim/expire-product-api/internal/replacement/repository"
	"github.com/najmulislamnajim/expire-product-api/internal/replacement/service"
)

// ReplacementHandler exposes the replacement and delivery half of the
// order lifecycle.
type ReplacementHandler struct {
	svc *service.ReplacementService
}

func NewReplacementHandler(svc *service.ReplacementService) *ReplacementHandler {
	return &ReplacementHandler{svc: svc}
}

// RegisterRoutes mounts the replacement endpoints on rg.
func (h *ReplacementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/available_list", h.AvailableList)
	rg.POST("/create", h.Create)
	rg.GET("/approval_list", h.ApprovalList)
	rg.PUT("/approve", h.Approve)
	rg.GET("/order_list", h.OrderList)
	rg.PUT("/assign-da", h.AssignDeliveryDA)
	rg.GET("/delivery_pending", h.DeliveryPending)
	rg.GET("/delivered", h.Delivered)
	rg.PUT("/delivery/confirm", h.ConfirmDelivery)
}

// AvailableList shows the MIO's withdrawn orders still open for a
// replacement.
func (h *ReplacementHandler) AvailableList(c *gin.Context) {
	page, perPage, ok := pageParams(c)
	if !ok {
		return
	}
	rows, meta, err := h.svc.AvailableList(c.Request.Context(), c.Query("mio_id"), page, perPage)
	if err != nil {
		HandleError(c, err)
		return
	}
	message := "Data fetched successfully."
	if len(rows) == 0 {
		message = "No available replacements found."
	}
	Paginated(c, message, rows, meta)
}

// Create places a replacement order against a withdrawn invoice.
func (h *ReplacementHandler) Create(c *gin.Context) {
	var in service.CreateOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Both 'invoice_no' and 'materials' are required.")
		return
	}
	info, err := h.svc.CreateOrder(c.Request.Context(), in)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, "Replacement order created successfully.", gin.H{"invoice_no": info.InvoiceNo})
}

// ApprovalList shows the RM the orders waiting for approval.
func (h *ReplacementHandler) ApprovalList(c *gin.Context) {
	page, perPage, ok := pageParams(c)
	if !ok {
		return
	}
	items, meta, err := h.svc.ApprovalList(c.Request.Context(), c.Query("rm_id"), page, perPage)
	if err != nil {
		HandleError(c, err)
		return
	}
	message := "Data fetched successfully."
	if len(items) == 0 {
		message = "No available replacements found."
	}
	Paginated(c, message, items, meta)
}

type approveBody struct {
	InvoiceNo string `json:"invoice_no" binding:"required"`
}

// Approve is the RM's approval of a replacement order.
func (h *ReplacementHandler) Approve(c *gin.Context) {
	var body approveBody
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "Please provide invoice_no.")
		return
	}
	info, err := h.svc.ApproveOrder(c.Request.Context(), body.InvoiceNo)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, "Successfully approved", gin.H{"invoice_no": info.InvoiceNo})
}

func orderFilters(c *gin.Context) repository.OrderFilters {
	return repository.OrderFilters{
		MioID:        c.Query("mio_id"),
		RmID:         c.Query("rm_id"),
		DepotID:      c.Query("depot_id"),
		DeliveryDaID: c.Query("delivery_da_id"),
	}
}

// OrderList shows the depot approved orders that still need a delivery
// DA.
func (h *ReplacementHandler) OrderList(c *gin.Context) {
	page, perPage, ok := pageParams(c)
	if !ok {
		return
	}
	items, meta, err := h.svc.OrderList(c.Request.Context(), orderFilters(c), page, perPage)
	if err != nil {
		HandleError(c, err)
		return
	}
	Paginated(c, listMessage(len(items)), items, meta)
}

// DeliveryPending shows orders assigned to a delivery DA and not yet
// delivered.
func (h *ReplacementHandler) DeliveryPending(c *gin.Context) {
	page, perPage, ok := pageParams(c)
	if !ok {
		return
	}
	items, meta, err := h.svc.DeliveryPendingList(c.Request.Context(), orderFilters(c), page, perPage)
	if err != nil {
		HandleError(c, err)
		return
	}
	Paginated(c, listMessage(len(items)), items, meta)
}

// Delivered shows completed deliveries.
func (h *ReplacementHandler) Delivered(c *gin.Context) {
	page, perPage, ok := pageParams(c)
	if !ok {
		return
	}
	items, meta, err := h.svc.DeliveredList(c.Request.Context(), orderFilters(c), page, perPage)
	if err != nil {
		HandleError(c, err)
		return
	}
	Paginated(c, listMessage(len(items)), items, meta)
}

type assignDeliveryDABody struct {
	InvoiceNo    string `json:"invoice_no" binding:"required"`
	DeliveryDaID string `json:"delivery_da_id" binding:"required"`
}

// AssignDeliveryDA hands an approved order to a delivery associate.
func (h *ReplacementHandler) AssignDeliveryDA(c *gin.Context) {
	var body assignDeliveryDABody
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "Please provide invoice_no and delivery_da_id.")
		return
	}
	info, err := h.svc.AssignDeliveryDA(c.Request.Context(), body.InvoiceNo, body.DeliveryDaID)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, "DA assigned successfully.", gin.H{"invoice_no": info.InvoiceNo, "delivery_da_id": body.DeliveryDaID})
}

type confirmDeliveryBody struct {
	InvoiceNo string `json:"invoice_no" binding:"required"`
}

// ConfirmDelivery closes the order.
func (h *ReplacementHandler) ConfirmDelivery(c *gin.Context) {
	var body confirmDeliveryBody
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "Please provide invoice_no.")
		return
	}
	info, err := h.svc.ConfirmDelivery(c.Request.Context(), body.InvoiceNo)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, "Delivery confirmed successfully.", gin.H{"invoice_no": info.InvoiceNo})
}

func listMessage(n int) string {
	if n == 0 {
		return "No data found."
	}
	return "Data fetched successfully."
}
