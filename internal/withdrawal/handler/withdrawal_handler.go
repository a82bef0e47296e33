package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/najmulislamnajim/expire-product-api/internal/withdrawal/repository"
	"github.com/najmulislamnajim/expire-product-api/internal/withdrawal/service"
)

// WithdrawalHandler exposes the request/withdrawal half of the order
// lifecycle.
type WithdrawalHandler struct {
	svc *service.WithdrawalService
}

func NewWithdrawalHandler(svc *service.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{svc: svc}
}

// RegisterRoutes mounts the withdrawal endpoints on rg.
func (h *WithdrawalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/request", h.CreateRequest)
	rg.GET("/request/list", h.RequestList)
	rg.PUT("/request/edit", h.UpdateRequest)
	rg.PUT("/request/approve/:invoiceNo", h.ApproveRequest)
	rg.PUT("/assign-da", h.AssignDA)
	rg.POST("/save/:invoiceNo", h.SaveWithdrawal)
	rg.PUT("/confirm/:invoiceNo", h.ConfirmWithdrawal)
	rg.GET("/list", h.List)
	rg.GET("/final-list", h.FinalList)
}

// RegisterMaterialRoutes mounts the material master endpoints on rg.
func (h *WithdrawalHandler) RegisterMaterialRoutes(rg *gin.RouterGroup) {
	rg.GET("/list", h.MaterialList)
}

// MaterialList serves the full material master for the field apps.
func (h *WithdrawalHandler) MaterialList(c *gin.Context) {
	materials, err := h.svc.MaterialList(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, "Data fetched successfully.", materials)
}

// CreateRequest opens a new withdrawal order.
func (h *WithdrawalHandler) CreateRequest(c *gin.Context) {
	var in service.CreateRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	info, err := h.svc.CreateRequest(c.Request.Context(), in)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, "Withdrawal request created successfully.", info)
}

func idFilters(c *gin.Context) repository.IDFilters {
	return repository.IDFilters{
		MioID:        c.Query("mio_id"),
		RmID:         c.Query("rm_id"),
		DepotID:      c.Query("depot_id"),
		DaID:         c.Query("da_id"),
		DeliveryDaID: c.Query("delivery_da_id"),
	}
}

// RequestList lists orders with their request lines, filtered by
// participant and status.
func (h *WithdrawalHandler) RequestList(c *gin.Context) {
	page, perPage, ok := pageParams(c)
	if !ok {
		return
	}
	items, meta, err := h.svc.RequestList(c.Request.Context(), idFilters(c), c.DefaultQuery("status", "all"), page, perPage)
	if err != nil {
		HandleError(c, err)
		return
	}
	message := "Data fetched successfully."
	if len(items) == 0 {
		message = "No Items Found!"
	}
	Paginated(c, message, items, meta)
}

// UpdateRequest edits the header fields and request lines of a
// still-unapproved order.
func (h *WithdrawalHandler) UpdateRequest(c *gin.Context) {
	var body service.UpdateRequestInput
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	lines, err := h.svc.UpdateRequest(c.Request.Context(), body)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, "Withdrawal request updated successfully.", gin.H{
		"invoice_no":   body.InvoiceNo,
		"request_list": lines,
	})
}

// ApproveRequest approves the MIO's request.
func (h *WithdrawalHandler) ApproveRequest(c *gin.Context) {
	info, err := h.svc.ApproveRequest(c.Request.Context(), c.Param("invoiceNo"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, "Withdrawal request approved successfully.", gin.H{"invoice_no": info.InvoiceNo})
}

type assignDABody struct {
	InvoiceNo string `json:"invoice_no" binding:"required"`
	DaID      string `json:"da_id" binding:"required"`
}

// AssignDA hands the approved order to a delivery associate.
func (h *WithdrawalHandler) AssignDA(c *gin.Context) {
	var body assignDABody
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "Please provide invoice_no and da_id.")
		return
	}
	info, err := h.svc.AssignDA(c.Request.Context(), body.InvoiceNo, body.DaID)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, "DA assigned successfully.", gin.H{"invoice_no": info.InvoiceNo, "da_id": body.DaID})
}

type saveWithdrawalBody struct {
	WithdrawalList []service.WithdrawalLineInput `json:"withdrawal_list" binding:"required"`
}

// SaveWithdrawal records the quantities the DA actually withdrew.
func (h *WithdrawalHandler) SaveWithdrawal(c *gin.Context) {
	var body saveWithdrawalBody
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	info, err := h.svc.SaveWithdrawal(c.Request.Context(), c.Param("invoiceNo"), body.WithdrawalList)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, "Withdrawal saved successfully.", gin.H{"invoice_no": info.InvoiceNo})
}

// ConfirmWithdrawal is the RM's sign-off on the withdrawn quantities.
func (h *WithdrawalHandler) ConfirmWithdrawal(c *gin.Context) {
	info, err := h.svc.ConfirmWithdrawal(c.Request.Context(), c.Param("invoiceNo"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, "Withdrawal request confirmed successfully.", gin.H{"invoice_no": info.InvoiceNo})
}

// List is the flat header list filtered on the progress flags.
func (h *WithdrawalHandler) List(c *gin.Context) {
	page, perPage, ok := pageParams(c)
	if !ok {
		return
	}
	flag := repository.FlagFilter(c.DefaultQuery("status", "all"))
	items, meta, err := h.svc.ListByFlags(c.Request.Context(), idFilters(c), flag, page, perPage)
	if err != nil {
		HandleError(c, err)
		return
	}
	message := "Data fetched successfully."
	if len(items) == 0 {
		message = "No Items Found!"
	}
	Paginated(c, message, items, meta)
}

// FinalList compares requested lines with withdrawn quantities per
// order.
func (h *WithdrawalHandler) FinalList(c *gin.Context) {
	page, perPage, ok := pageParams(c)
	if !ok {
		return
	}
	status := c.Query("status")
	items, meta, err := h.svc.FinalList(c.Request.Context(), idFilters(c), status, page, perPage)
	if err != nil {
		HandleError(c, err)
		return
	}
	message := "Data fetched successfully."
	if len(items) == 0 {
		message = "No data found."
	}
	Paginated(c, message, items, meta)
}
