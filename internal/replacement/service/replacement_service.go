package service

import (
	"context"
	"fmt"

	"github.com/najmulislamnajim/expire-product-api/internal/replacement/entity"
	"github.com/najmulislamnajim/expire-product-api/internal/replacement/repository"
	"github.com/najmulislamnajim/expire-product-api/internal/shared/apperr"
	"github.com/najmulislamnajim/expire-product-api/internal/shared/pagination"
	wentity "github.com/najmulislamnajim/expire-product-api/internal/withdrawal/entity"
	wrepo "github.com/najmulislamnajim/expire-product-api/internal/withdrawal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReplacementService drives the back half of the lifecycle: placing a
// replacement order against a fully withdrawn invoice, RM approval,
// delivery DA assignment and the final delivery confirmation.
type ReplacementService struct {
	repo   *repository.ReplacementRepository
	orders *wrepo.WithdrawalRepository
	logger *zap.Logger
}

func NewReplacementService(repo *repository.ReplacementRepository, orders *wrepo.WithdrawalRepository, logger *zap.Logger) *ReplacementService {
	return &ReplacementService{repo: repo, orders: orders, logger: logger}
}

// AvailableList shows the MIO which withdrawn orders can still take a
// replacement, most recently withdrawn first.
func (s *ReplacementService) AvailableList(ctx context.Context, mioID string, page, perPage int) ([]repository.AvailableRow, pagination.Meta, error) {
	if mioID == "" {
		return nil, pagination.Meta{}, apperr.Validationf("mio_id is required")
	}
	rows, err := s.repo.AvailableRows(ctx, mioID)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("available replacement list: %w", err)
	}
	paged, meta := pagination.Paginate(rows, page, perPage)
	return paged, meta, nil
}

// ReplacementLineInput is one material on a replacement order.
type ReplacementLineInput struct {
	Matnr   string          `json:"matnr" binding:"required"`
	Batch   *string         `json:"batch"`
	PackQty int             `json:"pack_qty"`
	UnitQty int             `json:"unit_qty"`
	NetVal  decimal.Decimal `json:"net_val"`
}

// CreateOrderInput places a replacement order against an existing
// invoice.
type CreateOrderInput struct {
	InvoiceNo string                 `json:"invoice_no" binding:"required"`
	Materials []ReplacementLineInput `json:"materials" binding:"required"`
}

// CreateOrder attaches replacement lines to a withdrawn order and moves
// it to replacement_approval. Only orders sitting exactly in
// withdrawal_approved qualify; a second create on the same invoice is
// rejected by the same rule.
func (s *ReplacementService) CreateOrder(ctx context.Context, in CreateOrderInput) (*wentity.WithdrawalInfo, error) {
	if len(in.Materials) == 0 {
		return nil, apperr.Validationf("materials must not be empty")
	}
	info, err := s.orders.GetByInvoiceNo(ctx, in.InvoiceNo)
	if err != nil {
		return nil, err
	}
	next, err := wentity.Transition(wentity.OpCreateReplacement, info.LastStatus)
	if err != nil {
		return nil, err
	}

	today := wentity.Today()
	info.LastStatus = next
	info.ReplacementOrder = true
	info.OrderDate = &today

	lines := make([]entity.ReplacementLine, 0, len(in.Materials))
	for _, m := range in.Materials {
		lines = append(lines, entity.ReplacementLine{
			Matnr:   m.Matnr,
			Batch:   m.Batch,
			PackQty: m.PackQty,
			UnitQty: m.UnitQty,
			NetVal:  m.NetVal,
		})
	}
	if err := s.repo.CreateOrder(ctx, info, lines); err != nil {
		return nil, fmt.Errorf("create replacement order: %w", err)
	}
	s.logger.Info("replacement order created",
		zap.String("invoice_no", info.InvoiceNo),
		zap.Int("lines", len(lines)))
	return info, nil
}

// ApproveOrder is the RM's approval; the order moves to
// replacement_approved and becomes visible to the depot.
func (s *ReplacementService) ApproveOrder(ctx context.Context, invoiceNo string) (*wentity.WithdrawalInfo, error) {
	return s.advance(ctx, invoiceNo, wentity.OpApproveReplacement, func(info *wentity.WithdrawalInfo) {
		today := wentity.Today()
		info.OrderApproval = true
		info.OrderApprovalDate = &today
	})
}

// AssignDeliveryDA hands the approved order to a delivery associate.
func (s *ReplacementService) AssignDeliveryDA(ctx context.Context, invoiceNo, deliveryDaID string) (*wentity.WithdrawalInfo, error) {
	if deliveryDaID == "" {
		return nil, apperr.Validationf("delivery_da_id is required")
	}
	return s.advance(ctx, invoiceNo, wentity.OpAssignDeliveryDA, func(info *wentity.WithdrawalInfo) {
		info.DeliveryDaID = &deliveryDaID
	})
}

// ConfirmDelivery closes the lifecycle: the replacement stock reached
// the customer.
func (s *ReplacementService) ConfirmDelivery(ctx context.Context, invoiceNo string) (*wentity.WithdrawalInfo, error) {
	return s.advance(ctx, invoiceNo, wentity.OpConfirmDelivery, func(info *wentity.WithdrawalInfo) {
		today := wentity.Today()
		info.OrderDelivery = true
		info.DeliveryDate = &today
	})
}

func (s *ReplacementService) advance(ctx context.Context, invoiceNo string, op wentity.Operation, mutate func(*wentity.WithdrawalInfo)) (*wentity.WithdrawalInfo, error) {
	info, err := s.orders.GetByInvoiceNo(ctx, invoiceNo)
	if err != nil {
		return nil, err
	}
	next, err := wentity.Transition(op, info.LastStatus)
	if err != nil {
		return nil, err
	}
	info.LastStatus = next
	mutate(info)
	if err := s.orders.Update(ctx, info); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.logger.Info("order status advanced",
		zap.String("invoice_no", invoiceNo),
		zap.String("status", string(next)))
	return info, nil
}

// OrderMaterial is one replacement line in a grouped list item.
type OrderMaterial struct {
	Matnr        string          `json:"matnr"`
	MaterialName string          `json:"material_name"`
	Batch        *string         `json:"batch"`
	PackQty      int             `json:"pack_qty"`
	UnitQty      int             `json:"unit_qty"`
	NetVal       decimal.Decimal `json:"net_val"`
}

// OrderListItem is one replacement order with customer, route and line
// context.
type OrderListItem struct {
	InvoiceNo         string          `json:"invoice_no"`
	MioID             string          `json:"mio_id"`
	RmID              string          `json:"rm_id"`
	DepotID           *string         `json:"depot_id"`
	RouteID           *string         `json:"route_id"`
	RouteName         string          `json:"route_name"`
	PartnerID         string          `json:"partner_id"`
	PartnerName       string          `json:"partner_name"`
	PartnerAddress    string          `json:"partner_address"`
	PartnerMobileNo   string          `json:"partner_mobile_no"`
	ContactPerson     string          `json:"contact_person"`
	OrderDate         *wentity.Date   `json:"order_date"`
	OrderApprovalDate *wentity.Date   `json:"order_approval_date"`
	DeliveryDate      *wentity.Date   `json:"delivery_date"`
	DeliveryDaID      *string         `json:"delivery_da_id"`
	LastStatus        wentity.Status  `json:"last_status"`
	Materials         []OrderMaterial `json:"materials"`
}

// ApprovalList shows the RM the orders waiting for replacement
// approval.
func (s *ReplacementService) ApprovalList(ctx context.Context, rmID string, page, perPage int) ([]OrderListItem, pagination.Meta, error) {
	if rmID == "" {
		return nil, pagination.Meta{}, apperr.Validationf("rm_id is required")
	}
	return s.orderList(ctx, repository.OrderFilters{RmID: rmID}, wentity.StatusReplacementApproval, false, page, perPage)
}

// OrderList shows the depot approved orders that still need a delivery
// DA.
func (s *ReplacementService) OrderList(ctx context.Context, filters repository.OrderFilters, page, perPage int) ([]OrderListItem, pagination.Meta, error) {
	if filters.Empty() {
		return nil, pagination.Meta{}, apperr.Validationf("at least one of mio_id, rm_id, depot_id is required")
	}
	return s.orderList(ctx, filters, wentity.StatusReplacementApproved, true, page, perPage)
}

// DeliveryPendingList shows the delivery DA the orders on their plate.
func (s *ReplacementService) DeliveryPendingList(ctx context.Context, filters repository.OrderFilters, page, perPage int) ([]OrderListItem, pagination.Meta, error) {
	if filters.Empty() {
		return nil, pagination.Meta{}, apperr.Validationf("at least one of mio_id, rm_id, depot_id, delivery_da_id is required")
	}
	return s.orderList(ctx, filters, wentity.StatusDeliveryPending, false, page, perPage)
}

// DeliveredList shows completed deliveries.
func (s *ReplacementService) DeliveredList(ctx context.Context, filters repository.OrderFilters, page, perPage int) ([]OrderListItem, pagination.Meta, error) {
	if filters.Empty() {
		return nil, pagination.Meta{}, apperr.Validationf("at least one of mio_id, rm_id, depot_id, delivery_da_id is required")
	}
	return s.orderList(ctx, filters, wentity.StatusDelivered, false, page, perPage)
}

func (s *ReplacementService) orderList(ctx context.Context, filters repository.OrderFilters, status wentity.Status, unassignedOnly bool, page, perPage int) ([]OrderListItem, pagination.Meta, error) {
	rows, err := s.repo.OrderRows(ctx, filters, status, unassignedOnly)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("replacement order rows: %w", err)
	}
	items := groupOrderRows(rows)
	paged, meta := pagination.Paginate(items, page, perPage)
	return paged, meta, nil
}

// groupOrderRows folds the flat join into one item per order, newest
// first, lines in insertion order.
func groupOrderRows(rows []repository.OrderRow) []OrderListItem {
	items := make([]OrderListItem, 0)
	index := make(map[string]int)
	for _, row := range rows {
		i, seen := index[row.InvoiceNo]
		if !seen {
			items = append(items, OrderListItem{
				InvoiceNo:         row.InvoiceNo,
				MioID:             row.MioID,
				RmID:              row.RmID,
				DepotID:           row.DepotID,
				RouteID:           row.RouteID,
				RouteName:         row.RouteName,
				PartnerID:         row.PartnerID,
				PartnerName:       row.PartnerName,
				PartnerAddress:    row.PartnerAddress,
				PartnerMobileNo:   row.PartnerMobileNo,
				ContactPerson:     row.ContactPerson,
				OrderDate:         row.OrderDate,
				OrderApprovalDate: row.OrderApprovalDate,
				DeliveryDate:      row.DeliveryDate,
				DeliveryDaID:      row.DeliveryDaID,
				LastStatus:        row.LastStatus,
			})
			i = len(items) - 1
			index[row.InvoiceNo] = i
		}
		items[i].Materials = append(items[i].Materials, OrderMaterial{
			Matnr:        row.Matnr,
			MaterialName: row.MaterialName,
			Batch:        row.Batch,
			PackQty:      row.PackQty,
			UnitQty:      row.UnitQty,
			NetVal:       row.NetVal,
		})
	}
	return items
}
