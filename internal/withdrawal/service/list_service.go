package service

import (
	"context"
	"fmt"

	"github.com/najmulislamnajim/expire-product-api/internal/shared/apperr"
	"github.com/najmulislamnajim/expire-product-api/internal/shared/pagination"
	"github.com/najmulislamnajim/expire-product-api/internal/withdrawal/entity"
	"github.com/najmulislamnajim/expire-product-api/internal/withdrawal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// requestListStatuses maps the list endpoint's filter vocabulary to
// stored statuses. "request_pending" is the historical API name for
// orders still in request status; the filter keeps it so existing
// clients survive.
var requestListStatuses = map[string]entity.Status{
	"all":                 "",
	"request_pending":     entity.StatusRequest,
	"request_approved":    entity.StatusRequestApproved,
	"withdrawal_pending":  entity.StatusWithdrawalPending,
	"withdrawal_approval": entity.StatusWithdrawalApproval,
	"withdrawal_approved": entity.StatusWithdrawalApproved,
}

// RequestMaterialView is a request line enriched with material master
// data and derived prices. Prices stay nil when the pack-size
// descriptor cannot be parsed.
type RequestMaterialView struct {
	ListID          uint64           `json:"list_id"`
	Matnr           string           `json:"matnr"`
	MaterialName    string           `json:"material_name"`
	ProducerCompany string           `json:"producer_company"`
	Batch           string           `json:"batch"`
	PackQty         int              `json:"pack_qty"`
	StripQty        int              `json:"strip_qty"`
	UnitQty         int              `json:"unit_qty"`
	NetVal          decimal.Decimal  `json:"net_val"`
	UnitTP          decimal.Decimal  `json:"unit_tp"`
	UnitVAT         decimal.Decimal  `json:"unit_vat"`
	ExpireDate      *entity.Date     `json:"expire_date"`
	PackPrice       *decimal.Decimal `json:"pack_price"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
}

// RequestListItem is one order with its enriched request lines.
type RequestListItem struct {
	repository.RequestHeaderRow
	RequestList []RequestMaterialView `json:"request_list"`
}

// RequestList returns orders matching the participant filters and
// status, newest first, one page at a time. Lines are fetched and
// priced only for the page being returned.
func (s *WithdrawalService) RequestList(ctx context.Context, filters repository.IDFilters, statusKey string, page, perPage int) ([]RequestListItem, pagination.Meta, error) {
	if filters.Empty() {
		return nil, pagination.Meta{}, apperr.Validationf("at least one of mio_id, rm_id, depot_id, da_id is required")
	}
	status, ok := requestListStatuses[statusKey]
	if !ok {
		return nil, pagination.Meta{}, apperr.Validationf("invalid status %q", statusKey)
	}

	headers, err := s.proj.RequestHeaders(ctx, filters, status)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("list request headers: %w", err)
	}
	pageHeaders, meta := pagination.Paginate(headers, page, perPage)

	ids := make([]uint64, 0, len(pageHeaders))
	for _, h := range pageHeaders {
		ids = append(ids, h.ID)
	}
	materials, err := s.proj.RequestMaterials(ctx, ids)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("list request materials: %w", err)
	}

	byInvoice := make(map[uint64][]RequestMaterialView, len(pageHeaders))
	for _, m := range materials {
		byInvoice[m.InvoiceID] = append(byInvoice[m.InvoiceID], s.materialView(ctx, m))
	}

	items := make([]RequestListItem, 0, len(pageHeaders))
	for _, h := range pageHeaders {
		lines := byInvoice[h.ID]
		if lines == nil {
			lines = []RequestMaterialView{}
		}
		items = append(items, RequestListItem{RequestHeaderRow: h, RequestList: lines})
	}
	return items, meta, nil
}

// materialView derives pack and unit prices from the material master
// columns. A malformed pack-size descriptor is logged and leaves both
// prices nil rather than failing the whole list.
func (s *WithdrawalService) materialView(ctx context.Context, m repository.RequestMaterialRow) RequestMaterialView {
	view := RequestMaterialView{
		ListID:          m.ListID,
		Matnr:           m.Matnr,
		MaterialName:    m.MaterialName,
		ProducerCompany: m.ProducerCompany,
		Batch:           m.Batch,
		PackQty:         m.PackQty,
		StripQty:        m.StripQty,
		UnitQty:         m.UnitQty,
		NetVal:          m.NetVal,
		UnitTP:          m.UnitTP,
		UnitVAT:         m.UnitVAT,
		ExpireDate:      m.ExpireDate,
	}
	unitPrice, err := s.prices.UnitPrice(ctx, m.Matnr, m.PackSize, m.UnitTP, m.UnitVAT)
	if err != nil {
		s.logger.Warn("unparseable pack size",
			zap.String("matnr", m.Matnr),
			zap.String("pack_size", m.PackSize),
			zap.Error(err))
		return view
	}
	packPrice := m.UnitTP.Add(m.UnitVAT)
	view.PackPrice = &packPrice
	view.UnitPrice = &unitPrice
	return view
}

// FinalMaterial pairs one requested line with the withdrawn quantities
// for the same material, if any.
type FinalMaterial struct {
	Matnr             string           `json:"matnr"`
	MaterialName      string           `json:"material_name"`
	Batch             string           `json:"batch"`
	RequestPackQty    int              `json:"request_pack_qty"`
	RequestUnitQty    int              `json:"request_unit_qty"`
	RequestNetVal     decimal.Decimal  `json:"request_net_val"`
	ExpireDate        *entity.Date     `json:"expire_date"`
	WithdrawalPackQty *int             `json:"withdrawal_pack_qty"`
	WithdrawalUnitQty *int             `json:"withdrawal_unit_qty"`
	WithdrawalNetVal  *decimal.Decimal `json:"withdrawal_net_val"`
}

// FinalListItem is one order in the request-vs-withdrawal comparison
// view.
type FinalListItem struct {
	InvoiceNo              string          `json:"invoice_no"`
	MioID                  string          `json:"mio_id"`
	RmID                   string          `json:"rm_id"`
	DaID                   *string         `json:"da_id"`
	DaName                 string          `json:"da_name"`
	DaMobileNo             string          `json:"da_mobile_no"`
	DepotID                *string         `json:"depot_id"`
	RouteID                *string         `json:"route_id"`
	PartnerID              string          `json:"partner_id"`
	PartnerName            string          `json:"partner_name"`
	PartnerAddress         string          `json:"partner_address"`
	PartnerMobileNo        string          `json:"partner_mobile_no"`
	ContactPerson          string          `json:"contact_person"`
	RequestApproval        bool            `json:"request_approval"`
	WithdrawalConfirmation bool            `json:"withdrawal_confirmation"`
	ReplacementOrder       bool            `json:"replacement_order"`
	OrderApproval          bool            `json:"order_approval"`
	OrderDelivery          bool            `json:"order_delivery"`
	RequestDate            *entity.Date    `json:"request_date"`
	RequestApprovalDate    *entity.Date    `json:"request_approval_date"`
	WithdrawalDate         *entity.Date    `json:"withdrawal_date"`
	WithdrawalApprovalDate *entity.Date    `json:"withdrawal_approval_date"`
	OrderDate              *entity.Date    `json:"order_date"`
	OrderApprovalDate      *entity.Date    `json:"order_approval_date"`
	DeliveryDate           *entity.Date    `json:"delivery_date"`
	LastStatus             entity.Status   `json:"last_status"`
	Materials              []FinalMaterial `json:"materials"`
}

// FinalList is the DA/depot work list after assignment: "withdrawal_approval"
// shows orders still waiting for the DA (stored status withdrawal_pending,
// the filter name predates the status rename), "withdrawal_approved"
// shows completed ones.
func (s *WithdrawalService) FinalList(ctx context.Context, filters repository.IDFilters, statusKey string, page, perPage int) ([]FinalListItem, pagination.Meta, error) {
	if filters.Empty() {
		return nil, pagination.Meta{}, apperr.Validationf("at least one of mio_id, rm_id, depot_id, da_id is required")
	}
	var queryStatus entity.Status
	switch statusKey {
	case "withdrawal_approval":
		queryStatus = entity.StatusWithdrawalPending
	case "withdrawal_approved":
		queryStatus = entity.StatusWithdrawalApproved
	default:
		return nil, pagination.Meta{}, apperr.Validationf("invalid status %q, expected withdrawal_approval or withdrawal_approved", statusKey)
	}

	rows, err := s.proj.FinalRows(ctx, filters, queryStatus)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("final list rows: %w", err)
	}

	items := groupFinalRows(rows)
	paged, meta := pagination.Paginate(items, page, perPage)
	return paged, meta, nil
}

// groupFinalRows folds the flat join back into one item per order,
// keeping the rows' order: orders newest first, lines in insertion
// order within each.
func groupFinalRows(rows []repository.FinalRow) []FinalListItem {
	items := make([]FinalListItem, 0)
	index := make(map[string]int)
	for _, row := range rows {
		i, seen := index[row.InvoiceNo]
		if !seen {
			items = append(items, FinalListItem{
				InvoiceNo:              row.InvoiceNo,
				MioID:                  row.MioID,
				RmID:                   row.RmID,
				DaID:                   row.DaID,
				DaName:                 row.DaName,
				DaMobileNo:             row.DaMobileNo,
				DepotID:                row.DepotID,
				RouteID:                row.RouteID,
				PartnerID:              row.PartnerID,
				PartnerName:            row.PartnerName,
				PartnerAddress:         row.PartnerAddress,
				PartnerMobileNo:        row.PartnerMobileNo,
				ContactPerson:          row.ContactPerson,
				RequestApproval:        row.RequestApproval,
				WithdrawalConfirmation: row.WithdrawalConfirmation,
				ReplacementOrder:       row.ReplacementOrder,
				OrderApproval:          row.OrderApproval,
				OrderDelivery:          row.OrderDelivery,
				RequestDate:            row.RequestDate,
				RequestApprovalDate:    row.RequestApprovalDate,
				WithdrawalDate:         row.WithdrawalDate,
				WithdrawalApprovalDate: row.WithdrawalApprovalDate,
				OrderDate:              row.OrderDate,
				OrderApprovalDate:      row.OrderApprovalDate,
				DeliveryDate:           row.DeliveryDate,
				LastStatus:             row.LastStatus,
			})
			i = len(items) - 1
			index[row.InvoiceNo] = i
		}
		items[i].Materials = append(items[i].Materials, FinalMaterial{
			Matnr:             row.Matnr,
			MaterialName:      row.MaterialName,
			Batch:             row.Batch,
			RequestPackQty:    row.RequestPackQty,
			RequestUnitQty:    row.RequestUnitQty,
			RequestNetVal:     row.RequestNetVal,
			ExpireDate:        row.ExpireDate,
			WithdrawalPackQty: row.WithdrawalPackQty,
			WithdrawalUnitQty: row.WithdrawalUnitQty,
			WithdrawalNetVal:  row.WithdrawalNetVal,
		})
	}
	return items
}

// ListByFlags is the flat header list filtered on the progress booleans
// rather than last_status.
func (s *WithdrawalService) ListByFlags(ctx context.Context, filters repository.IDFilters, flag repository.FlagFilter, page, perPage int) ([]entity.WithdrawalInfo, pagination.Meta, error) {
	if filters.Empty() {
		return nil, pagination.Meta{}, apperr.Validationf("at least one of mio_id, rm_id, depot_id, da_id, delivery_da_id is required")
	}
	headers, err := s.repo.FindByFlags(ctx, filters, flag)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	paged, meta := pagination.Paginate(headers, page, perPage)
	return paged, meta, nil
}

// MaterialList returns the material master, ordered by matnr.
func (s *WithdrawalService) MaterialList(ctx context.Context) ([]entity.Material, error) {
	materials, err := s.proj.Materials(ctx)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return materials, nil
}
