package repository

import (
	"context"

	"github.com/najmulislamnajim/expire-product-api/internal/replacement/entity"
	wentity "github.com/najmulislamnajim/expire-product-api/internal/withdrawal/entity"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReplacementRepository struct {
	db *gorm.DB
}

func NewReplacementRepository(db *gorm.DB) *ReplacementRepository {
	return &ReplacementRepository{db: db}
}

// CreateOrder inserts the replacement lines and persists the updated
// header in one transaction, so a failed insert never leaves the order
// half advanced.
func (r *ReplacementRepository) CreateOrder(ctx context.Context, header *wentity.WithdrawalInfo, lines []entity.ReplacementLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range lines {
			lines[i].InvoiceID = header.ID
		}
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}
		return tx.Save(header).Error
	})
}

// AvailableRow is a fully withdrawn order a MIO can place a replacement
// against, with the withdrawn value summed over its lines.
type AvailableRow struct {
	ID                     uint64          `json:"id"`
	InvoiceNo              string          `json:"invoice_no"`
	MioID                  string          `json:"mio_id"`
	RmID                   string          `json:"rm_id"`
	DaID                   *string         `json:"da_id"`
	DepotID                *string         `json:"depot_id"`
	RouteID                *string         `json:"route_id"`
	PartnerID              string          `json:"partner_id"`
	PartnerName            string          `json:"partner_name"`
	PartnerAddress         string          `json:"partner_address"`
	PartnerMobileNo        string          `json:"partner_mobile_no"`
	ContactPerson          string          `json:"contact_person"`
	RequestDate            *wentity.Date   `json:"request_date"`
	RequestApprovalDate    *wentity.Date   `json:"request_approval_date"`
	WithdrawalDate         *wentity.Date   `json:"withdrawal_date"`
	WithdrawalApprovalDate *wentity.Date   `json:"withdrawal_approval_date"`
	LastStatus             wentity.Status  `json:"last_status"`
	TotalAmount            decimal.Decimal `json:"total_amount"`
}

// AvailableRows lists the MIO's orders in withdrawal_approved status,
// most recently withdrawn first.
func (r *ReplacementRepository) AvailableRows(ctx context.Context, mioID string) ([]AvailableRow, error) {
	var rows []AvailableRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT wi.id, wi.invoice_no, wi.mio_id, wi.rm_id, wi.da_id, wi.depot_id, wi.route_id,
			wi.partner_id,
			CONCAT(COALESCE(c.name1, ''), ' ', COALESCE(c.name2, '')) AS partner_name,
			CONCAT(COALESCE(c.street, ''), ' ', COALESCE(c.street1, ''), ' ', COALESCE(c.street2, ''), ' ',
				COALESCE(c.upazilla, ''), ' ', COALESCE(c.district, '')) AS partner_address,
			c.mobile_no AS partner_mobile_no, c.contact_person,
			wi.request_date, wi.request_approval_date, wi.withdrawal_date,
			wi.withdrawal_approval_date, wi.last_status,
			COALESCE(SUM(wl.net_val), 0) AS total_amount
		FROM expr_withdrawal_info AS wi
		INNER JOIN rpl_customer AS c ON wi.partner_id = c.partner
		LEFT JOIN expr_withdrawal_list AS wl ON wi.id = wl.invoice_id
		WHERE wi.last_status = ? AND wi.mio_id = ?
		GROUP BY wi.id, c.name1, c.name2, c.street, c.street1, c.street2, c.upazilla,
			c.district, c.mobile_no, c.contact_person
		ORDER BY wi.withdrawal_date DESC, wi.id DESC
	`, wentity.StatusWithdrawalApproved, mioID).Scan(&rows).Error
	return rows, err
}

// OrderFilters narrows the replacement projections to one participant.
type OrderFilters struct {
	MioID        string
	RmID         string
	DepotID      string
	DeliveryDaID string
}

func (f OrderFilters) Empty() bool {
	return f.MioID == "" && f.RmID == "" && f.DepotID == "" && f.DeliveryDaID == ""
}

// OrderRow is one replacement line with its header, customer, material
// and route context.
type OrderRow struct {
	ID                uint64          `json:"-"`
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
	Matnr             string          `json:"matnr"`
	MaterialName      string          `json:"material_name"`
	Batch             *string         `json:"batch"`
	PackQty           int             `json:"pack_qty"`
	UnitQty           int             `json:"unit_qty"`
	NetVal            decimal.Decimal `json:"net_val"`
}

// OrderRows selects replacement lines for headers in the given status.
// unassignedOnly keeps only orders that still have no delivery DA, used
// when a depot picks up fresh approved orders.
func (r *ReplacementRepository) OrderRows(ctx context.Context, filters OrderFilters, status wentity.Status, unassignedOnly bool) ([]OrderRow, error) {
	q := r.db.WithContext(ctx).Table("expr_withdrawal_info AS wi").
		Select(`wi.id, wi.invoice_no, wi.mio_id, wi.rm_id, wi.depot_id, wi.route_id,
			depot.route_name AS route_name, wi.partner_id,
			CONCAT(COALESCE(c.name1, ''), ' ', COALESCE(c.name2, '')) AS partner_name,
			CONCAT(COALESCE(c.street, ''), ' ', COALESCE(c.street1, ''), ' ', COALESCE(c.street2, ''), ' ',
				COALESCE(c.upazilla, ''), ' ', COALESCE(c.district, '')) AS partner_address,
			c.mobile_no AS partner_mobile_no, c.contact_person,
			wi.order_date, wi.order_approval_date, wi.delivery_date, wi.delivery_da_id,
			wi.last_status,
			rpl.matnr AS matnr, m.material_name, rpl.batch AS batch,
			rpl.pack_qty AS pack_qty, rpl.unit_qty AS unit_qty, rpl.net_val AS net_val`).
		Joins("INNER JOIN expr_replacement_list AS rpl ON wi.id = rpl.invoice_id").
		Joins("INNER JOIN rpl_material AS m ON rpl.matnr = m.matnr").
		Joins("INNER JOIN rpl_customer AS c ON wi.partner_id = c.partner").
		Joins("INNER JOIN rdl_route_wise_depot AS depot ON wi.depot_id = depot.depot_code AND wi.route_id = depot.route_code").
		Where("wi.last_status = ?", status)

	if unassignedOnly {
		q = q.Where("wi.delivery_da_id IS NULL")
	}
	if filters.MioID != "" {
		q = q.Where("wi.mio_id = ?", filters.MioID)
	}
	if filters.RmID != "" {
		q = q.Where("wi.rm_id = ?", filters.RmID)
	}
	if filters.DepotID != "" {
		q = q.Where("wi.depot_id = ?", filters.DepotID)
	}
	if filters.DeliveryDaID != "" {
		q = q.Where("wi.delivery_da_id = ?", filters.DeliveryDaID)
	}

	var rows []OrderRow
	err := q.Order("wi.id DESC, rpl.id ASC").Scan(&rows).Error
	return rows, err
}
