package repository

import (
	"context"

	"github.com/najmulislamnajim/expire-product-api/internal/withdrawal/entity"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProjectionRepository runs the denormalizing joins against the order
// tables and the upstream reference data. Rows scan into typed structs
// by column name; grouping back into nested objects happens in the
// service layer.
type ProjectionRepository struct {
	db *gorm.DB
}

func NewProjectionRepository(db *gorm.DB) *ProjectionRepository {
	return &ProjectionRepository{db: db}
}

// RequestHeaderRow is one header enriched with participant and customer
// reference data. DA columns come from an outer join and stay nil until
// a DA is assigned.
type RequestHeaderRow struct {
	ID                     uint64             `json:"id"`
	InvoiceNo              string             `json:"invoice_no"`
	InvoiceType            entity.InvoiceType `json:"invoice_type"`
	MioID                  string             `json:"mio_id"`
	RmID                   string             `json:"rm_id"`
	DaID                   *string            `json:"da_id"`
	DepotID                *string            `json:"depot_id"`
	RouteID                *string            `json:"route_id"`
	PartnerID              string             `json:"partner_id"`
	RequestApproval        bool               `json:"request_approval"`
	WithdrawalConfirmation bool               `json:"withdrawal_confirmation"`
	ReplacementOrder       bool               `json:"replacement_order"`
	OrderApproval          bool               `json:"order_approval"`
	OrderDelivery          bool               `json:"order_delivery"`
	RequestDate            *entity.Date       `json:"request_date"`
	RequestApprovalDate    *entity.Date       `json:"request_approval_date"`
	WithdrawalDate         *entity.Date       `json:"withdrawal_date"`
	WithdrawalApprovalDate *entity.Date       `json:"withdrawal_approval_date"`
	OrderDate              *entity.Date       `json:"order_date"`
	OrderApprovalDate      *entity.Date       `json:"order_approval_date"`
	DeliveryDate           *entity.Date       `json:"delivery_date"`
	LastStatus             entity.Status      `json:"last_status"`
	MioName                string             `json:"mio_name"`
	MioMobile              string             `json:"mio_mobile"`
	RmName                 string             `json:"rm_name"`
	RmMobile               string             `json:"rm_mobile"`
	PartnerName            string             `json:"partner_name"`
	CustomerName           string             `json:"customer_name"`
	CustomerNumber         string             `json:"customer_number"`
	CustomerAddress        string             `json:"customer_address"`
	DepotName              string             `json:"depot_name"`
	RouteName              string             `json:"route_name"`
	DaName                 *string            `json:"da_name"`
	DaMobile               *string            `json:"da_mobile"`
}

// RequestHeaders selects headers by participant filters and an optional
// exact status, enriched with reference data. Inner joins on the MIO,
// RM, customer and depot tables mean a header with broken reference
// data is legitimately absent.
func (r *ProjectionRepository) RequestHeaders(ctx context.Context, filters IDFilters, status entity.Status) ([]RequestHeaderRow, error) {
	q := r.db.WithContext(ctx).Table("expr_withdrawal_info AS wi").
		Select(`wi.id, wi.invoice_no, wi.invoice_type, wi.mio_id, wi.rm_id, wi.da_id, wi.depot_id,
			wi.route_id, wi.partner_id, wi.request_approval, wi.withdrawal_confirmation,
			wi.replacement_order, wi.order_approval, wi.order_delivery, wi.request_date,
			wi.request_approval_date, wi.withdrawal_date, wi.withdrawal_approval_date,
			wi.order_date, wi.order_approval_date, wi.delivery_date, wi.last_status,
			mio.name AS mio_name, mio.mobile_number AS mio_mobile,
			rm.name AS rm_name, rm.mobile_number AS rm_mobile,
			CONCAT(COALESCE(c.name1, ''), ' ', COALESCE(c.name2, '')) AS partner_name,
			c.contact_person AS customer_name,
			c.mobile_no AS customer_number,
			CONCAT(COALESCE(c.street, ''), ' ', COALESCE(c.street1, ''), ' ', COALESCE(c.street2, ''), ' ',
				COALESCE(c.street3, ''), ' ', COALESCE(c.post_code, ''), ' ', COALESCE(c.district, '')) AS customer_address,
			depot.depot_name AS depot_name, depot.route_name AS route_name,
			da.full_name AS da_name, da.mobile_number AS da_mobile`).
		Joins("INNER JOIN rpl_user_list AS mio ON wi.mio_id = mio.work_area_t").
		Joins("INNER JOIN rpl_user_list AS rm ON wi.rm_id = rm.work_area_t").
		Joins("INNER JOIN rpl_customer AS c ON wi.partner_id = c.partner").
		Joins("INNER JOIN rdl_route_wise_depot AS depot ON wi.depot_id = depot.depot_code AND wi.route_id = depot.route_code").
		Joins("LEFT JOIN rdl_users_list AS da ON wi.da_id = da.sap_id")

	if filters.MioID != "" {
		q = q.Where("wi.mio_id = ?", filters.MioID)
	}
	if filters.RmID != "" {
		q = q.Where("wi.rm_id = ?", filters.RmID)
	}
	if filters.DepotID != "" {
		q = q.Where("wi.depot_id = ?", filters.DepotID)
	}
	if filters.DaID != "" {
		q = q.Where("wi.da_id = ?", filters.DaID)
	}
	if status != "" {
		q = q.Where("wi.last_status = ?", status)
	}

	var rows []RequestHeaderRow
	err := q.Order("wi.id DESC").Scan(&rows).Error
	return rows, err
}

// RequestMaterialRow is one request line joined to the material master.
type RequestMaterialRow struct {
	ListID          uint64          `json:"list_id"`
	InvoiceID       uint64          `json:"invoice_id"`
	Matnr           string          `json:"matnr"`
	Batch           string          `json:"batch"`
	PackQty         int             `json:"pack_qty"`
	StripQty        int             `json:"strip_qty"`
	UnitQty         int             `json:"unit_qty"`
	NetVal          decimal.Decimal `json:"net_val"`
	ExpireDate      *entity.Date    `json:"expire_date"`
	MaterialName    string          `json:"material_name"`
	ProducerCompany string          `json:"producer_company"`
	UnitTP          decimal.Decimal `json:"unit_tp"`
	UnitVAT         decimal.Decimal `json:"unit_vat"`
	PackSize        string          `json:"pack_size"`
}

// RequestMaterials fetches the request lines for a set of headers,
// enriched with material master data, in insertion order.
func (r *ProjectionRepository) RequestMaterials(ctx context.Context, invoiceIDs []uint64) ([]RequestMaterialRow, error) {
	if len(invoiceIDs) == 0 {
		return nil, nil
	}
	var rows []RequestMaterialRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT rl.id AS list_id, rl.invoice_id, rl.matnr, rl.batch, rl.pack_qty, rl.strip_qty,
			rl.unit_qty, rl.net_val, rl.expire_date,
			m.material_name, m.producer_company, m.unit_tp, m.unit_vat, m.pack_size
		FROM expr_request_list AS rl
		INNER JOIN rpl_material AS m ON rl.matnr = m.matnr
		WHERE rl.invoice_id IN ?
		ORDER BY rl.id ASC
	`, invoiceIDs).Scan(&rows).Error
	return rows, err
}

// FinalRow pairs a requested line with what was actually withdrawn for
// the same material. Withdrawal columns come from an outer join and are
// nil until the DA saves quantities.
type FinalRow struct {
	ID                     uint64           `json:"-"`
	InvoiceNo              string           `json:"invoice_no"`
	MioID                  string           `json:"mio_id"`
	RmID                   string           `json:"rm_id"`
	DaID                   *string          `json:"da_id"`
	DaName                 string           `json:"da_name"`
	DaMobileNo             string           `json:"da_mobile_no"`
	DepotID                *string          `json:"depot_id"`
	RouteID                *string          `json:"route_id"`
	PartnerID              string           `json:"partner_id"`
	PartnerName            string           `json:"partner_name"`
	PartnerAddress         string           `json:"partner_address"`
	PartnerMobileNo        string           `json:"partner_mobile_no"`
	ContactPerson          string           `json:"contact_person"`
	RequestApproval        bool             `json:"request_approval"`
	WithdrawalConfirmation bool             `json:"withdrawal_confirmation"`
	ReplacementOrder       bool             `json:"replacement_order"`
	OrderApproval          bool             `json:"order_approval"`
	OrderDelivery          bool             `json:"order_delivery"`
	RequestDate            *entity.Date     `json:"request_date"`
	RequestApprovalDate    *entity.Date     `json:"request_approval_date"`
	WithdrawalDate         *entity.Date     `json:"withdrawal_date"`
	WithdrawalApprovalDate *entity.Date     `json:"withdrawal_approval_date"`
	OrderDate              *entity.Date     `json:"order_date"`
	OrderApprovalDate      *entity.Date     `json:"order_approval_date"`
	DeliveryDate           *entity.Date     `json:"delivery_date"`
	LastStatus             entity.Status    `json:"last_status"`
	Matnr                  string           `json:"matnr"`
	MaterialName           string           `json:"material_name"`
	Batch                  string           `json:"batch"`
	RequestPackQty         int              `json:"request_pack_qty"`
	RequestUnitQty         int              `json:"request_unit_qty"`
	RequestNetVal          decimal.Decimal  `json:"request_net_val"`
	ExpireDate             *entity.Date     `json:"expire_date"`
	WithdrawalPackQty      *int             `json:"withdrawal_pack_qty"`
	WithdrawalUnitQty      *int             `json:"withdrawal_unit_qty"`
	WithdrawalNetVal       *decimal.Decimal `json:"withdrawal_net_val"`
}

// FinalRows feeds the request-vs-withdrawal comparison view. Request
// lines are inner-joined (a header always has at least one), withdrawal
// lines outer-joined on the material.
func (r *ProjectionRepository) FinalRows(ctx context.Context, filters IDFilters, status entity.Status) ([]FinalRow, error) {
	q := r.db.WithContext(ctx).Table("expr_withdrawal_info AS wi").
		Select(`wi.id, wi.invoice_no, wi.mio_id, wi.rm_id, wi.da_id,
			ul.full_name AS da_name, ul.mobile_number AS da_mobile_no,
			wi.depot_id, wi.route_id, wi.partner_id,
			CONCAT(COALESCE(c.name1, ''), COALESCE(c.name2, '')) AS partner_name,
			CONCAT(COALESCE(c.street, ''), COALESCE(c.street1, ''), COALESCE(c.street2, ''),
				COALESCE(c.upazilla, ''), COALESCE(c.district, '')) AS partner_address,
			c.mobile_no AS partner_mobile_no, c.contact_person,
			wi.request_approval, wi.withdrawal_confirmation, wi.replacement_order,
			wi.order_approval, wi.order_delivery,
			wi.request_date, wi.request_approval_date, wi.withdrawal_date,
			wi.withdrawal_approval_date, wi.order_date, wi.order_approval_date,
			wi.delivery_date, wi.last_status,
			rl.matnr AS matnr, m.material_name, rl.batch AS batch,
			rl.pack_qty AS request_pack_qty, rl.unit_qty AS request_unit_qty,
			rl.net_val AS request_net_val, rl.expire_date AS expire_date,
			wl.pack_qty AS withdrawal_pack_qty, wl.unit_qty AS withdrawal_unit_qty,
			wl.net_val AS withdrawal_net_val`).
		Joins("INNER JOIN expr_request_list AS rl ON wi.id = rl.invoice_id").
		Joins("LEFT JOIN expr_withdrawal_list AS wl ON wi.id = wl.invoice_id AND rl.matnr = wl.matnr").
		Joins("INNER JOIN rpl_material AS m ON rl.matnr = m.matnr").
		Joins("INNER JOIN rpl_customer AS c ON wi.partner_id = c.partner").
		Joins("INNER JOIN rdl_users_list AS ul ON wi.da_id = ul.sap_id")

	if filters.MioID != "" {
		q = q.Where("wi.mio_id = ?", filters.MioID)
	}
	if filters.RmID != "" {
		q = q.Where("wi.rm_id = ?", filters.RmID)
	}
	if filters.DepotID != "" {
		q = q.Where("wi.depot_id = ?", filters.DepotID)
	}
	if filters.DaID != "" {
		q = q.Where("wi.da_id = ?", filters.DaID)
	}
	if status != "" {
		q = q.Where("wi.last_status = ?", status)
	}

	var rows []FinalRow
	err := q.Order("wi.id DESC, rl.id ASC").Scan(&rows).Error
	return rows, err
}

// Materials returns the full material master. The field apps pull it
// once per session to compose request lines offline.
func (r *ProjectionRepository) Materials(ctx context.Context) ([]entity.Material, error) {
	var materials []entity.Material
	err := r.db.WithContext(ctx).Order("matnr ASC").Find(&materials).Error
	return materials, err
}
