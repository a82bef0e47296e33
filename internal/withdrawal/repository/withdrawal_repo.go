package repository

import (
	"context"
	"errors"

	"github.com/najmulislamnajim/expire-product-api/internal/shared/apperr"
	"github.com/najmulislamnajim/expire-product-api/internal/withdrawal/entity"
	"gorm.io/gorm"
)

// WithdrawalRepository owns the order header and its request/withdrawal
// lines. Every composite mutation runs in a single transaction so a
// header update and its dependent line writes are atomic.
type WithdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

// Create inserts the header with its request lines; the invoice number
// is derived inside the same transaction once the id is known.
func (r *WithdrawalRepository) Create(ctx context.Context, info *entity.WithdrawalInfo) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(info).Error
	})
}

// GetByInvoiceNo fetches a bare header.
func (r *WithdrawalRepository) GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.WithdrawalInfo, error) {
	var info entity.WithdrawalInfo
	err := r.db.WithContext(ctx).Where("invoice_no = ?", invoiceNo).First(&info).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("invoice %s", invoiceNo)
		}
		return nil, err
	}
	return &info, nil
}

// GetWithLines fetches a header with both line sets, lines in insertion
// order.
func (r *WithdrawalRepository) GetWithLines(ctx context.Context, invoiceNo string) (*entity.WithdrawalInfo, error) {
	var info entity.WithdrawalInfo
	err := r.db.WithContext(ctx).
		Preload("RequestList", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("WithdrawalList", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("invoice_no = ?", invoiceNo).
		First(&info).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("invoice %s", invoiceNo)
		}
		return nil, err
	}
	return &info, nil
}

// Update persists header field changes and stamps updated_at.
func (r *WithdrawalRepository) Update(ctx context.Context, info *entity.WithdrawalInfo) error {
	return r.db.WithContext(ctx).Save(info).Error
}

// SaveWithdrawalLines stores the DA's withdrawal line set and the
// header's status/date change as one unit. A repeated save replaces the
// previous line set instead of appending to it: the invoice must carry
// exactly one withdrawal line per material, or the outer join in the
// final-list comparison would fan out into duplicate rows.
func (r *WithdrawalRepository) SaveWithdrawalLines(ctx context.Context, info *entity.WithdrawalInfo, lines []entity.WithdrawalLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", info.ID).
			Delete(&entity.WithdrawalLine{}).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].InvoiceID = info.ID
		}
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
		}
		return tx.Save(info).Error
	})
}

// ReconcileRequestLines applies a pre-approval edit as a line-set diff:
// inserts, deletes and the header save commit together.
func (r *WithdrawalRepository) ReconcileRequestLines(ctx context.Context, info *entity.WithdrawalInfo, insert []entity.RequestLine, deleteIDs []uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(deleteIDs) > 0 {
			if err := tx.Where("invoice_id = ? AND id IN ?", info.ID, deleteIDs).
				Delete(&entity.RequestLine{}).Error; err != nil {
				return err
			}
		}
		for i := range insert {
			insert[i].InvoiceID = info.ID
		}
		if len(insert) > 0 {
			if err := tx.Create(&insert).Error; err != nil {
				return err
			}
		}
		return tx.Save(info).Error
	})
}

// RequestLines returns the current request line set in insertion order.
func (r *WithdrawalRepository) RequestLines(ctx context.Context, invoiceID uint64) ([]entity.RequestLine, error) {
	var lines []entity.RequestLine
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("id ASC").
		Find(&lines).Error
	return lines, err
}

// LookupDepotRoute resolves the depot and route serving a partner via
// its transport zone. A partner without a depot mapping is a caller
// input error, not a store failure.
func (r *WithdrawalRepository) LookupDepotRoute(ctx context.Context, partnerID string) (depotCode, routeCode string, err error) {
	var row struct {
		DepotCode string
		RouteCode string
	}
	result := r.db.WithContext(ctx).Raw(`
		SELECT rd.depot_code, rd.route_code
		FROM rpl_customer AS c
		INNER JOIN rdl_route_wise_depot AS rd ON c.trans_p_zone = CONCAT('0000', rd.route_code)
		WHERE c.partner = ?
		LIMIT 1
	`, partnerID).Scan(&row)
	if result.Error != nil {
		return "", "", result.Error
	}
	if result.RowsAffected == 0 {
		return "", "", apperr.Validationf("no depot code found for partner %s", partnerID)
	}
	return row.DepotCode, row.RouteCode, nil
}

// FlagFilter selects headers by the progress booleans rather than
// last_status; the flat list endpoint keeps this older filter contract.
type FlagFilter string

const (
	FlagAll            FlagFilter = "all"
	FlagWithdrawalList FlagFilter = "withdrawal_list"
	FlagWithdrawalDone FlagFilter = "withdrawal_approved"
	FlagOrderPending   FlagFilter = "order_pending"
	FlagOrderApproved  FlagFilter = "order_approved"
	FlagOrderDelivered FlagFilter = "order_delivered"
)

// IDFilters narrows header queries by participant ids; zero values are
// ignored.
type IDFilters struct {
	MioID        string
	RmID         string
	DepotID      string
	DaID         string
	DeliveryDaID string
}

func (f IDFilters) Empty() bool {
	return f.MioID == "" && f.RmID == "" && f.DepotID == "" && f.DaID == "" && f.DeliveryDaID == ""
}

func (f IDFilters) apply(q *gorm.DB) *gorm.DB {
	if f.MioID != "" {
		q = q.Where("mio_id = ?", f.MioID)
	}
	if f.RmID != "" {
		q = q.Where("rm_id = ?", f.RmID)
	}
	if f.DepotID != "" {
		q = q.Where("depot_id = ?", f.DepotID)
	}
	if f.DaID != "" {
		q = q.Where("da_id = ?", f.DaID)
	}
	if f.DeliveryDaID != "" {
		q = q.Where("delivery_da_id = ?", f.DeliveryDaID)
	}
	return q
}

// FindByFlags returns bare headers matching the id filters and flag
// stage, newest first.
func (r *WithdrawalRepository) FindByFlags(ctx context.Context, filters IDFilters, flag FlagFilter) ([]entity.WithdrawalInfo, error) {
	q := filters.apply(r.db.WithContext(ctx).Model(&entity.WithdrawalInfo{}))

	switch flag {
	case FlagAll:
	case FlagWithdrawalList:
		q = q.Where("request_approval = ? AND withdrawal_confirmation = ?", true, false)
	case FlagWithdrawalDone:
		q = q.Where("withdrawal_confirmation = ?", true)
	case FlagOrderPending:
		q = q.Where("withdrawal_confirmation = ? AND order_approval = ?", true, false)
	case FlagOrderApproved:
		q = q.Where("order_approval = ?", true)
	case FlagOrderDelivered:
		q = q.Where("order_delivery = ?", true)
	default:
		return nil, apperr.Validationf("invalid status %q", flag)
	}

	var items []entity.WithdrawalInfo
	err := q.Order("id DESC").Find(&items).Error
	return items, err
}
