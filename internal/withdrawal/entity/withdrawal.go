package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WithdrawalInfo is the order header: one row per withdrawal/replacement
// cycle. The invoice number is derived from the store-assigned id
// immediately after insert and never changes afterwards.
type WithdrawalInfo struct {
	ID          uint64      `json:"id" gorm:"primaryKey;autoIncrement"`
	InvoiceNo   string      `json:"invoice_no" gorm:"size:12;uniqueIndex;default:null"`
	InvoiceType InvoiceType `json:"invoice_type" gorm:"size:12;not null;default:EXP"`

	MioID        string  `json:"mio_id" gorm:"size:40;not null;index"`
	RmID         string  `json:"rm_id" gorm:"size:40;not null;index"`
	DaID         *string `json:"da_id" gorm:"size:40;index"`
	DeliveryDaID *string `json:"delivery_da_id" gorm:"size:40;index"`
	DepotID      *string `json:"depot_id" gorm:"size:40;index"`
	RouteID      *string `json:"route_id" gorm:"size:40"`
	PartnerID    string  `json:"partner_id" gorm:"size:40;not null"`

	// Progress flags: set true once, never reset.
	RequestApproval        bool `json:"request_approval" gorm:"not null;default:false"`
	WithdrawalConfirmation bool `json:"withdrawal_confirmation" gorm:"not null;default:false"`
	ReplacementOrder       bool `json:"replacement_order" gorm:"not null;default:false"`
	OrderApproval          bool `json:"order_approval" gorm:"not null;default:false"`
	OrderDelivery          bool `json:"order_delivery" gorm:"not null;default:false"`

	RequestDate            *Date `json:"request_date"`
	RequestApprovalDate    *Date `json:"request_approval_date"`
	WithdrawalDate         *Date `json:"withdrawal_date"`
	WithdrawalApprovalDate *Date `json:"withdrawal_approval_date"`
	OrderDate              *Date `json:"order_date"`
	OrderApprovalDate      *Date `json:"order_approval_date"`
	DeliveryDate           *Date `json:"delivery_date"`

	LastStatus Status `json:"last_status" gorm:"size:40;not null;default:request"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RequestList    []RequestLine    `json:"request_list,omitempty" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	WithdrawalList []WithdrawalLine `json:"withdrawal_list,omitempty" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

func (WithdrawalInfo) TableName() string {
	return "expr_withdrawal_info"
}

// AfterCreate assigns the invoice number from the fresh id, exactly
// once, inside the creating transaction. Format: "50" + zero-padded
// 8-digit id.
func (w *WithdrawalInfo) AfterCreate(tx *gorm.DB) error {
	if w.InvoiceNo != "" {
		return nil
	}
	w.InvoiceNo = fmt.Sprintf("50%08d", w.ID)
	return tx.Model(w).UpdateColumn("invoice_no", w.InvoiceNo).Error
}

// RequestLine is what the MIO asked to withdraw.
type RequestLine struct {
	ID         uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	InvoiceID  uint64          `json:"invoice_id" gorm:"not null;index"`
	Matnr      string          `json:"matnr" gorm:"size:40;not null"`
	Batch      string          `json:"batch" gorm:"size:40;not null"`
	PackQty    int             `json:"pack_qty" gorm:"not null;default:0"`
	StripQty   int             `json:"strip_qty" gorm:"not null;default:0"`
	UnitQty    int             `json:"unit_qty" gorm:"not null;default:0"`
	NetVal     decimal.Decimal `json:"net_val" gorm:"type:decimal(10,2);not null;default:0"`
	ExpireDate *Date           `json:"expire_date"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (RequestLine) TableName() string {
	return "expr_request_list"
}

// ReconcileKey is the identity of a request line for pre-approval
// edits: lines match on content, not on surrogate id.
func (l RequestLine) ReconcileKey() string {
	expire := ""
	if l.ExpireDate != nil {
		expire = l.ExpireDate.String()
	}
	return fmt.Sprintf("%s|%d|%d|%d|%s", expire, l.PackQty, l.StripQty, l.UnitQty, l.NetVal.StringFixed(2))
}

// WithdrawalLine is what the DA actually withdrew; quantities may
// differ from the request line for the same material.
type WithdrawalLine struct {
	ID        uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	InvoiceID uint64          `json:"invoice_id" gorm:"not null;index"`
	Matnr     string          `json:"matnr" gorm:"size:40;not null"`
	Batch     string          `json:"batch" gorm:"size:40;not null"`
	PackQty   int             `json:"pack_qty" gorm:"not null;default:0"`
	StripQty  int             `json:"strip_qty" gorm:"not null;default:0"`
	UnitQty   int             `json:"unit_qty" gorm:"not null;default:0"`
	NetVal    decimal.Decimal `json:"net_val" gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (WithdrawalLine) TableName() string {
	return "expr_withdrawal_list"
}
