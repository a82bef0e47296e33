package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReplacementLine is replacement stock promised back to the customer,
// created when the MIO raises the replacement order against a
// withdrawal-approved header. Batch is unknown until the depot picks
// stock, so it stays nullable.
type ReplacementLine struct {
	ID        uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	InvoiceID uint64          `json:"invoice_id" gorm:"not null;index"`
	Matnr     string          `json:"matnr" gorm:"size:40;not null"`
	Batch     *string         `json:"batch" gorm:"size:40"`
	PackQty   int             `json:"pack_qty" gorm:"not null;default:0"`
	UnitQty   int             `json:"unit_qty" gorm:"not null;default:0"`
	NetVal    decimal.Decimal `json:"net_val" gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (ReplacementLine) TableName() string {
	return "expr_replacement_list"
}
