package repository

import (
	"gorm.io/gorm"
)

// Repositories bundles the withdrawal-side stores.
type Repositories struct {
	Withdrawal *WithdrawalRepository
	Projection *ProjectionRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Withdrawal: NewWithdrawalRepository(db),
		Projection: NewProjectionRepository(db),
	}
}
