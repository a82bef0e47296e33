package service

import (
	"context"
	"fmt"

	"github.com/najmulislamnajim/expire-product-api/internal/shared/apperr"
	"github.com/najmulislamnajim/expire-product-api/internal/withdrawal/entity"
	"github.com/najmulislamnajim/expire-product-api/internal/withdrawal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WithdrawalService drives the order lifecycle from the MIO's initial
// request through the DA's confirmed withdrawal. Every mutation loads
// the header, consults the transition table, and persists header and
// lines together.
type WithdrawalService struct {
	repo   *repository.WithdrawalRepository
	proj   *repository.ProjectionRepository
	prices *PriceCache
	logger *zap.Logger
}

func NewWithdrawalService(repos *repository.Repositories, rdb *redis.Client, logger *zap.Logger) *WithdrawalService {
	return &WithdrawalService{
		repo:   repos.Withdrawal,
		proj:   repos.Projection,
		prices: NewPriceCache(rdb),
		logger: logger,
	}
}

// RequestLineInput is one material the MIO wants withdrawn.
type RequestLineInput struct {
	Matnr      string          `json:"matnr" binding:"required"`
	Batch      string          `json:"batch"`
	PackQty    int             `json:"pack_qty"`
	StripQty   int             `json:"strip_qty"`
	UnitQty    int             `json:"unit_qty"`
	NetVal     decimal.Decimal `json:"net_val"`
	ExpireDate *entity.Date    `json:"expire_date"`
}

func (in RequestLineInput) toEntity() entity.RequestLine {
	return entity.RequestLine{
		Matnr:      in.Matnr,
		Batch:      in.Batch,
		PackQty:    in.PackQty,
		StripQty:   in.StripQty,
		UnitQty:    in.UnitQty,
		NetVal:     in.NetVal,
		ExpireDate: in.ExpireDate,
	}
}

// CreateRequestInput opens a new withdrawal order.
type CreateRequestInput struct {
	MioID       string             `json:"mio_id" binding:"required"`
	RmID        string             `json:"rm_id" binding:"required"`
	PartnerID   string             `json:"partner_id" binding:"required"`
	InvoiceType string             `json:"invoice_type" binding:"required"`
	RequestList []RequestLineInput `json:"request_list" binding:"required"`
}

// CreateRequest opens an order in request status: resolves the serving
// depot and route from the customer's transport zone, stamps the
// request date, and stores header plus request lines atomically. The
// invoice number comes back assigned.
func (s *WithdrawalService) CreateRequest(ctx context.Context, in CreateRequestInput) (*entity.WithdrawalInfo, error) {
	if len(in.RequestList) == 0 {
		return nil, apperr.Validationf("request_list must not be empty")
	}
	invoiceType, err := entity.ParseInvoiceType(in.InvoiceType)
	if err != nil {
		return nil, err
	}

	depotCode, routeCode, err := s.repo.LookupDepotRoute(ctx, in.PartnerID)
	if err != nil {
		return nil, err
	}

	today := entity.Today()
	info := &entity.WithdrawalInfo{
		InvoiceType: invoiceType,
		MioID:       in.MioID,
		RmID:        in.RmID,
		PartnerID:   in.PartnerID,
		DepotID:     &depotCode,
		RouteID:     &routeCode,
		RequestDate: &today,
		LastStatus:  entity.StatusRequest,
	}
	for _, line := range in.RequestList {
		info.RequestList = append(info.RequestList, line.toEntity())
	}

	if err := s.repo.Create(ctx, info); err != nil {
		return nil, fmt.Errorf("create withdrawal request: %w", err)
	}
	s.logger.Info("withdrawal request created",
		zap.String("invoice_no", info.InvoiceNo),
		zap.String("mio_id", info.MioID),
		zap.Int("lines", len(info.RequestList)))
	return info, nil
}

// ApproveRequest moves an order to request_approved and stamps the
// approval date. Approving an already approved order re-stamps the
// date.
func (s *WithdrawalService) ApproveRequest(ctx context.Context, invoiceNo string) (*entity.WithdrawalInfo, error) {
	return s.advance(ctx, invoiceNo, entity.OpApproveRequest, func(info *entity.WithdrawalInfo) {
		today := entity.Today()
		info.RequestApproval = true
		info.RequestApprovalDate = &today
	})
}

// UpdateRequestInput edits a still-unapproved order. Header fields are
// partial: only the ones set are applied. The request line set is
// reconciled against the stored one.
type UpdateRequestInput struct {
	InvoiceNo   string             `json:"invoice_no" binding:"required"`
	InvoiceType string             `json:"invoice_type"`
	RequestList []RequestLineInput `json:"request_list" binding:"required"`
}

// UpdateRequest replaces the request line set while the order is still
// unapproved, and applies any header fields set on the input. Incoming
// lines are matched against stored ones by content; matched lines keep
// their ids, the rest are inserted or deleted. Returns the reconciled
// line set.
func (s *WithdrawalService) UpdateRequest(ctx context.Context, in UpdateRequestInput) ([]entity.RequestLine, error) {
	if len(in.RequestList) == 0 {
		return nil, apperr.Validationf("request_list must not be empty")
	}
	info, err := s.repo.GetByInvoiceNo(ctx, in.InvoiceNo)
	if err != nil {
		return nil, err
	}
	if _, err := entity.Transition(entity.OpUpdateRequest, info.LastStatus); err != nil {
		return nil, err
	}
	if in.InvoiceType != "" {
		invoiceType, err := entity.ParseInvoiceType(in.InvoiceType)
		if err != nil {
			return nil, err
		}
		info.InvoiceType = invoiceType
	}

	existing, err := s.repo.RequestLines(ctx, info.ID)
	if err != nil {
		return nil, fmt.Errorf("load request lines: %w", err)
	}
	desired := make([]entity.RequestLine, 0, len(in.RequestList))
	for _, line := range in.RequestList {
		desired = append(desired, line.toEntity())
	}
	deleteIDs, insert := diffRequestLines(existing, desired)

	if err := s.repo.ReconcileRequestLines(ctx, info, insert, deleteIDs); err != nil {
		return nil, fmt.Errorf("reconcile request lines: %w", err)
	}
	s.logger.Info("withdrawal request updated",
		zap.String("invoice_no", in.InvoiceNo),
		zap.Int("inserted", len(insert)),
		zap.Int("deleted", len(deleteIDs)))
	return s.repo.RequestLines(ctx, info.ID)
}

// AssignDA hands the order to a delivery associate for physical
// withdrawal and moves it to withdrawal_pending.
func (s *WithdrawalService) AssignDA(ctx context.Context, invoiceNo, daID string) (*entity.WithdrawalInfo, error) {
	if daID == "" {
		return nil, apperr.Validationf("da_id is required")
	}
	return s.advance(ctx, invoiceNo, entity.OpAssignWithdrawalDA, func(info *entity.WithdrawalInfo) {
		info.DaID = &daID
	})
}

// WithdrawalLineInput is one material the DA actually pulled from the
// customer.
type WithdrawalLineInput struct {
	Matnr    string          `json:"matnr" binding:"required"`
	Batch    string          `json:"batch"`
	PackQty  int             `json:"pack_qty"`
	StripQty int             `json:"strip_qty"`
	UnitQty  int             `json:"unit_qty"`
	NetVal   decimal.Decimal `json:"net_val"`
}

// SaveWithdrawal records what the DA withdrew and moves the order to
// withdrawal_approval. Saving again replaces the previous line set and
// re-stamps the withdrawal date.
func (s *WithdrawalService) SaveWithdrawal(ctx context.Context, invoiceNo string, lines []WithdrawalLineInput) (*entity.WithdrawalInfo, error) {
	if len(lines) == 0 {
		return nil, apperr.Validationf("withdrawal_list must not be empty")
	}
	info, err := s.repo.GetByInvoiceNo(ctx, invoiceNo)
	if err != nil {
		return nil, err
	}
	next, err := entity.Transition(entity.OpSaveWithdrawal, info.LastStatus)
	if err != nil {
		return nil, err
	}

	today := entity.Today()
	info.LastStatus = next
	info.WithdrawalDate = &today

	withdrawn := make([]entity.WithdrawalLine, 0, len(lines))
	for _, line := range lines {
		withdrawn = append(withdrawn, entity.WithdrawalLine{
			Matnr:    line.Matnr,
			Batch:    line.Batch,
			PackQty:  line.PackQty,
			StripQty: line.StripQty,
			UnitQty:  line.UnitQty,
			NetVal:   line.NetVal,
		})
	}
	if err := s.repo.SaveWithdrawalLines(ctx, info, withdrawn); err != nil {
		return nil, fmt.Errorf("save withdrawal lines: %w", err)
	}
	s.logger.Info("withdrawal saved",
		zap.String("invoice_no", invoiceNo),
		zap.Int("lines", len(withdrawn)))
	return info, nil
}

// ConfirmWithdrawal is the RM's sign-off on the withdrawn quantities;
// the order moves to withdrawal_approved and becomes eligible for a
// replacement order.
func (s *WithdrawalService) ConfirmWithdrawal(ctx context.Context, invoiceNo string) (*entity.WithdrawalInfo, error) {
	return s.advance(ctx, invoiceNo, entity.OpConfirmWithdrawal, func(info *entity.WithdrawalInfo) {
		today := entity.Today()
		info.WithdrawalConfirmation = true
		info.WithdrawalApprovalDate = &today
	})
}

// advance loads the header, applies the transition for op, lets mutate
// stamp flags and dates, and persists.
func (s *WithdrawalService) advance(ctx context.Context, invoiceNo string, op entity.Operation, mutate func(*entity.WithdrawalInfo)) (*entity.WithdrawalInfo, error) {
	info, err := s.repo.GetByInvoiceNo(ctx, invoiceNo)
	if err != nil {
		return nil, err
	}
	next, err := entity.Transition(op, info.LastStatus)
	if err != nil {
		return nil, err
	}
	info.LastStatus = next
	mutate(info)
	if err := s.repo.Update(ctx, info); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.logger.Info("order status advanced",
		zap.String("invoice_no", invoiceNo),
		zap.String("status", string(next)))
	return info, nil
}

// diffRequestLines matches desired lines against existing ones by
// content key. Each existing line can satisfy one desired line; the
// earliest-inserted match wins. Leftover existing lines are deleted,
// unmatched desired lines inserted.
func diffRequestLines(existing, desired []entity.RequestLine) (deleteIDs []uint64, insert []entity.RequestLine) {
	unclaimed := make(map[string][]uint64)
	for _, line := range existing {
		key := line.ReconcileKey()
		unclaimed[key] = append(unclaimed[key], line.ID)
	}
	for _, line := range desired {
		key := line.ReconcileKey()
		if ids := unclaimed[key]; len(ids) > 0 {
			unclaimed[key] = ids[1:]
			continue
		}
		insert = append(insert, line)
	}
	// Preserve store order for deterministic deletes.
	for _, line := range existing {
		ids := unclaimed[line.ReconcileKey()]
		for _, id := range ids {
			if id == line.ID {
				deleteIDs = append(deleteIDs, id)
				break
			}
		}
	}
	return deleteIDs, insert
}
