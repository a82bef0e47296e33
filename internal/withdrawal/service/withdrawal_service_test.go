package service

import (
	"context"
	"strings"
	"testing"

	"github.com/najmulislamnajim/expire-product-api/internal/shared/apperr"
	"github.com/najmulislamnajim/expire-product-api/internal/testutil"
	"github.com/najmulislamnajim/expire-product-api/internal/withdrawal/entity"
	"github.com/najmulislamnajim/expire-product-api/internal/withdrawal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// setupService seeds the reference data every lifecycle test needs: a
// customer on route R200 served by depot D100, an MIO, an RM, a DA and
// two materials.
func setupService(t *testing.T) (*WithdrawalService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	testutil.SeedRouteDepot(t, db, "D100", "R200")
	testutil.SeedCustomer(t, db, "P-1001", "R200")
	testutil.SeedFieldUser(t, db, "MIO-001", "Test MIO")
	testutil.SeedFieldUser(t, db, "RM-001", "Test RM")
	testutil.SeedDeliveryAgent(t, db, "DA-001", "Test DA")
	testutil.SeedMaterial(t, db, "M-01", "Napa 500mg", "10x10's", 80, 10)
	testutil.SeedMaterial(t, db, "M-02", "Seclo 20mg", "100's", 500, 50)

	repos := repository.NewRepositories(db)
	return NewWithdrawalService(repos, nil, zap.NewNop()), db
}

func createRequest(t *testing.T, svc *WithdrawalService) *entity.WithdrawalInfo {
	t.Helper()
	info, err := svc.CreateRequest(context.Background(), CreateRequestInput{
		MioID:       "MIO-001",
		RmID:        "RM-001",
		PartnerID:   "P-1001",
		InvoiceType: "Expired",
		RequestList: []RequestLineInput{
			{Matnr: "M-01", Batch: "B-01", PackQty: 5, UnitQty: 50, NetVal: decimal.NewFromInt(500)},
			{Matnr: "M-02", Batch: "B-02", PackQty: 2, UnitQty: 20, NetVal: decimal.NewFromInt(240)},
		},
	})
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}
	return info
}

func TestCreateRequest(t *testing.T) {
	svc, _ := setupService(t)
	info := createRequest(t, svc)

	if len(info.InvoiceNo) != 10 || !strings.HasPrefix(info.InvoiceNo, "50") {
		t.Errorf("invoice_no = %q, want 10 chars starting with 50", info.InvoiceNo)
	}
	if info.LastStatus != entity.StatusRequest {
		t.Errorf("last_status = %q, want %q", info.LastStatus, entity.StatusRequest)
	}
	if info.DepotID == nil || *info.DepotID != "D100" {
		t.Errorf("depot_id = %v, want D100", info.DepotID)
	}
	if info.RouteID == nil || *info.RouteID != "R200" {
		t.Errorf("route_id = %v, want R200", info.RouteID)
	}
	if info.InvoiceType != entity.InvoiceTypeExpired {
		t.Errorf("invoice_type = %q, want %q", info.InvoiceType, entity.InvoiceTypeExpired)
	}
	if info.RequestDate == nil {
		t.Error("request_date not stamped")
	}
}

func TestCreateRequestInvoiceTypeRequired(t *testing.T) {
	svc, _ := setupService(t)
	lines := []RequestLineInput{
		{Matnr: "M-01", PackQty: 1, NetVal: decimal.NewFromInt(10)},
	}

	_, err := svc.CreateRequest(context.Background(), CreateRequestInput{
		MioID: "MIO-001", RmID: "RM-001", PartnerID: "P-1001",
		RequestList: lines,
	})
	if !apperr.IsValidation(err) {
		t.Errorf("missing invoice_type: err = %v, want validation", err)
	}

	_, err = svc.CreateRequest(context.Background(), CreateRequestInput{
		MioID: "MIO-001", RmID: "RM-001", PartnerID: "P-1001",
		InvoiceType: "Damaged",
		RequestList: lines,
	})
	if !apperr.IsValidation(err) {
		t.Errorf("invalid invoice_type: err = %v, want validation", err)
	}
}

func TestCreateRequestUnknownPartner(t *testing.T) {
	svc, _ := setupService(t)
	_, err := svc.CreateRequest(context.Background(), CreateRequestInput{
		MioID:       "MIO-001",
		RmID:        "RM-001",
		PartnerID:   "P-9999",
		InvoiceType: "Expired",
		RequestList: []RequestLineInput{
			{Matnr: "M-01", PackQty: 1, NetVal: decimal.NewFromInt(10)},
		},
	})
	if !apperr.IsValidation(err) {
		t.Errorf("err = %v, want validation error for partner without depot mapping", err)
	}
}

func TestCreateRequestEmptyLines(t *testing.T) {
	svc, _ := setupService(t)
	_, err := svc.CreateRequest(context.Background(), CreateRequestInput{
		MioID: "MIO-001", RmID: "RM-001", PartnerID: "P-1001",
	})
	if !apperr.IsValidation(err) {
		t.Errorf("err = %v, want validation error for empty request_list", err)
	}
}

func TestLifecycleHappyPath(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	info := createRequest(t, svc)

	approved, err := svc.ApproveRequest(ctx, info.InvoiceNo)
	if err != nil {
		t.Fatalf("ApproveRequest failed: %v", err)
	}
	if approved.LastStatus != entity.StatusRequestApproved || !approved.RequestApproval {
		t.Errorf("after approve: status=%q approval=%v", approved.LastStatus, approved.RequestApproval)
	}
	if approved.RequestApprovalDate == nil {
		t.Error("request_approval_date not stamped")
	}

	assigned, err := svc.AssignDA(ctx, info.InvoiceNo, "DA-001")
	if err != nil {
		t.Fatalf("AssignDA failed: %v", err)
	}
	if assigned.LastStatus != entity.StatusWithdrawalPending {
		t.Errorf("after assign: status=%q", assigned.LastStatus)
	}
	if assigned.DaID == nil || *assigned.DaID != "DA-001" {
		t.Errorf("da_id = %v, want DA-001", assigned.DaID)
	}

	saved, err := svc.SaveWithdrawal(ctx, info.InvoiceNo, []WithdrawalLineInput{
		{Matnr: "M-01", Batch: "B-01", PackQty: 4, UnitQty: 40, NetVal: decimal.NewFromInt(400)},
	})
	if err != nil {
		t.Fatalf("SaveWithdrawal failed: %v", err)
	}
	if saved.LastStatus != entity.StatusWithdrawalApproval {
		t.Errorf("after save: status=%q", saved.LastStatus)
	}
	if saved.WithdrawalDate == nil {
		t.Error("withdrawal_date not stamped")
	}

	confirmed, err := svc.ConfirmWithdrawal(ctx, info.InvoiceNo)
	if err != nil {
		t.Fatalf("ConfirmWithdrawal failed: %v", err)
	}
	if confirmed.LastStatus != entity.StatusWithdrawalApproved || !confirmed.WithdrawalConfirmation {
		t.Errorf("after confirm: status=%q confirmation=%v", confirmed.LastStatus, confirmed.WithdrawalConfirmation)
	}
}

func TestApproveRequestIsIdempotent(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	info := createRequest(t, svc)

	if _, err := svc.ApproveRequest(ctx, info.InvoiceNo); err != nil {
		t.Fatalf("first approve failed: %v", err)
	}
	again, err := svc.ApproveRequest(ctx, info.InvoiceNo)
	if err != nil {
		t.Fatalf("second approve failed: %v", err)
	}
	if again.LastStatus != entity.StatusRequestApproved {
		t.Errorf("status = %q after repeated approve", again.LastStatus)
	}
}

func TestLifecycleRejectsSkippedStates(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	info := createRequest(t, svc)

	// Fresh request: confirming a withdrawal that never happened must
	// fail, as must saving withdrawal lines before a DA is assigned.
	if _, err := svc.ConfirmWithdrawal(ctx, info.InvoiceNo); !apperr.IsValidation(err) {
		t.Errorf("ConfirmWithdrawal on fresh request: err = %v, want validation", err)
	}
	if _, err := svc.SaveWithdrawal(ctx, info.InvoiceNo, []WithdrawalLineInput{{Matnr: "M-01"}}); !apperr.IsValidation(err) {
		t.Errorf("SaveWithdrawal on fresh request: err = %v, want validation", err)
	}
	if _, err := svc.AssignDA(ctx, info.InvoiceNo, "DA-001"); !apperr.IsValidation(err) {
		t.Errorf("AssignDA on fresh request: err = %v, want validation", err)
	}
}

func TestSaveWithdrawalReplacesLines(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	info := createRequest(t, svc)

	if _, err := svc.ApproveRequest(ctx, info.InvoiceNo); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AssignDA(ctx, info.InvoiceNo, "DA-001"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SaveWithdrawal(ctx, info.InvoiceNo, []WithdrawalLineInput{
		{Matnr: "M-01", PackQty: 1, NetVal: decimal.NewFromInt(100)},
		{Matnr: "M-02", PackQty: 1, NetVal: decimal.NewFromInt(120)},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SaveWithdrawal(ctx, info.InvoiceNo, []WithdrawalLineInput{
		{Matnr: "M-01", PackQty: 2, NetVal: decimal.NewFromInt(200)},
	}); err != nil {
		t.Fatal(err)
	}

	var count int64
	db.Model(&entity.WithdrawalLine{}).Where("invoice_id = ?", info.ID).Count(&count)
	if count != 1 {
		t.Errorf("withdrawal lines after re-save = %d, want 1", count)
	}
}

func TestUpdateRequestReconciles(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	info := createRequest(t, svc)

	var before []entity.RequestLine
	db.Where("invoice_id = ?", info.ID).Order("id ASC").Find(&before)
	if len(before) != 2 {
		t.Fatalf("seeded lines = %d, want 2", len(before))
	}

	// Keep the first line as-is, replace the second with new content.
	lines, err := svc.UpdateRequest(ctx, UpdateRequestInput{
		InvoiceNo: info.InvoiceNo,
		RequestList: []RequestLineInput{
			{Matnr: "M-01", Batch: "B-01", PackQty: 5, UnitQty: 50, NetVal: decimal.NewFromInt(500)},
			{Matnr: "M-02", Batch: "B-02", PackQty: 3, UnitQty: 30, NetVal: decimal.NewFromInt(360)},
		},
	})
	if err != nil {
		t.Fatalf("UpdateRequest failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines after update = %d, want 2", len(lines))
	}
	if lines[0].ID != before[0].ID {
		t.Errorf("matching line lost its id: got %d, want %d", lines[0].ID, before[0].ID)
	}
	if lines[1].ID == before[1].ID {
		t.Error("changed line kept its id, expected delete+insert")
	}
}

func TestUpdateRequestIdempotent(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	info := createRequest(t, svc)

	same := []RequestLineInput{
		{Matnr: "M-01", Batch: "B-01", PackQty: 5, UnitQty: 50, NetVal: decimal.NewFromInt(500)},
		{Matnr: "M-02", Batch: "B-02", PackQty: 2, UnitQty: 20, NetVal: decimal.NewFromInt(240)},
	}
	var before []entity.RequestLine
	db.Where("invoice_id = ?", info.ID).Order("id ASC").Find(&before)

	if _, err := svc.UpdateRequest(ctx, UpdateRequestInput{InvoiceNo: info.InvoiceNo, RequestList: same}); err != nil {
		t.Fatalf("UpdateRequest failed: %v", err)
	}

	var after []entity.RequestLine
	db.Where("invoice_id = ?", info.ID).Order("id ASC").Find(&after)
	if len(after) != len(before) {
		t.Fatalf("line count changed: %d -> %d", len(before), len(after))
	}
	for i := range after {
		if after[i].ID != before[i].ID {
			t.Errorf("line %d id changed: %d -> %d", i, before[i].ID, after[i].ID)
		}
	}
}

func TestUpdateRequestRejectedAfterApproval(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	info := createRequest(t, svc)

	if _, err := svc.ApproveRequest(ctx, info.InvoiceNo); err != nil {
		t.Fatal(err)
	}
	_, err := svc.UpdateRequest(ctx, UpdateRequestInput{
		InvoiceNo: info.InvoiceNo,
		RequestList: []RequestLineInput{
			{Matnr: "M-01", PackQty: 1, NetVal: decimal.NewFromInt(10)},
		},
	})
	if !apperr.IsValidation(err) {
		t.Errorf("err = %v, want validation error after approval", err)
	}
}

func TestUpdateRequestChangesInvoiceType(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	info := createRequest(t, svc)

	same := []RequestLineInput{
		{Matnr: "M-01", Batch: "B-01", PackQty: 5, UnitQty: 50, NetVal: decimal.NewFromInt(500)},
		{Matnr: "M-02", Batch: "B-02", PackQty: 2, UnitQty: 20, NetVal: decimal.NewFromInt(240)},
	}

	if _, err := svc.UpdateRequest(ctx, UpdateRequestInput{
		InvoiceNo:   info.InvoiceNo,
		InvoiceType: "General",
		RequestList: same,
	}); err != nil {
		t.Fatalf("UpdateRequest failed: %v", err)
	}

	var after entity.WithdrawalInfo
	if err := db.Where("invoice_no = ?", info.InvoiceNo).First(&after).Error; err != nil {
		t.Fatal(err)
	}
	if after.InvoiceType != entity.InvoiceTypeGeneral {
		t.Errorf("invoice_type = %q, want %q", after.InvoiceType, entity.InvoiceTypeGeneral)
	}

	// Omitting invoice_type leaves the stored value alone.
	if _, err := svc.UpdateRequest(ctx, UpdateRequestInput{InvoiceNo: info.InvoiceNo, RequestList: same}); err != nil {
		t.Fatalf("UpdateRequest failed: %v", err)
	}
	if err := db.Where("invoice_no = ?", info.InvoiceNo).First(&after).Error; err != nil {
		t.Fatal(err)
	}
	if after.InvoiceType != entity.InvoiceTypeGeneral {
		t.Errorf("invoice_type after partial update = %q, want %q", after.InvoiceType, entity.InvoiceTypeGeneral)
	}

	_, err := svc.UpdateRequest(ctx, UpdateRequestInput{
		InvoiceNo:   info.InvoiceNo,
		InvoiceType: "Damaged",
		RequestList: same,
	})
	if !apperr.IsValidation(err) {
		t.Errorf("invalid invoice_type: err = %v, want validation", err)
	}
}

func TestOperationsOnMissingInvoice(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	if _, err := svc.ApproveRequest(ctx, "5099999999"); !apperr.IsNotFound(err) {
		t.Errorf("ApproveRequest: err = %v, want not found", err)
	}
	if _, err := svc.AssignDA(ctx, "5099999999", "DA-001"); !apperr.IsNotFound(err) {
		t.Errorf("AssignDA: err = %v, want not found", err)
	}
}

func TestDiffRequestLines(t *testing.T) {
	date := entity.Today()
	mk := func(id uint64, packQty int, netVal int64) entity.RequestLine {
		return entity.RequestLine{
			ID: id, PackQty: packQty, NetVal: decimal.NewFromInt(netVal), ExpireDate: &date,
		}
	}

	existing := []entity.RequestLine{mk(1, 5, 500), mk(2, 2, 240)}

	t.Run("identical set is a no-op", func(t *testing.T) {
		deleteIDs, insert := diffRequestLines(existing, []entity.RequestLine{mk(0, 5, 500), mk(0, 2, 240)})
		if len(deleteIDs) != 0 || len(insert) != 0 {
			t.Errorf("deleteIDs=%v insert=%d, want none", deleteIDs, len(insert))
		}
	})

	t.Run("changed line deletes and inserts", func(t *testing.T) {
		deleteIDs, insert := diffRequestLines(existing, []entity.RequestLine{mk(0, 5, 500), mk(0, 3, 360)})
		if len(deleteIDs) != 1 || deleteIDs[0] != 2 {
			t.Errorf("deleteIDs = %v, want [2]", deleteIDs)
		}
		if len(insert) != 1 || insert[0].PackQty != 3 {
			t.Errorf("insert = %+v, want one line with pack_qty 3", insert)
		}
	})

	t.Run("duplicate content matched once each", func(t *testing.T) {
		dupes := []entity.RequestLine{mk(1, 5, 500), mk(2, 5, 500)}
		deleteIDs, insert := diffRequestLines(dupes, []entity.RequestLine{mk(0, 5, 500)})
		if len(deleteIDs) != 1 || deleteIDs[0] != 2 {
			t.Errorf("deleteIDs = %v, want [2]", deleteIDs)
		}
		if len(insert) != 0 {
			t.Errorf("insert = %d, want 0", len(insert))
		}
	})
}
