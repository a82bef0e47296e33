package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/najmulislamnajim/expire-product-api/internal/testutil"
	"github.com/najmulislamnajim/expire-product-api/internal/withdrawal/repository"
	"github.com/najmulislamnajim/expire-product-api/internal/withdrawal/service"
	"go.uber.org/zap"
)

func setupHandlerTest(t *testing.T) *gin.Engine {
	t.Helper()
	db := testutil.SetupTestDB(t)

	testutil.SeedRouteDepot(t, db, "D100", "R200")
	testutil.SeedCustomer(t, db, "P-1001", "R200")
	testutil.SeedFieldUser(t, db, "MIO-001", "Test MIO")
	testutil.SeedFieldUser(t, db, "RM-001", "Test RM")
	testutil.SeedDeliveryAgent(t, db, "DA-001", "Test DA")
	testutil.SeedMaterial(t, db, "M-01", "Napa 500mg", "10x10's", 80, 10)

	repos := repository.NewRepositories(db)
	svc := service.NewWithdrawalService(repos, nil, zap.NewNop())
	h := NewWithdrawalHandler(svc)

	r := testutil.SetupRouter()
	h.RegisterRoutes(r.Group("/api/v1/withdrawal"))
	h.RegisterMaterialRoutes(r.Group("/api/v1/material"))
	return r
}

func createRequestBody() map[string]interface{} {
	return map[string]interface{}{
		"mio_id":       "MIO-001",
		"rm_id":        "RM-001",
		"partner_id":   "P-1001",
		"invoice_type": "Expired",
		"request_list": []map[string]interface{}{
			{"matnr": "M-01", "batch": "B-01", "pack_qty": 5, "unit_qty": 50, "net_val": 500},
		},
	}
}

func TestCreateRequestEndpoint(t *testing.T) {
	r := setupHandlerTest(t)

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/withdrawal/request", createRequestBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["success"] != true {
		t.Errorf("success = %v, want true", resp["success"])
	}
	data := resp["data"].(map[string]interface{})
	if data["invoice_no"] == "" || data["invoice_no"] == nil {
		t.Error("invoice_no missing from response")
	}
	if data["last_status"] != "request" {
		t.Errorf("last_status = %v, want request", data["last_status"])
	}
}

func TestMaterialListEndpoint(t *testing.T) {
	r := setupHandlerTest(t)

	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/material/list", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["success"] != true {
		t.Errorf("success = %v, want true", resp["success"])
	}
	materials := resp["data"].([]interface{})
	if len(materials) != 1 {
		t.Fatalf("materials = %d, want 1", len(materials))
	}
	m := materials[0].(map[string]interface{})
	if m["matnr"] != "M-01" || m["material_name"] != "Napa 500mg" {
		t.Errorf("material = %v", m)
	}
}

func TestUpdateRequestEndpoint(t *testing.T) {
	r := setupHandlerTest(t)

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/withdrawal/request", createRequestBody())
	resp := testutil.ParseResponse(w)
	invoiceNo := resp["data"].(map[string]interface{})["invoice_no"].(string)

	w = testutil.DoRequest(r, http.MethodPut, "/api/v1/withdrawal/request/edit", map[string]interface{}{
		"invoice_no":   invoiceNo,
		"invoice_type": "General",
		"request_list": []map[string]interface{}{
			{"matnr": "M-01", "batch": "B-01", "pack_qty": 3, "unit_qty": 30, "net_val": 300},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	lines := resp["data"].(map[string]interface{})["request_list"].([]interface{})
	if len(lines) != 1 {
		t.Fatalf("request_list = %d, want 1", len(lines))
	}

	w = testutil.DoRequest(r, http.MethodPut, "/api/v1/withdrawal/request/edit", map[string]interface{}{
		"invoice_no":   invoiceNo,
		"invoice_type": "Damaged",
		"request_list": []map[string]interface{}{
			{"matnr": "M-01", "pack_qty": 1, "net_val": 10},
		},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid invoice_type: status = %d, want 400", w.Code)
	}
}

func TestCreateRequestMissingFields(t *testing.T) {
	r := setupHandlerTest(t)

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/withdrawal/request", map[string]interface{}{
		"mio_id": "MIO-001",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestApproveUnknownInvoice(t *testing.T) {
	r := setupHandlerTest(t)

	w := testutil.DoRequest(r, http.MethodPut, "/api/v1/withdrawal/request/approve/5099999999", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["success"] != false {
		t.Errorf("success = %v, want false", resp["success"])
	}
}

func TestRequestListEndpoint(t *testing.T) {
	r := setupHandlerTest(t)

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/withdrawal/request", createRequestBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %s", w.Body.String())
	}

	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/withdrawal/request/list?mio_id=MIO-001&status=all", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	items := resp["data"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	item := items[0].(map[string]interface{})
	if item["mio_name"] != "Test MIO" {
		t.Errorf("mio_name = %v", item["mio_name"])
	}
	lines := item["request_list"].([]interface{})
	if len(lines) != 1 {
		t.Fatalf("request_list = %d, want 1", len(lines))
	}

	pg := resp["pagination"].(map[string]interface{})
	if pg["total_items"].(float64) != 1 {
		t.Errorf("total_items = %v, want 1", pg["total_items"])
	}
	if pg["next_page"] != nil {
		t.Errorf("next_page = %v, want null", pg["next_page"])
	}
}

func TestRequestListWithoutFilters(t *testing.T) {
	r := setupHandlerTest(t)

	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/withdrawal/request/list", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestInvalidPagination(t *testing.T) {
	r := setupHandlerTest(t)

	for _, q := range []string{"page=0", "per_page=-1", "page=abc"} {
		w := testutil.DoRequest(r, http.MethodGet, "/api/v1/withdrawal/request/list?mio_id=MIO-001&"+q, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, w.Code)
		}
	}
}

func TestAssignDAEndpoint(t *testing.T) {
	r := setupHandlerTest(t)

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/withdrawal/request", createRequestBody())
	resp := testutil.ParseResponse(w)
	invoiceNo := resp["data"].(map[string]interface{})["invoice_no"].(string)

	// Assigning before approval violates the lifecycle.
	w = testutil.DoRequest(r, http.MethodPut, "/api/v1/withdrawal/assign-da", map[string]interface{}{
		"invoice_no": invoiceNo,
		"da_id":      "DA-001",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("assign before approve: status = %d, want 400", w.Code)
	}

	w = testutil.DoRequest(r, http.MethodPut, "/api/v1/withdrawal/request/approve/"+invoiceNo, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("approve failed: %s", w.Body.String())
	}

	w = testutil.DoRequest(r, http.MethodPut, "/api/v1/withdrawal/assign-da", map[string]interface{}{
		"invoice_no": invoiceNo,
		"da_id":      "DA-001",
	})
	if w.Code != http.StatusOK {
		t.Errorf("assign after approve: status = %d: %s", w.Code, w.Body.String())
	}
}
