package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	rplentity "github.com/najmulislamnajim/expire-product-api/internal/replacement/entity"
	"github.com/najmulislamnajim/expire-product-api/internal/withdrawal/entity"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const TestSchema = "test_expr"

// projectRoot returns the project root directory by looking for go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func loadEnv() {
	root := projectRoot()
	if root != "" {
		godotenv.Load(filepath.Join(root, ".env"))
	}
}

// SetupTestDB creates a database connection scoped to a dedicated,
// uniquely named schema so tests can run in parallel without seeing
// each other's rows. The schema is dropped when the test finishes.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "expr")
	password := getEnv("DB_PASSWORD", "expr123")
	dbname := getEnv("DB_NAME", "expire_product")

	baseDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	schemaName := fmt.Sprintf("%s_%d", TestSchema, time.Now().UnixNano()%1000000)

	setupDB, err := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to database for schema setup: %v", err)
	}
	setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName))
	sqlSetup, _ := setupDB.DB()
	sqlSetup.Close()

	// search_path in the DSN so every pooled connection uses the schema.
	testDSN := fmt.Sprintf("%s search_path=%s", baseDSN, schemaName)
	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Reference tables are migrated here, unlike in production, so
	// tests can seed SAP master data.
	err = db.AutoMigrate(
		&entity.WithdrawalInfo{},
		&entity.RequestLine{},
		&entity.WithdrawalLine{},
		&rplentity.ReplacementLine{},
		&entity.Material{},
		&entity.Customer{},
		&entity.RouteDepot{},
		&entity.FieldUser{},
		&entity.DeliveryAgent{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		cleanDB, cleanErr := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if cleanErr == nil {
			cleanDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
			sqlClean, _ := cleanDB.DB()
			if sqlClean != nil {
				sqlClean.Close()
			}
		}
	})

	return db
}

// SetupRouter creates a gin router in test mode.
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// DoRequest executes an HTTP request against the test router.
func DoRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a map.
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedCustomer creates a partner whose transport zone resolves to the
// given route.
func SeedCustomer(t *testing.T, db *gorm.DB, partner, routeCode string) *entity.Customer {
	t.Helper()
	customer := &entity.Customer{
		Partner:       partner,
		Name1:         "Pharmacy " + partner,
		ContactPerson: "Contact " + partner,
		MobileNo:      "01700000000",
		Street:        "Street " + partner,
		District:      "Dhaka",
		TransPZone:    "0000" + routeCode,
	}
	if err := db.Create(customer).Error; err != nil {
		t.Fatalf("Failed to seed customer: %v", err)
	}
	return customer
}

// SeedRouteDepot creates a route-to-depot mapping.
func SeedRouteDepot(t *testing.T, db *gorm.DB, depotCode, routeCode string) *entity.RouteDepot {
	t.Helper()
	rd := &entity.RouteDepot{
		DepotCode: depotCode,
		DepotName: "Depot " + depotCode,
		RouteCode: routeCode,
		RouteName: "Route " + routeCode,
	}
	if err := db.Create(rd).Error; err != nil {
		t.Fatalf("Failed to seed route depot: %v", err)
	}
	return rd
}

// SeedFieldUser creates a MIO or RM directory entry.
func SeedFieldUser(t *testing.T, db *gorm.DB, workArea, name string) *entity.FieldUser {
	t.Helper()
	u := &entity.FieldUser{
		WorkAreaT:    workArea,
		Name:         name,
		MobileNumber: "01800000000",
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("Failed to seed field user: %v", err)
	}
	return u
}

// SeedDeliveryAgent creates a DA directory entry.
func SeedDeliveryAgent(t *testing.T, db *gorm.DB, sapID, name string) *entity.DeliveryAgent {
	t.Helper()
	da := &entity.DeliveryAgent{
		SapID:        sapID,
		FullName:     name,
		MobileNumber: "01900000000",
	}
	if err := db.Create(da).Error; err != nil {
		t.Fatalf("Failed to seed delivery agent: %v", err)
	}
	return da
}

// SeedMaterial creates a material master row.
func SeedMaterial(t *testing.T, db *gorm.DB, matnr, name, packSize string, unitTP, unitVAT float64) *entity.Material {
	t.Helper()
	m := &entity.Material{
		Matnr:           matnr,
		MaterialName:    name,
		ProducerCompany: "RPL",
		PackSize:        packSize,
		UnitTP:          decimal.NewFromFloat(unitTP),
		UnitVAT:         decimal.NewFromFloat(unitVAT),
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("Failed to seed material: %v", err)
	}
	return m
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
