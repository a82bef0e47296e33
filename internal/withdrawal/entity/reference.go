package entity

import "github.com/shopspring/decimal"

// Reference tables below are owned by the upstream distribution system
// and are read-only here. They are modeled only so the projection joins
// have typed schemas and tests can seed them; this service never
// mutates them and never migrates them in production.

// Material is the material master (rpl_material).
type Material struct {
	ID              uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	Matnr           string          `json:"matnr" gorm:"size:40;not null;index"`
	MaterialName    string          `json:"material_name" gorm:"size:40"`
	ProducerCompany string          `json:"producer_company" gorm:"size:3"`
	PackSize        string          `json:"pack_size" gorm:"type:text"`
	UnitTP          decimal.Decimal `json:"unit_tp" gorm:"column:unit_tp;type:decimal(10,2)"`
	UnitVAT         decimal.Decimal `json:"unit_vat" gorm:"column:unit_vat;type:decimal(10,2)"`
}

func (Material) TableName() string {
	return "rpl_material"
}

// Customer is the partner master (rpl_customer). The transport zone
// links a partner to its route.
type Customer struct {
	Partner       string `json:"partner" gorm:"primaryKey;size:40"`
	Name1         string `json:"name1" gorm:"size:80"`
	Name2         string `json:"name2" gorm:"size:80"`
	ContactPerson string `json:"contact_person" gorm:"size:80"`
	MobileNo      string `json:"mobile_no" gorm:"size:20"`
	Street        string `json:"street" gorm:"size:120"`
	Street1       string `json:"street1" gorm:"size:120"`
	Street2       string `json:"street2" gorm:"size:120"`
	Street3       string `json:"street3" gorm:"size:120"`
	PostCode      string `json:"post_code" gorm:"size:10"`
	Upazilla      string `json:"upazilla" gorm:"size:60"`
	District      string `json:"district" gorm:"size:60"`
	TransPZone    string `json:"trans_p_zone" gorm:"size:10"`
}

func (Customer) TableName() string {
	return "rpl_customer"
}

// RouteDepot maps routes to depots (rdl_route_wise_depot).
type RouteDepot struct {
	ID        uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	DepotCode string `json:"depot_code" gorm:"size:40;index"`
	DepotName string `json:"depot_name" gorm:"size:80"`
	RouteCode string `json:"route_code" gorm:"size:40;index"`
	RouteName string `json:"route_name" gorm:"size:80"`
}

func (RouteDepot) TableName() string {
	return "rdl_route_wise_depot"
}

// FieldUser is the MIO/RM directory (rpl_user_list), keyed by work area.
type FieldUser struct {
	ID           uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	WorkAreaT    string `json:"work_area_t" gorm:"size:40;index"`
	Name         string `json:"name" gorm:"size:80"`
	MobileNumber string `json:"mobile_number" gorm:"size:20"`
}

func (FieldUser) TableName() string {
	return "rpl_user_list"
}

// DeliveryAgent is the DA directory (rdl_users_list), keyed by SAP id.
type DeliveryAgent struct {
	ID           uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	SapID        string `json:"sap_id" gorm:"size:40;index"`
	FullName     string `json:"full_name" gorm:"size:80"`
	MobileNumber string `json:"mobile_number" gorm:"size:20"`
}

func (DeliveryAgent) TableName() string {
	return "rdl_users_list"
}
