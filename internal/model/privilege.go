package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "product:create"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivUserView            = "user:view"
	PrivUserCreate          = "user:create"
	PrivUserUpdate          = "user:update"
	PrivUserDelete          = "user:delete"
	PrivUserUpdatePrivilege = "user:update_privilege"

	PrivStoreCreate    = "store:create"
	PrivStoreUpdate    = "store:update"
	PrivStoreManageAll = "store:manage_all"

	PrivProductCreate = "product:create"
	PrivProductUpdate = "product:update"
	PrivProductDelete = "product:delete"

	PrivCatalogManage    = "catalog:manage"
	PrivCouponManage     = "coupon:manage"
	PrivCreditCodeManage = "credit_code:manage"
	PrivFlashSaleManage  = "flash_sale:manage"

	PrivOrderViewAll = "order:view_all"
	PrivOrderFulfil  = "order:fulfil"

	PrivSettlementManage  = "settlement:manage"
	PrivWithdrawalProcess = "withdrawal:process"
	PrivTransactionView   = "transaction:view_all"

	PrivMediaManage   = "media:manage"
	PrivDashboardView = "dashboard:view"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: PrivUserView, Name: "View User"},
	{Code: PrivUserCreate, Name: "Create User"},
	{Code: PrivUserUpdate, Name: "Update User"},
	{Code: PrivUserDelete, Name: "Delete User"},
	{Code: PrivUserUpdatePrivilege, Name: "Update User Privileges"},
	// Stores
	{Code: PrivStoreCreate, Name: "Create Store"},
	{Code: PrivStoreUpdate, Name: "Update Own Store"},
	{Code: PrivStoreManageAll, Name: "Manage Any Store"},
	// Catalog
	{Code: PrivProductCreate, Name: "Create Product"},
	{Code: PrivProductUpdate, Name: "Update Product"},
	{Code: PrivProductDelete, Name: "Delete Product"},
	{Code: PrivCatalogManage, Name: "Manage Categories, Collections and Tags"},
	// Promotions
	{Code: PrivCouponManage, Name: "Manage Coupons"},
	{Code: PrivCreditCodeManage, Name: "Manage Credit Codes"},
	{Code: PrivFlashSaleManage, Name: "Manage Flash Sales"},
	// Orders
	{Code: PrivOrderViewAll, Name: "View All Orders"},
	{Code: PrivOrderFulfil, Name: "Fulfil Store Orders"},
	// Money
	{Code: PrivSettlementManage, Name: "Manage Vendor Settlements"},
	{Code: PrivWithdrawalProcess, Name: "Process Withdrawals"},
	{Code: PrivTransactionView, Name: "View All Transactions"},
	// Misc
	{Code: PrivMediaManage, Name: "Manage Media"},
	{Code: PrivDashboardView, Name: "View Dashboard"},
}

// VendorPrivileges are granted to the VENDOR role on seed.
var VendorPrivileges = []string{
	PrivStoreCreate,
	PrivStoreUpdate,
	PrivProductCreate,
	PrivProductUpdate,
	PrivProductDelete,
	PrivOrderFulfil,
	PrivMediaManage,
}
