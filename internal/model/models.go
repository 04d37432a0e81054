package model

// All lists every table for AutoMigrate, parents before children.
func All() []interface{} {
	return []interface{}{
		&Privilege{}, &Role{}, &User{},
		&Store{}, &Category{}, &Tag{}, &Product{}, &ProductVariation{}, &Collection{},
		&FlashSale{}, &FlashSaleItem{},
		&Cart{}, &Wishlist{}, &UserAddress{},
		&Coupon{}, &CreditCode{}, &CreditCodeUsage{},
		&Order{}, &StoreOrder{}, &StoreOrderProduct{},
		&UserWallet{}, &Transaction{}, &Topup{}, &Withdrawal{}, &VendorSettlement{},
		&MediaFolder{}, &MediaFile{},
	}
}
