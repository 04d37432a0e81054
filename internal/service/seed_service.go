package service

import (
	"errors"
	"log"

	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Seeder creates default privileges, roles and the admin user when missing.
type Seeder struct {
	privilegeRepo repository.PrivilegeRepository
	roleRepo      repository.RoleRepository
	userRepo      repository.UserRepository
	walletRepo    repository.WalletRepository
}

func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{
		privilegeRepo: repository.NewPrivilegeRepo(db),
		roleRepo:      repository.NewRoleRepo(db),
		userRepo:      repository.NewUserRepo(db),
		walletRepo:    repository.NewWalletRepo(db),
	}
}

func (s *Seeder) Seed(adminEmail, adminPassword string) error {
	// 1. Seed privileges first
	if err := s.privilegeRepo.SeedDefaults(); err != nil {
		return err
	}

	// 2. Seed roles
	if err := s.roleRepo.SeedDefaults(); err != nil {
		return err
	}

	// 3. Assign privileges to roles that have none yet
	allPrivileges, err := s.privilegeRepo.FindAll()
	if err != nil {
		return err
	}

	adminRole, err := s.roleRepo.FindByCode(model.RoleAdmin)
	if err != nil {
		return err
	}
	if len(adminRole.Privileges) == 0 {
		if err := s.roleRepo.ReplacePrivileges(adminRole, allPrivileges); err != nil {
			return err
		}
		adminRole.Privileges = allPrivileges
		log.Println("ADMIN role assigned all privileges")
	}

	vendorRole, err := s.roleRepo.FindByCode(model.RoleVendor)
	if err != nil {
		return err
	}
	if len(vendorRole.Privileges) == 0 {
		vendorPrivileges, err := s.privilegeRepo.FindByCodes(model.VendorPrivileges)
		if err != nil {
			return err
		}
		if err := s.roleRepo.ReplacePrivileges(vendorRole, vendorPrivileges); err != nil {
			return err
		}
		log.Println("VENDOR role assigned store privileges")
	}

	// 4. Create the admin user
	_, err = s.userRepo.FindByEmail(adminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	admin := &model.User{
		Email:      adminEmail,
		FullName:   "Marketplace Administrator",
		RoleID:     &adminRole.ID,
		IsActive:   true,
		Privileges: adminRole.Privileges,
	}
	admin.Audit("system")
	if err := admin.SetPassword(adminPassword); err != nil {
		return err
	}
	if err := s.userRepo.Create(admin); err != nil {
		return err
	}
	if err := s.walletRepo.Create(&model.UserWallet{UserID: admin.ID, Balance: decimal.Zero}); err != nil {
		return err
	}
	log.Printf("Admin user created: %s", adminEmail)
	return nil
}
