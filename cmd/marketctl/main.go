// Command marketctl runs maintenance tasks against the marketplace database.
package main

import (
	"fmt"
	"log"
	"os"

	"go-marketplace-api/internal/events"
	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/repository"
	"go-marketplace-api/internal/service"
	"go-marketplace-api/pkg/config"
	"go-marketplace-api/pkg/database"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "marketctl",
		Short:        "Marketplace maintenance commands",
		SilenceUsage: true,
	}
	root.AddCommand(newMigrateCmd(), newSeedCmd(), newResetPasswordCmd(), newSettleCmd())
	return root
}

func connect() (*config.Config, *gorm.DB) {
	cfg := config.Load()
	return cfg, database.Connect(cfg)
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db := connect()
			if err := db.AutoMigrate(model.All()...); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Println("✅ Migration finished")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed privileges, roles and the admin user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db := connect()
			if err := service.NewSeeder(db).Seed(cfg.AdminEmail, cfg.AdminPassword); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			log.Println("✅ Seed finished")
			return nil
		},
	}
}

func newResetPasswordCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(password) < 6 {
				return fmt.Errorf("password must be at least 6 characters")
			}
			_, db := connect()
			return resetPassword(repository.NewUserRepo(db), email, password)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "user email")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func resetPassword(users repository.UserRepository, email, password string) error {
	user, err := users.FindByEmail(email)
	if err != nil {
		return fmt.Errorf("user %s not found: %w", email, err)
	}
	if err := user.SetPassword(password); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := users.UpdatePassword(user.ID, user.Password); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	log.Printf("✅ Password for %s has been reset", email)
	return nil
}

func newSettleCmd() *cobra.Command {
	var storeID string
	var all bool
	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Settle delivered store orders into vendor wallets",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (storeID == "") == !all {
				return fmt.Errorf("pass exactly one of --store or --all")
			}
			_, db := connect()
			settlements := service.NewSettlementService(db,
				repository.NewSettlementRepo(db),
				repository.NewOrderRepo(db),
				repository.NewStoreRepo(db),
				repository.NewWalletRepo(db),
				events.Nop{},
			)
			return settle(cmd, settlements, storeID, all)
		},
	}
	cmd.Flags().StringVar(&storeID, "store", "", "store id to settle")
	cmd.Flags().BoolVar(&all, "all", false, "settle every store with eligible orders")
	return cmd
}

var systemActor = service.Actor{Name: "system", Privileges: []string{model.PrivSettlementManage}}

func settle(cmd *cobra.Command, settlements service.SettlementService, storeID string, all bool) error {
	if all {
		done, err := settlements.SettleAll(systemActor)
		if err != nil {
			return err
		}
		for _, s := range done {
			cmd.Printf("store %s: gross %s commission %s net %s\n", s.StoreID, s.GrossAmount, s.CommissionAmount, s.NetAmount)
		}
		cmd.Printf("%d store(s) settled\n", len(done))
		return nil
	}

	id, err := uuid.Parse(storeID)
	if err != nil {
		return fmt.Errorf("invalid store id %q", storeID)
	}
	s, err := settlements.SettleStore(systemActor, id)
	if err != nil {
		return err
	}
	cmd.Printf("store %s: gross %s commission %s net %s\n", s.StoreID, s.GrossAmount, s.CommissionAmount, s.NetAmount)
	return nil
}
