package handler

import (
	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/service"
	"go-marketplace-api/pkg/pagination"

	"github.com/gofiber/fiber/v2"
)

// WalletHandler serves the wallet, its ledger, top-ups and withdrawals.
type WalletHandler struct {
	walletService     service.WalletService
	withdrawalService service.WithdrawalService
}

func NewWalletHandler(walletService service.WalletService, withdrawalService service.WithdrawalService) *WalletHandler {
	return &WalletHandler{walletService: walletService, withdrawalService: withdrawalService}
}

// GET /api/v1/user-wallet
func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	wallet, err := h.walletService.GetWallet(currentActor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": wallet})
}

// GetTransactions returns the wallet ledger
// GET /api/v1/transactions?type=&purpose=&user_id=
func (h *WalletHandler) GetTransactions(c *fiber.Ctx) error {
	userID, err := queryID(c, "user_id")
	if err != nil {
		return fail(c, err)
	}
	q := service.TransactionQuery{
		UserID:  userID,
		Type:    model.TransactionType(c.Query("type")),
		Purpose: model.TransactionPurpose(c.Query("purpose")),
	}
	p := pagination.FromQuery(c)
	entries, err := h.walletService.ListTransactions(currentActor(c), q, p)
	if err != nil {
		return fail(c, err)
	}
	return page(c, entries, p)
}

// GET /api/v1/transactions/:id
func (h *WalletHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	entry, err := h.walletService.GetTransaction(currentActor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": entry})
}

// Topup credits the wallet after the gateway confirms the payment
// POST /api/v1/topups
func (h *WalletHandler) Topup(c *fiber.Ctx) error {
	var req service.TopupRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	entry, err := h.walletService.Topup(currentActor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Wallet topped up successfully", entry)
}

// GET /api/v1/topups
func (h *WalletHandler) GetTopups(c *fiber.Ctx) error {
	p := pagination.FromQuery(c)
	topups, err := h.walletService.ListTopups(currentActor(c), p)
	if err != nil {
		return fail(c, err)
	}
	return page(c, topups, p)
}

// ---- withdrawals

// POST /api/v1/withdrawals
func (h *WalletHandler) RequestWithdrawal(c *fiber.Ctx) error {
	var req service.WithdrawalRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	withdrawal, err := h.withdrawalService.Request(currentActor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Withdrawal requested", withdrawal)
}

// GET /api/v1/withdrawals?status=
func (h *WalletHandler) GetWithdrawals(c *fiber.Ctx) error {
	p := pagination.FromQuery(c)
	withdrawals, err := h.withdrawalService.List(currentActor(c), model.WithdrawalStatus(c.Query("status")), p)
	if err != nil {
		return fail(c, err)
	}
	return page(c, withdrawals, p)
}

// GET /api/v1/withdrawals/:id
func (h *WalletHandler) GetWithdrawal(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	withdrawal, err := h.withdrawalService.Get(currentActor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": withdrawal})
}

// POST /api/v1/withdrawals/:id/process
func (h *WalletHandler) ProcessWithdrawal(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	withdrawal, err := h.withdrawalService.Process(currentActor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Withdrawal processed", withdrawal)
}

// POST /api/v1/withdrawals/:id/reject
func (h *WalletHandler) RejectWithdrawal(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.RejectWithdrawalRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	withdrawal, err := h.withdrawalService.Reject(currentActor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Withdrawal rejected", withdrawal)
}
