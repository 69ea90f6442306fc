package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/voicebank/voicebank/internal/ledger"
	"github.com/voicebank/voicebank/internal/middleware"
)

func init() {
	// Balances and amounts go over the wire as JSON numbers, not quoted
	// strings, so existing clients can keep parsing them numerically.
	decimal.MarshalJSONWithoutQuotes = true
}

type accountResponse struct {
	AccountID     string          `json:"account_id"`
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	AccountType   string          `json:"account_type"`
}

type transferRequest struct {
	RecipientPhone string          `json:"recipient_phone"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description"`
}

type billPayRequest struct {
	BillType    string          `json:"bill_type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type transactionResponse struct {
	TransactionID string          `json:"transaction_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Recipient     string          `json:"recipient"`
	Description   string          `json:"description"`
	Timestamp     time.Time       `json:"timestamp"`
	Status        string          `json:"status"`
}

func toTransactionResponse(txn ledger.Transaction) transactionResponse {
	return transactionResponse{
		TransactionID: txn.ID,
		Type:          txn.Type,
		Amount:        txn.Amount,
		Recipient:     txn.Recipient,
		Description:   txn.Description,
		Timestamp:     txn.CreatedAt,
		Status:        txn.Status,
	}
}

func mapLedgerError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound):
		return fiber.NewError(http.StatusNotFound, "account not found")
	case errors.Is(err, ledger.ErrRecipientNotFound):
		return fiber.NewError(http.StatusNotFound, "recipient not found")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return fiber.NewError(http.StatusBadRequest, "insufficient balance")
	case errors.Is(err, ledger.ErrInvalidAmount):
		return fiber.NewError(http.StatusBadRequest, "amount must be positive")
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}

// RegisterAccountRoutes wires the account snapshot and transaction endpoints.
// All of them authenticate via the token query parameter.
func RegisterAccountRoutes(r fiber.Router, accounts *ledger.Service, tokenAuth fiber.Handler) {
	r.Get("/account", tokenAuth, func(c *fiber.Ctx) error {
		userID, _ := c.Locals(middleware.UserIDKey).(string)

		account, err := accounts.GetAccount(c.UserContext(), userID)
		if err != nil {
			return mapLedgerError(err)
		}

		return c.Status(http.StatusOK).JSON(accountResponse{
			AccountID:     account.ID,
			AccountNumber: account.AccountNumber,
			Balance:       account.Balance,
			AccountType:   account.AccountType,
		})
	})

	r.Post("/transaction/transfer", tokenAuth, func(c *fiber.Ctx) error {
		var req transferRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		userID, _ := c.Locals(middleware.UserIDKey).(string)
		debit, err := accounts.Transfer(c.UserContext(), ledger.TransferInput{
			UserID:         userID,
			RecipientPhone: req.RecipientPhone,
			Amount:         req.Amount,
			Description:    req.Description,
		})
		if err != nil {
			return mapLedgerError(err)
		}

		return c.Status(http.StatusOK).JSON(toTransactionResponse(debit))
	})

	r.Post("/transaction/bill-pay", tokenAuth, func(c *fiber.Ctx) error {
		var req billPayRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		userID, _ := c.Locals(middleware.UserIDKey).(string)
		debit, err := accounts.PayBill(c.UserContext(), ledger.BillInput{
			UserID:      userID,
			BillType:    req.BillType,
			Amount:      req.Amount,
			Description: req.Description,
		})
		if err != nil {
			return mapLedgerError(err)
		}

		return c.Status(http.StatusOK).JSON(toTransactionResponse(debit))
	})

	r.Get("/transactions", tokenAuth, func(c *fiber.Ctx) error {
		userID, _ := c.Locals(middleware.UserIDKey).(string)
		limit := c.QueryInt("limit", 10)
		if limit <= 0 {
			limit = 10
		}

		history, err := accounts.ListTransactions(c.UserContext(), userID, limit)
		if err != nil {
			return mapLedgerError(err)
		}

		out := make([]transactionResponse, 0, len(history))
		for _, txn := range history {
			out = append(out, toTransactionResponse(txn))
		}
		return c.Status(http.StatusOK).JSON(out)
	})
}
