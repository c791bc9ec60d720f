package account

import (
	"context"
	"errors"
	"sort"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/accountsys/ledger/internal/helper"
	"github.com/accountsys/ledger/internal/ledger"
)

// errorResponse maps domain errors onto HTTP status codes. Unknown errors
// bubble up to Fiber's default 500 handler.
func errorResponse(c fiber.Ctx, err error) error {
	var status int
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, ledger.ErrOverdraftLimitExceeded):
		status = fiber.StatusPaymentRequired
	case errors.Is(err, ledger.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidProfile),
		errors.Is(err, ledger.ErrInvalidLimit):
		status = fiber.StatusBadRequest
	default:
		return err
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func parseAccountNumber(c fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.UUID{}, fiber.ErrBadRequest
	}
	return id, nil
}

func CreateAccountHandler(ctx context.Context, svc *ledger.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		// Parse create account schema
		var req = CreateAccountSchema{}
		if err := c.Bind().Body(&req); err != nil {
			return fiber.ErrBadRequest
		}
		if err := helper.ValidateInput(&req); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		profile := ledger.Profile{
			Name:    req.Profile.Name,
			Address: req.Profile.Address,
			Email:   req.Profile.Email,
		}
		acct, err := svc.CreateAccount(ctx, profile, *req.Limit)
		if err != nil {
			return errorResponse(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(acct)
	}
}

func GetAccountsHandler(svc *ledger.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		// Get pagination
		pagination := helper.GetPagination[*ledger.Account](c)

		accounts, err := svc.ListAccounts(context.Background())
		if err != nil {
			return errorResponse(c, err)
		}

		// Stable order within a call; the store's map order is not.
		sort.Slice(accounts, func(i, j int) bool {
			return accounts[i].AccountNumber.String() < accounts[j].AccountNumber.String()
		})

		total := len(accounts)
		pagination.Total = &total

		start := (pagination.Page - 1) * pagination.Size
		if start > total {
			start = total
		}
		end := start + pagination.Size
		if end > total {
			end = total
		}
		pagination.Items = accounts[start:end]

		return c.JSON(pagination)
	}
}

func GetAccountByIDHandler(svc *ledger.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, err := parseAccountNumber(c)
		if err != nil {
			return err
		}

		acct, err := svc.GetAccount(context.Background(), id)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(acct)
	}
}

func DeleteAccountHandler(ctx context.Context, svc *ledger.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, err := parseAccountNumber(c)
		if err != nil {
			return err
		}

		if err := svc.DeleteAccount(ctx, id); err != nil {
			return errorResponse(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func GetBalanceHandler(svc *ledger.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, err := parseAccountNumber(c)
		if err != nil {
			return err
		}

		balance, err := svc.GetBalance(context.Background(), id)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(BalanceResponseSchema{
			AccountNumber: id.String(),
			Balance:       balance,
		})
	}
}

func GetTransactionsHandler(svc *ledger.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, err := parseAccountNumber(c)
		if err != nil {
			return err
		}

		transactions, err := svc.GetTransactions(context.Background(), id)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(transactions)
	}
}

// MutateBalanceHandler serves both deposit and withdraw; the operation is
// fixed at route-registration time.
func MutateBalanceHandler(ctx context.Context, svc *ledger.Service, op ledger.TransactionType) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, err := parseAccountNumber(c)
		if err != nil {
			return err
		}

		var req TransactionSchema
		if err := c.Bind().Body(&req); err != nil {
			return fiber.ErrBadRequest
		}
		if err := helper.ValidateInput(&req); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		var acct *ledger.Account
		switch op {
		case ledger.Deposit:
			acct, err = svc.Deposit(ctx, id, *req.Amount)
		case ledger.Withdraw:
			acct, err = svc.Withdraw(ctx, id, *req.Amount)
		}
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(acct)
	}
}

func UpdateDetailsHandler(ctx context.Context, svc *ledger.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, err := parseAccountNumber(c)
		if err != nil {
			return err
		}

		var req ProfileSchema
		if err := c.Bind().Body(&req); err != nil {
			return fiber.ErrBadRequest
		}
		if err := helper.ValidateInput(&req); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		acct, err := svc.ChangeDetails(ctx, id, ledger.Profile{
			Name:    req.Name,
			Address: req.Address,
			Email:   req.Email,
		})
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(acct)
	}
}

func UpdateLimitHandler(ctx context.Context, svc *ledger.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, err := parseAccountNumber(c)
		if err != nil {
			return err
		}

		var req UpdateLimitSchema
		if err := c.Bind().Body(&req); err != nil {
			return fiber.ErrBadRequest
		}
		if err := helper.ValidateInput(&req); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		acct, err := svc.ChangeLimit(ctx, id, *req.Limit)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(acct)
	}
}

func GetTotalHandler(svc *ledger.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		total, err := svc.SystemTotal(context.Background())
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(TotalResponseSchema{Total: total})
	}
}
