package account

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/accountsys/ledger/internal/ledger"
)

func InitializeRoutes(app *fiber.App, svc *ledger.Service) {
	// /total must be registered before /:id.
	app.Get("/v1/accounts", GetAccountsHandler(svc))
	app.Post("/v1/accounts", CreateAccountHandler(context.Background(), svc))
	app.Get("/v1/accounts/total", GetTotalHandler(svc))
	app.Get("/v1/accounts/:id", GetAccountByIDHandler(svc))
	app.Delete("/v1/accounts/:id", DeleteAccountHandler(context.Background(), svc))
	app.Get("/v1/accounts/:id/balance", GetBalanceHandler(svc))
	app.Get("/v1/accounts/:id/transactions", GetTransactionsHandler(svc))
	app.Post("/v1/accounts/:id/deposit", MutateBalanceHandler(context.Background(), svc, ledger.Deposit))
	app.Post("/v1/accounts/:id/withdraw", MutateBalanceHandler(context.Background(), svc, ledger.Withdraw))
	app.Put("/v1/accounts/:id/details", UpdateDetailsHandler(context.Background(), svc))
	app.Put("/v1/accounts/:id/limit", UpdateLimitHandler(context.Background(), svc))
}
