package api

import (
	"github.com/gofiber/fiber/v3"

	"github.com/accountsys/ledger/internal/api/account"
	"github.com/accountsys/ledger/internal/ledger"
)

func InitializeRoutes(app *fiber.App, svc *ledger.Service) {
	account.InitializeRoutes(app, svc)
}
