package account

import (
	"github.com/shopspring/decimal"
)

type ProfileSchema struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
}

type CreateAccountSchema struct {
	Profile ProfileSchema    `json:"profile" validate:"required"`
	Limit   *decimal.Decimal `json:"limit" validate:"required"`
}

type TransactionSchema struct {
	Amount *decimal.Decimal `json:"amount" validate:"required"`
}

type UpdateLimitSchema struct {
	Limit *decimal.Decimal `json:"limit" validate:"required"`
}

type BalanceResponseSchema struct {
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
}

type TotalResponseSchema struct {
	Total decimal.Decimal `json:"total"`
}
