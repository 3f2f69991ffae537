package entity

// Re-export common types so callers only import entity.

import (
	"payroll/internal/entity/common"
)

type Money = common.Money

var (
	NewMoney   = common.NewMoney
	ParseMoney = common.ParseMoney
)
