// internal/bank/money.go

package bank

import "github.com/shopspring/decimal"

// CentsPerUnit 為一歐元對應的最小貨幣單位數。
const CentsPerUnit = 100

// FormatAmount 將「分」轉為兩位小數字串，例如 60000 → "600.00"。
func FormatAmount(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// Units 將整數歐元換算為分。
func Units(euros int64) int64 {
	return euros * CentsPerUnit
}
