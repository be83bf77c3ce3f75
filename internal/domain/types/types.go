// Package types contains common types used across the application
package types

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Unit convention fixed by the training target.
const (
	CurrencyUSD = "USD"
	PeriodYear  = "year"
)

var printer = message.NewPrinter(language.English)

// Prediction is the result of a successful salary estimate.
type Prediction struct {
	ID        uuid.UUID         `json:"id"`
	Salary    float64           `json:"salary"`
	Currency  string            `json:"currency"`
	Period    string            `json:"period"`
	Display   string            `json:"display"`
	ModelName string            `json:"model_name"`
	Profile   map[string]string `json:"profile,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewPrediction stamps a fresh id and the USD-per-year unit on salary.
func NewPrediction(salary float64, modelName string, profile map[string]string) Prediction {
	return Prediction{
		ID:        uuid.New(),
		Salary:    salary,
		Currency:  CurrencyUSD,
		Period:    PeriodYear,
		Display:   FormatSalary(salary),
		ModelName: modelName,
		Profile:   profile,
		CreatedAt: time.Now().UTC(),
	}
}

// FormatSalary renders a salary as "$123,457 USD / year".
func FormatSalary(v float64) string {
	return printer.Sprintf("$%.0f %s / %s", v, CurrencyUSD, PeriodYear)
}

// Category is one selectable value of a categorical feature.
type Category struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// BatchItem carries either a prediction or an error for one batch element.
type BatchItem struct {
	Index      int         `json:"index"`
	Prediction *Prediction `json:"prediction,omitempty"`
	Error      *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody is the JSON error shape shared by single and batch responses.
type ErrorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Field   string   `json:"field,omitempty"`
	Value   string   `json:"value,omitempty"`
	Valid   []string `json:"valid,omitempty"`
	Missing []string `json:"missing,omitempty"`
	Stage   string   `json:"stage,omitempty"`
}
