package dto

type CreateAssetRequest struct {
	Name string `json:"name" validate:"max=64"`
}

type TradeRequest struct {
	Asset    string `json:"asset" validate:"max=64"`
	Quantity Amount `json:"quantity" validate:"max=40"`
}

type PaymentRequest struct {
	Recipient string `json:"recipient" validate:"max=64"`
	Amount    Amount `json:"amount" validate:"max=40"`
	Currency  string `json:"currency" validate:"max=16"`
}

type SetRateRequest struct {
	Code string `json:"code" validate:"max=16"`
	Rate Amount `json:"rate" validate:"max=40"`
}

type SetBalanceRequest struct {
	Username string `json:"username" validate:"max=64"`
	Currency string `json:"currency" validate:"max=16"`
	Amount   Amount `json:"amount" validate:"max=40"`
}

type SetPriceRequest struct {
	Asset string `json:"asset" validate:"max=64"`
	Price Amount `json:"price" validate:"max=40"`
}

// CurrencyRequest serves both add and edit; on edit Code comes from the path.
type CurrencyRequest struct {
	Code  string `json:"code" validate:"max=16"`
	Label string `json:"label" validate:"max=16"`
	Rate  Amount `json:"rate" validate:"max=40"`
	Link  string `json:"link" validate:"omitempty,max=512,url|eq=#"`
}
