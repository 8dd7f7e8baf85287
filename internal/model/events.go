package model

// InitializeEventData is the decoded Initialize notification payload.
type InitializeEventData struct {
	Currency0    string `json:"currency0"`
	Currency1    string `json:"currency1"`
	Fee          uint32 `json:"fee"`
	TickSpacing  int32  `json:"tick_spacing"`
	Hooks        string `json:"hooks"`
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Tick         int32  `json:"tick"`
}

// ModifyPositionEventData is the decoded ModifyPosition notification payload.
type ModifyPositionEventData struct {
	Sender         string `json:"sender"`
	TickLower      int32  `json:"tick_lower"`
	TickUpper      int32  `json:"tick_upper"`
	LiquidityDelta string `json:"liquidity_delta"`
	Amount0        string `json:"amount0"`
	Amount1        string `json:"amount1"`
}

// SwapEventData is the decoded Swap notification payload.
type SwapEventData struct {
	Sender       string `json:"sender"`
	Amount0      string `json:"amount0"`
	Amount1      string `json:"amount1"`
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Liquidity    string `json:"liquidity"`
	Tick         int32  `json:"tick"`
	Fee          string `json:"fee"`
}
