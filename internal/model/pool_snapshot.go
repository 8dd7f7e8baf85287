package model

// PoolSnapshot is a pool state record for storage.
type PoolSnapshot struct {
	PoolID               string `json:"pool_id"`
	Currency0            string `json:"currency0"`
	Currency1            string `json:"currency1"`
	Fee                  uint32 `json:"fee"`
	TickSpacing          int32  `json:"tick_spacing"`
	Hooks                string `json:"hooks"`
	SqrtPriceX96         string `json:"sqrt_price_x96"`
	Tick                 int32  `json:"tick"`
	Liquidity            string `json:"liquidity"`
	FeeGrowthGlobal0X128 string `json:"fee_growth_global0_x128"`
	FeeGrowthGlobal1X128 string `json:"fee_growth_global1_x128"`
	UpdatedAt            string `json:"updated_at"`
}
