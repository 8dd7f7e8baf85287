package model

// MinFeeDenominator caps protocol and hook fee portions at 25% of the fee.
const MinFeeDenominator uint8 = 4

// PackedFee carries a protocol or hook fee as two reciprocal denominators:
// the upper byte applies to swap fees, the lower byte to withdrawn principal.
// A zero byte disables that portion; a non-zero byte d takes amount/d.
type PackedFee uint16

// SwapDenominator returns the swap-fee portion denominator.
func (f PackedFee) SwapDenominator() uint8 {
	return uint8(f >> 8)
}

// WithdrawDenominator returns the withdraw-fee portion denominator.
func (f PackedFee) WithdrawDenominator() uint8 {
	return uint8(f)
}

// Validate rejects denominators below MinFeeDenominator; zero is allowed.
func (f PackedFee) Validate() error {
	if d := f.SwapDenominator(); d != 0 && d < MinFeeDenominator {
		return ErrFeeTooLarge
	}
	if d := f.WithdrawDenominator(); d != 0 && d < MinFeeDenominator {
		return ErrFeeTooLarge
	}
	return nil
}
