// Package hooks implements per-pool lifecycle callbacks: capability flags
// encoded in hook addresses, a registry binding addresses to implementations,
// and a dispatcher that invokes declared points and verifies their
// acknowledgments.
package hooks

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"flashLedger/internal/model"
)

// Ack is the 4-byte acknowledgment a hook returns from a callback. The
// expected tag for a point is the first four bytes of the Keccak-256 digest
// of the point name.
type Ack [4]byte

var (
	AckBeforeInitialize     = ackFor("beforeInitialize")
	AckAfterInitialize      = ackFor("afterInitialize")
	AckBeforeModifyPosition = ackFor("beforeModifyPosition")
	AckAfterModifyPosition  = ackFor("afterModifyPosition")
	AckBeforeSwap           = ackFor("beforeSwap")
	AckAfterSwap            = ackFor("afterSwap")
	AckBeforeDonate         = ackFor("beforeDonate")
	AckAfterDonate          = ackFor("afterDonate")
)

func ackFor(point string) Ack {
	var a Ack
	copy(a[:], crypto.Keccak256([]byte(point)))
	return a
}

// Context carries the operation context every hook point receives.
type Context struct {
	Sender common.Address
	Key    model.PoolKey
	Data   []byte
}

// Hook is the full lifecycle callback surface. Implementations embed Base and
// override the points their address declares. BeforeSwap may return a non-nil
// amount to replace the swap's specified amount.
type Hook interface {
	BeforeInitialize(ctx Context, sqrtPriceX96 *big.Int) (Ack, error)
	AfterInitialize(ctx Context, sqrtPriceX96 *big.Int, tick int) (Ack, error)
	BeforeModifyPosition(ctx Context, params model.ModifyPositionParams) (Ack, error)
	AfterModifyPosition(ctx Context, params model.ModifyPositionParams, delta model.BalanceDelta) (Ack, error)
	BeforeSwap(ctx Context, params model.SwapParams) (Ack, *big.Int, error)
	AfterSwap(ctx Context, params model.SwapParams, delta model.BalanceDelta) (Ack, error)
	BeforeDonate(ctx Context, amount0, amount1 *big.Int) (Ack, error)
	AfterDonate(ctx Context, amount0, amount1 *big.Int) (Ack, error)
}

// Base is a no-op Hook returning the correct acknowledgment at every point.
type Base struct{}

func (Base) BeforeInitialize(Context, *big.Int) (Ack, error) {
	return AckBeforeInitialize, nil
}

func (Base) AfterInitialize(Context, *big.Int, int) (Ack, error) {
	return AckAfterInitialize, nil
}

func (Base) BeforeModifyPosition(Context, model.ModifyPositionParams) (Ack, error) {
	return AckBeforeModifyPosition, nil
}

func (Base) AfterModifyPosition(Context, model.ModifyPositionParams, model.BalanceDelta) (Ack, error) {
	return AckAfterModifyPosition, nil
}

func (Base) BeforeSwap(Context, model.SwapParams) (Ack, *big.Int, error) {
	return AckBeforeSwap, nil, nil
}

func (Base) AfterSwap(Context, model.SwapParams, model.BalanceDelta) (Ack, error) {
	return AckAfterSwap, nil
}

func (Base) BeforeDonate(Context, *big.Int, *big.Int) (Ack, error) {
	return AckBeforeDonate, nil
}

func (Base) AfterDonate(Context, *big.Int, *big.Int) (Ack, error) {
	return AckAfterDonate, nil
}
