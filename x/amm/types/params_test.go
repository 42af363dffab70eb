package types_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/tmsdkeys/pairpool/x/amm/types"
)

func TestParamsValidate_Default(t *testing.T) {
	params := types.DefaultParams()
	require.NoError(t, params.Validate())
	require.Equal(t, uint64(997), params.FeeNumerator)
	require.Equal(t, uint64(1000), params.FeeDenominator)
	require.Equal(t, math.NewInt(1000), params.MinimumSharesLock)
}

func TestParamsValidate_ZeroDenominator(t *testing.T) {
	params := types.DefaultParams()
	params.FeeDenominator = 0
	require.ErrorIs(t, params.Validate(), types.ErrInvalidInput)
}

func TestParamsValidate_NumeratorAboveDenominator(t *testing.T) {
	params := types.DefaultParams()
	params.FeeNumerator = 1001
	require.ErrorIs(t, params.Validate(), types.ErrInvalidInput)
}

func TestParamsValidate_ZeroFee(t *testing.T) {
	// fee numerator == denominator means no fee; still valid.
	params := types.DefaultParams()
	params.FeeNumerator = params.FeeDenominator
	require.NoError(t, params.Validate())
}

func TestParamsValidate_NonPositiveLock(t *testing.T) {
	params := types.DefaultParams()
	params.MinimumSharesLock = math.ZeroInt()
	require.ErrorIs(t, params.Validate(), types.ErrInvalidInput)
}
