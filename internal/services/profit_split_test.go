package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseProfitShares(t *testing.T) {
	cfg, err := ParseProfitShares("owner_a:40, owner_b:40, reserve:20")
	require.NoError(t, err)
	require.Len(t, cfg.Shares, 3)
	require.Equal(t, ProfitShare{Name: "owner_a", Percent: 40}, cfg.Shares[0])
	require.Equal(t, ProfitShare{Name: "reserve", Percent: 20}, cfg.Shares[2])
}

func TestParseProfitSharesRejectsBadInput(t *testing.T) {
	_, err := ParseProfitShares("owner_a:50,owner_b:40")
	require.Error(t, err) // Сумма 90, а не 100

	_, err = ParseProfitShares("owner_a=50,owner_b=50")
	require.Error(t, err)

	_, err = ParseProfitShares("owner_a:abc,owner_b:50")
	require.Error(t, err)

	_, err = ParseProfitShares("")
	require.Error(t, err)
}

func TestAllocateExactSum(t *testing.T) {
	cfg := DefaultProfitSplit()
	net := dec("100.01")

	allocations := cfg.Allocate(net)
	require.Len(t, allocations, 4)
	requireDecimal(t, "30.00", allocations[0].Amount)
	requireDecimal(t, "30.00", allocations[1].Amount)
	requireDecimal(t, "25.00", allocations[2].Amount)
	// Резерв забирает остаток округления
	requireDecimal(t, "15.01", allocations[3].Amount)

	sum := decimal.Zero
	for _, a := range allocations {
		sum = sum.Add(a.Amount)
	}
	require.True(t, sum.Equal(net))
}

func TestAllocateNegativeNet(t *testing.T) {
	cfg := DefaultProfitSplit()
	allocations := cfg.Allocate(dec("-100"))

	sum := decimal.Zero
	for _, a := range allocations {
		sum = sum.Add(a.Amount)
	}
	requireDecimal(t, "-100", sum)
	requireDecimal(t, "-30", allocations[0].Amount)
}
