package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ProfitShare - именованная доля чистой прибыли в процентах
type ProfitShare struct {
	Name    string `json:"name"`
	Percent int    `json:"percent"`
}

// ProfitSplitConfig - правило распределения чистой прибыли между владельцами
// Задается конфигурацией, а не зашивается в код; последняя доля считается
// резервом и забирает остаток округления
type ProfitSplitConfig struct {
	Shares []ProfitShare
}

// DefaultProfitSplit - распределение по умолчанию: три владельца и резерв
func DefaultProfitSplit() ProfitSplitConfig {
	return ProfitSplitConfig{Shares: []ProfitShare{
		{Name: "owner_a", Percent: 30},
		{Name: "owner_b", Percent: 30},
		{Name: "owner_c", Percent: 25},
		{Name: "reserve", Percent: 15},
	}}
}

// ParseProfitShares разбирает строку вида "owner_a:30,owner_b:30,owner_c:25,reserve:15"
func ParseProfitShares(raw string) (ProfitSplitConfig, error) {
	var cfg ProfitSplitConfig
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, pctStr, found := strings.Cut(part, ":")
		if !found {
			return cfg, fmt.Errorf("доля %q: ожидается формат имя:процент", part)
		}
		pct, err := strconv.Atoi(strings.TrimSpace(pctStr))
		if err != nil {
			return cfg, fmt.Errorf("доля %q: процент не число: %w", part, err)
		}
		cfg.Shares = append(cfg.Shares, ProfitShare{Name: strings.TrimSpace(name), Percent: pct})
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate проверяет, что доли заданы и в сумме дают ровно 100%
func (c ProfitSplitConfig) Validate() error {
	if len(c.Shares) == 0 {
		return fmt.Errorf("распределение прибыли пустое")
	}
	sum := 0
	for _, share := range c.Shares {
		if share.Name == "" {
			return fmt.Errorf("доля без имени")
		}
		if share.Percent < 0 || share.Percent > 100 {
			return fmt.Errorf("доля %q: процент %d вне диапазона 0..100", share.Name, share.Percent)
		}
		sum += share.Percent
	}
	if sum != 100 {
		return fmt.Errorf("сумма долей %d%%, должна быть 100%%", sum)
	}
	return nil
}

// ShareAllocation - рассчитанная доля в деньгах
type ShareAllocation struct {
	Name    string          `json:"name"`
	Percent int             `json:"percent"`
	Amount  decimal.Decimal `json:"amount"`
}

// Allocate распределяет чистую прибыль по долям
// Каждая доля округляется до копеек, остаток округления уходит в последнюю
// долю (резерв), поэтому сумма долей всегда точно равна net
func (c ProfitSplitConfig) Allocate(net decimal.Decimal) []ShareAllocation {
	allocations := make([]ShareAllocation, len(c.Shares))
	hundred := decimal.NewFromInt(100)

	distributed := decimal.Zero
	for i, share := range c.Shares {
		if i == len(c.Shares)-1 {
			allocations[i] = ShareAllocation{
				Name:    share.Name,
				Percent: share.Percent,
				Amount:  net.Sub(distributed),
			}
			break
		}
		amount := net.Mul(decimal.NewFromInt(int64(share.Percent))).Div(hundred).Round(2)
		allocations[i] = ShareAllocation{Name: share.Name, Percent: share.Percent, Amount: amount}
		distributed = distributed.Add(amount)
	}
	return allocations
}
