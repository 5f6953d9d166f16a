// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"fmt"
	"math/big"
	"os"
	"sort"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/snailbrook/staking/snail"
)

// Config is a user customized deployment.
type Config struct {
	Operator  snail.Address      `yaml:"operator"`
	Period    Period             `yaml:"period"`
	Pools     []Pool             `yaml:"pools"`
	Balances  map[string]*Amount `yaml:"balances"`
	BurnAdmin bool               `yaml:"burnAdmin"`
}

// Period is the staking window. A zero start means the time of deployment,
// and a zero end is derived from the duration.
type Period struct {
	Start    uint64 `yaml:"start"`
	End      uint64 `yaml:"end"`
	Duration uint64 `yaml:"duration"`
}

// Pool is a lock bucket with its optional multiplier and reward funding.
type Pool struct {
	Duration   uint64  `yaml:"duration"`
	Multiplier uint64  `yaml:"multiplier"`
	Rewards    *Amount `yaml:"rewards"`
}

// Balance is a seeded token balance.
type Balance struct {
	Address snail.Address
	Amount  *big.Int
}

// Amount reads big.Int as hex or decimal.
type Amount math.HexOrDecimal256

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (a *Amount) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", value.Line)
	}
	bigint, ok := math.ParseBig256(value.Value)
	if !ok {
		return fmt.Errorf("line %d: invalid hex or decimal integer %q", value.Line, value.Value)
	}
	*a = Amount(*bigint)
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface.
func (a Amount) MarshalYAML() (any, error) {
	return (*big.Int)(&a).String(), nil
}

// Int returns the amount as big.Int, zero for nil.
func (a *Amount) Int() *big.Int {
	if a == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(a))
}

// Parse decodes a YAML deployment.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads and decodes the YAML deployment at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis")
	}
	return Parse(data)
}

// Validate checks the parts of the config that do not depend on time.
func (c *Config) Validate() error {
	if c.Operator.IsZero() {
		return errors.New("operator must be set")
	}
	if c.Period.End == 0 && c.Period.Duration == 0 {
		return errors.New("period: either end or duration must be set")
	}
	if c.Period.End != 0 && c.Period.Duration != 0 {
		return errors.New("period: end and duration are exclusive")
	}
	if c.Period.End != 0 && c.Period.Start == 0 {
		return errors.New("period: end requires an explicit start")
	}
	for i, p := range c.Pools {
		if p.Duration == 0 {
			return fmt.Errorf("pool %d: duration must be positive", i)
		}
		if p.Multiplier != 0 && p.Multiplier <= snail.MultiplierBase {
			return fmt.Errorf("pool %d: multiplier must exceed %d", i, snail.MultiplierBase)
		}
		if p.Rewards != nil && p.Rewards.Int().Sign() < 0 {
			return fmt.Errorf("pool %d: rewards must not be negative", i)
		}
	}
	if _, err := c.SortedBalances(); err != nil {
		return err
	}
	return nil
}

// SortedBalances returns the seeded balances ordered by address.
func (c *Config) SortedBalances() ([]Balance, error) {
	balances := make([]Balance, 0, len(c.Balances))
	for s, amount := range c.Balances {
		addr, err := snail.ParseAddress(s)
		if err != nil {
			return nil, errors.Wrapf(err, "balance %q", s)
		}
		if amount == nil || amount.Int().Sign() < 1 {
			return nil, fmt.Errorf("%s: balance must be a non-zero integer", addr)
		}
		balances = append(balances, Balance{addr, amount.Int()})
	}
	sort.Slice(balances, func(i, j int) bool {
		return string(balances[i].Address.Bytes()) < string(balances[j].Address.Bytes())
	})
	return balances, nil
}

// Bounds resolves the staking period against the deployment time.
func (p Period) Bounds(now uint64) (start, end uint64) {
	start = p.Start
	if start == 0 {
		start = now
	}
	end = p.End
	if end == 0 {
		end = start + p.Duration
	}
	return start, end
}
