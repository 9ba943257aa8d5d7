package bank

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed describes the state the bank boots with.
type Seed struct {
	Base         string          `yaml:"base"`
	Admin        string          `yaml:"admin"`
	DefaultPrice decimal.Decimal `yaml:"defaultPrice"`
	CreationFee  decimal.Decimal `yaml:"creationFee"`
	Currencies   []SeedCurrency  `yaml:"currencies"`
	Accounts     []SeedAccount   `yaml:"accounts"`
}

type SeedCurrency struct {
	Code  string          `yaml:"code"`
	Rate  decimal.Decimal `yaml:"rate"`
	Label string          `yaml:"label"`
	Link  string          `yaml:"link"`
}

type SeedAccount struct {
	Username string                     `yaml:"username"`
	Password string                     `yaml:"password"`
	Balances map[string]decimal.Decimal `yaml:"balances"`
	Holdings map[string]decimal.Decimal `yaml:"holdings"`
}

// DefaultSeed returns the built-in bootstrap state: an administrator and one
// customer holding CAD and USD.
func DefaultSeed() Seed {
	s, err := DecodeSeed(bytes.NewReader(defaultSeed))
	if err != nil {
		panic(fmt.Sprintf("embedded seed: %v", err))
	}
	return s
}

// LoadSeed reads a seed file, or returns DefaultSeed when path is empty.
func LoadSeed(path string) (Seed, error) {
	if path == "" {
		return DefaultSeed(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Seed{}, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()
	return DecodeSeed(f)
}

// DecodeSeed parses and validates a YAML seed document.
func DecodeSeed(r io.Reader) (Seed, error) {
	var s Seed
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	if err := s.validate(); err != nil {
		return Seed{}, err
	}
	return s, nil
}

func (s Seed) validate() error {
	if s.Base == "" {
		return errors.New("seed: base currency is required")
	}
	if s.Admin == "" {
		return errors.New("seed: admin username is required")
	}
	base := false
	for _, c := range s.Currencies {
		if c.Code == s.Base {
			if !c.Rate.Equal(decimal.NewFromInt(1)) {
				return fmt.Errorf("seed: base currency %s must have rate 1", s.Base)
			}
			base = true
		}
	}
	if !base {
		return fmt.Errorf("seed: base currency %s is not listed", s.Base)
	}
	seen := make(map[string]bool, len(s.Accounts))
	for _, a := range s.Accounts {
		if a.Username == "" || a.Password == "" {
			return errors.New("seed: accounts need a username and password")
		}
		if seen[a.Username] {
			return fmt.Errorf("seed: duplicate account %s", a.Username)
		}
		seen[a.Username] = true
	}
	return nil
}
