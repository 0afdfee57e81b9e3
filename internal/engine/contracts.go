package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/types"
)

var ErrUnknownContract = errors.New("unknown contract")
var ErrInvalidProduct = errors.New("invalid product definition")

const productCodeLen = 3

// maxContractSize keeps MaxQuantity contracts of any product within int64 units.
const maxContractSize = 1_000_000_000

// UnknownContractError is returned when a symbol's product prefix has no entry
// in the registry. There is no fallback contract size.
type UnknownContractError struct {
	Symbol string
}

func (e *UnknownContractError) Error() string {
	return fmt.Sprintf("contract %q: no product registered for its prefix", e.Symbol)
}

func (e *UnknownContractError) Is(target error) bool {
	return target == ErrUnknownContract
}

// Registry maps product codes to their metadata. It is read-only after
// construction and safe for concurrent use.
type Registry struct {
	products map[string]types.Product
}

func NewRegistry(products ...types.Product) (*Registry, error) {
	r := &Registry{products: make(map[string]types.Product, len(products))}
	for _, p := range products {
		code := strings.ToUpper(strings.TrimSpace(p.Code))
		if len(code) != productCodeLen {
			return nil, fmt.Errorf("product code %q: %w", p.Code, ErrInvalidProduct)
		}
		if p.ContractSize <= 0 || p.ContractSize > maxContractSize {
			return nil, fmt.Errorf("product %s contract size %d: %w", code, p.ContractSize, ErrInvalidProduct)
		}
		if _, dup := r.products[code]; dup {
			return nil, fmt.Errorf("duplicate product %s: %w", code, ErrInvalidProduct)
		}
		p.Code = code
		r.products[code] = p
	}
	return r, nil
}

func DefaultProducts() []types.Product {
	return []types.Product{
		{Code: "BGI", Name: "Boi Gordo", ContractSize: 330},
		{Code: "CCM", Name: "Milho", ContractSize: 450},
	}
}

func DefaultRegistry() *Registry {
	r, _ := NewRegistry(DefaultProducts()...)
	return r
}

// Resolve finds the product for a contract symbol such as "BGIV25" by its
// first three characters.
func (r *Registry) Resolve(symbol string) (types.Product, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if len(s) < productCodeLen {
		return types.Product{}, &UnknownContractError{Symbol: symbol}
	}
	p, ok := r.products[s[:productCodeLen]]
	if !ok {
		return types.Product{}, &UnknownContractError{Symbol: symbol}
	}
	return p, nil
}

func (r *Registry) ContractSize(symbol string) (int64, error) {
	p, err := r.Resolve(symbol)
	if err != nil {
		return 0, err
	}
	return p.ContractSize, nil
}

func (r *Registry) Products() []types.Product {
	out := make([]types.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
