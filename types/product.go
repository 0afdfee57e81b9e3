package types

// Product describes a futures product family, keyed by the first three
// characters of its contract symbols.
type Product struct {
	Code         string `json:"code" mapstructure:"code"`
	Name         string `json:"name" mapstructure:"name"`
	ContractSize int64  `json:"contractSize" mapstructure:"contract_size"`
}
