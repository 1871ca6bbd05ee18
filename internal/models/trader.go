package models

// Trader is one tracked wallet from the static roster. Address is the
// lowercase 0x-prefixed proxy wallet and is the unique key everywhere.
type Trader struct {
	Address string `json:"address"`
	Label   string `json:"label"`
	Tier    string `json:"tier"`
}
