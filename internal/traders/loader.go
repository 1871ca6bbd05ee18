package traders

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"whaletrack/internal/models"
)

// LoadCSV reads the static trader roster. Expected columns are
// address,label,tier with an optional header row. Addresses are lowercased
// and must be unique 42-character 0x hex strings.
func LoadCSV(path string) ([]models.Trader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trader roster: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse trader roster %s: %w", path, err)
	}

	out := make([]models.Trader, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, rec := range records {
		if len(rec) == 0 {
			continue
		}
		addr := strings.ToLower(strings.TrimSpace(rec[0]))
		if i == 0 && !strings.HasPrefix(addr, "0x") {
			// Header row.
			continue
		}
		if err := validateAddress(addr); err != nil {
			return nil, fmt.Errorf("trader roster %s line %d: %w", path, i+1, err)
		}
		if _, dup := seen[addr]; dup {
			return nil, fmt.Errorf("trader roster %s line %d: duplicate address %s", path, i+1, addr)
		}
		seen[addr] = struct{}{}

		t := models.Trader{Address: addr}
		if len(rec) > 1 {
			t.Label = strings.TrimSpace(rec[1])
		}
		if len(rec) > 2 {
			t.Tier = strings.TrimSpace(rec[2])
		}
		out = append(out, t)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("trader roster %s has no traders", path)
	}
	return out, nil
}

func validateAddress(addr string) error {
	if len(addr) != 42 || !strings.HasPrefix(addr, "0x") {
		return fmt.Errorf("invalid address %q: want 0x-prefixed 42-char hex", addr)
	}
	for _, c := range addr[2:] {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return fmt.Errorf("invalid address %q: non-hex character", addr)
		}
	}
	return nil
}
