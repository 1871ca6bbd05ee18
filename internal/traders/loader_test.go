package traders

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	addrA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	addrB = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "traders.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	return path
}

func TestLoadCSV_HeaderAndFields(t *testing.T) {
	path := writeRoster(t, "address,label,tier\n"+addrA+",Alpha Whale,whale\n"+addrB+",Beta\n")

	out, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len=%d want 2", len(out))
	}
	if out[0].Address != addrA || out[0].Label != "Alpha Whale" || out[0].Tier != "whale" {
		t.Fatalf("first=%+v", out[0])
	}
	if out[1].Address != addrB || out[1].Label != "Beta" || out[1].Tier != "" {
		t.Fatalf("second=%+v", out[1])
	}
}

func TestLoadCSV_NoHeader(t *testing.T) {
	path := writeRoster(t, addrA+",Alpha\n")

	out, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(out) != 1 {
		t.Fatalf("len=%d want 1", len(out))
	}
}

func TestLoadCSV_LowercasesAddresses(t *testing.T) {
	path := writeRoster(t, "0x"+strings.ToUpper(addrA[2:])+",Alpha\n")

	out, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if out[0].Address != addrA {
		t.Fatalf("address=%q want lowercase", out[0].Address)
	}
}

func TestLoadCSV_RejectsDuplicates(t *testing.T) {
	path := writeRoster(t, addrA+",Alpha\n"+addrA+",Again\n")
	if _, err := LoadCSV(path); err == nil {
		t.Fatalf("expected duplicate address error")
	}
}

func TestLoadCSV_RejectsInvalidAddress(t *testing.T) {
	for _, bad := range []string{
		"0x123",
		"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"0xzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz",
	} {
		path := writeRoster(t, bad+",Bad\n")
		if _, err := LoadCSV(path); err == nil {
			t.Fatalf("address %q accepted", bad)
		}
	}
}

func TestLoadCSV_EmptyRoster(t *testing.T) {
	path := writeRoster(t, "address,label,tier\n")
	if _, err := LoadCSV(path); err == nil {
		t.Fatalf("expected empty roster error")
	}
}

func TestLoadCSV_MissingFile(t *testing.T) {
	if _, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatalf("expected open error")
	}
}
