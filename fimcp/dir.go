package fimcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"
)

// DirFetcher serves payloads from a fixture tree laid out as
// <dir>/<phone number>/<tool>.json.
type DirFetcher struct {
	dir   string
	phone string
}

// NewDirFetcher binds a fixture directory to one of the phone numbers it holds.
func NewDirFetcher(dir, phone string) (*DirFetcher, error) {
	if !lo.Contains(AllowedPhoneNumbers(dir), phone) {
		return nil, fmt.Errorf("phone number %q is not allowed in %s", phone, dir)
	}
	return &DirFetcher{dir: dir, phone: phone}, nil
}

func (f *DirFetcher) Fetch(ctx context.Context, tool string, _ map[string]any) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !IsRemoteTool(tool) {
		return nil, fmt.Errorf("unknown data tool %q", tool)
	}
	data, err := os.ReadFile(filepath.Join(f.dir, f.phone, tool+".json"))
	if err != nil {
		return nil, fmt.Errorf("read %s fixture: %w", tool, err)
	}
	return json.RawMessage(data), nil
}

// AllowedPhoneNumbers returns the directory names under dir.
func AllowedPhoneNumbers(dir string) []string {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var numbers []string
	for _, entry := range dirEntries {
		if entry.IsDir() {
			numbers = append(numbers, entry.Name())
		}
	}
	return numbers
}
