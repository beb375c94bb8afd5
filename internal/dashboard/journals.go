package dashboard

import (
	"encoding/json"
	"fmt"
	"os"
)

// JournalAllowList is the set of bank journal display names the
// banking merge accepts. Each configured name is also matched with its
// " (ETB)" currency-suffixed variant.
type JournalAllowList map[string]struct{}

// LoadJournalAllowList reads the allow-list resource, a JSON array of
// journal display names.
func LoadJournalAllowList(path string) (JournalAllowList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal allow-list: %w", err)
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("failed to parse journal allow-list %s: %w", path, err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("journal allow-list %s is empty", path)
	}

	return NewJournalAllowList(names), nil
}

// NewJournalAllowList builds the set from raw names, adding the
// currency-suffixed variant for each.
func NewJournalAllowList(names []string) JournalAllowList {
	list := make(JournalAllowList, len(names)*2)
	for _, name := range names {
		list[name] = struct{}{}
		list[name+" (ETB)"] = struct{}{}
	}
	return list
}

// Contains reports whether a journal display name is allow-listed.
func (l JournalAllowList) Contains(name string) bool {
	_, ok := l[name]
	return ok
}

// Names returns every accepted name, including the currency variants.
func (l JournalAllowList) Names() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	return names
}
