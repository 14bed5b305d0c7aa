package repository

import (
	"fmt"
	"strings"

	"github.com/fastygo/crm-reports/pkg/sqlbuilder"
)

// Entity names a logical CRM table.
type Entity string

const (
	EntityCustomers       Entity = "customers"
	EntityPolicies        Entity = "policies"
	EntityRepresentatives Entity = "representatives"
	EntityOffers          Entity = "offers"
	EntityTasks           Entity = "tasks"
)

// Entities lists every logical table the reports read.
var Entities = []Entity{EntityCustomers, EntityPolicies, EntityRepresentatives, EntityOffers, EntityTasks}

const DefaultTablePrefix = "crm_"

// Schema maps logical entities to physical table names. Table names are the
// only fragments concatenated into statement text, so the prefix is validated
// as an identifier up front.
type Schema struct {
	prefix string
}

// NewSchema validates prefix. An empty prefix selects DefaultTablePrefix.
func NewSchema(prefix string) (Schema, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultTablePrefix
	}
	if !sqlbuilder.ValidIdentifier(prefix+"x") || strings.Contains(prefix, ".") {
		return Schema{}, fmt.Errorf("invalid table prefix %q", prefix)
	}
	return Schema{prefix: prefix}, nil
}

// MustSchema is NewSchema for static prefixes.
func MustSchema(prefix string) Schema {
	s, err := NewSchema(prefix)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Schema) Prefix() string {
	if s.prefix == "" {
		return DefaultTablePrefix
	}
	return s.prefix
}

// Table returns the physical name of e.
func (s Schema) Table(e Entity) string {
	return s.Prefix() + string(e)
}
