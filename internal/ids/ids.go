// Package ids generates sortable unique identifiers for database rows.
package ids

import "github.com/segmentio/ksuid"

// New returns a new KSUID string. KSUIDs sort by creation time, which
// keeps listing queries on primary keys in rough chronological order.
func New() string {
	return ksuid.New().String()
}
