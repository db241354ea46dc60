// Package conflict decides which of two versions of the same word wins.
//
// Every store consults a Resolver instead of comparing timestamps itself, so
// the ordering scheme can change (vector clocks, server-assigned versions)
// without touching the call sites.
package conflict

import (
	"fmt"

	"gorm.io/gorm/clause"
)

// Resolver is a last-write-wins rule over modification timestamps.
type Resolver interface {
	// Wins reports whether an incoming version replaces the stored one.
	Wins(incoming, stored string) bool
	// Guard renders Wins as a SQL predicate for a conditional upsert, where
	// the incoming row is the EXCLUDED pseudo-table and the stored row lives
	// in table.
	Guard(table, column string) clause.Expression
}

// LastWriteWins compares timestamps as opaque strings. Clients must send a
// fixed-width sortable format (ISO-8601, "2006-01-02 15:04:05") for byte
// order to agree with time order. Ties keep the stored version.
type LastWriteWins struct{}

func (LastWriteWins) Wins(incoming, stored string) bool {
	return Later(incoming, stored)
}

func (LastWriteWins) Guard(table, column string) clause.Expression {
	return clause.Expr{SQL: fmt.Sprintf("excluded.%s > %s.%s", column, table, column)}
}

// Default is the resolver used when none is configured.
var Default Resolver = LastWriteWins{}

// After reports whether modified is strictly newer than checkpoint. An empty
// checkpoint means the client has never synced, so everything is after it.
func After(modified, checkpoint string) bool {
	if checkpoint == "" {
		return true
	}
	return Later(modified, checkpoint)
}

// Later reports whether timestamp a orders strictly after b. It is the one
// ordering every timestamp comparison goes through.
func Later(a, b string) bool {
	return a > b
}
