package domain

import "time"

// ClosePrice is one daily close observation for a security or factor
// instrument. Corresponds to the close_prices table in ClickHouse.
type ClosePrice struct {
	Symbol string
	Date   time.Time
	Close  float64
}

// PortfolioMembership is one accepted (factor, security) pair. Corresponds
// to the portfolio_memberships table in Postgres. Membership rows are
// write-once; a run only ever appends.
type PortfolioMembership struct {
	RunID    string
	Factor   string
	Security string
}

// ModelRecord is the persisted form of an accepted model together with its
// out-of-sample errors.
type ModelRecord struct {
	RunID      string
	Security   string
	Factors    []string
	AdjR2      float64
	MSE        float64
	MSERegular float64
	AcceptedAt time.Time
}
