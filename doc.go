// Package folio computes the analytics of a multi-currency investment
// portfolio held across several accounts.
//
// A Book holds the records: accounts, securities, transactions, currency
// exchanges, prices and exchange rate quotes. An Analyzer reads a Book and
// derives everything else, nothing is stored:
//   - FX rates between any two currencies, chaining quoted pairs.
//   - Positions, average buy-in prices, realized and unrealized gains split
//     into price appreciation and currency effect.
//   - Net asset values of a scope of accounts, broken down by asset type,
//     currency, asset class or account.
//   - Money weighted returns (IRR) of a scope or a single security.
//   - Performance records explaining the change of NAV over a period, and
//     multi-year summaries of them.
//
// Amounts are decimals, reported as Money rounded to the cent. The book is
// read-only for the analyzer: call Invalidate after adding records.
//
// This package is the foundational logic of the `fa` command-line tool.
package folio
