// Package ledger records batch pass runs and per-file attempts in a local
// SQLite database. The history command reads it back so operators can see
// what the last import or clean actually touched.
package ledger
