package postgres

// rowScanner is satisfied by both pgx.Row and pgx.Rows, so scan helpers
// work for single-row queries and result sets alike.
type rowScanner interface {
	Scan(dest ...any) error
}
