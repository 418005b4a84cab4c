package ports

// SeriesReader provides read-only access to named numeric columns from
// tabular input (xlsx or csv). Implementations must return aligned series:
// every requested column parsed from the same rows, in file order.
type SeriesReader interface {
	// ListColumns returns the column headers available in the source
	ListColumns() ([]string, error)

	// ReadSeries parses the named columns as float64 series of equal length
	ReadSeries(names ...string) (map[string][]float64, error)
}
