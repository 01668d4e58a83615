package logs

// filterFlags are the filter inputs shared by list, export, dashboard and browse.
type filterFlags struct {
	startDate string
	endDate   string
	severity  string
	source    string
	lastWeek  bool
}

// outputFlags pick how results are printed.
type outputFlags struct {
	format string
	jq     string
}

type listFlags struct {
	filterFlags
	outputFlags
	page int
}

type recordFlags struct {
	message  string
	severity string
	source   string
	outputFlags
}

type exportFlags struct {
	filterFlags
	out  string
	zstd bool
}

// OutputOptions are resolved output settings.
type OutputOptions struct {
	Format string // table, json or yaml
	Query  string // gojq expression applied to the JSON form
}
