package types

// ConsoleInterface defines the interface for terminal output.
type ConsoleInterface interface {
	Print(a ...interface{})
	Printf(format string, a ...interface{})
	Println(a ...interface{})

	LogInfo(format string, a ...interface{})
	LogWarning(format string, a ...interface{})
	LogError(format string, a ...interface{})
	LogSuccess(format string, a ...interface{})

	Status(message string) StatusHandle
	Progress(items []string) ProgressHandle
	ProgressWithTotal(total int) ProgressHandle

	CreateTable() TableInterface
	DisplayTrendBars(points []TrendPoint)
}

// StatusHandle updates a live status message.
type StatusHandle interface {
	Update(message string)
	Stop()
}

// ProgressHandle updates a progress bar.
type ProgressHandle interface {
	Increment()
	Stop()
}

// TableInterface defines the interface for building and rendering tables.
type TableInterface interface {
	AddColumn(name string, options ...interface{})
	AddRow(cells ...interface{})
	Render() string
}

// TrendPoint is one bucket of a trend chart. ChangePercent is nil for
// the first bucket, where no prior period exists to compare against.
type TrendPoint struct {
	Period        string   `json:"period"`
	Cost          float64  `json:"cost"`
	ChangePercent *float64 `json:"change_percent,omitempty"`
}
