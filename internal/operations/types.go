package operations

// Pipeline step identifiers
const (
	StepIDJoinedTable = "joined_table"
	StepIDExport      = "export"
	StepIDReport      = "report"
)

// Pipeline step names
const (
	StepNameJoinedTable = "Joined Table"
	StepNameExport      = "Workbook Export"
	StepNameReport      = "Charts and Regression"
)

// Context keys for operation state
const (
	ContextKeyJoinedTable  = "joined_table"
	ContextKeyCacheOutcome = "cache_outcome"
	ContextKeyReport       = "report"
)

// previewRows is how many joined rows are echoed at debug level
const previewRows = 5
