// Command analytics writes the KPI summary and segment breakdowns from the cleaned history.
package main

import (
	"salesforecast/internal/app"
	"salesforecast/internal/operations"
)

func main() {
	app.Exit("analytics", operations.StageIDAnalytics)
}
