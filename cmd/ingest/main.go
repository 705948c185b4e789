// Command ingest normalizes a raw sales CSV or XLSX file into the data directory.
package main

import (
	"salesforecast/internal/app"
	"salesforecast/internal/operations"
)

func main() {
	app.Exit("ingest", operations.StageIDIngest)
}
