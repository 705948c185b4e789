// Command forecast fits the model on the daily series and writes the forecast exports.
package main

import (
	"salesforecast/internal/app"
	"salesforecast/internal/operations"
)

func main() {
	app.Exit("forecast", operations.StageIDForecast)
}
