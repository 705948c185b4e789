// Command pipeline runs ingest, analytics and forecast in order.
package main

import "salesforecast/internal/app"

func main() {
	app.Exit("pipeline")
}
