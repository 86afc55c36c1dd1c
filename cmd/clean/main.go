// Command clean drops the columns of a flat measurement file whose
// missing-value fraction exceeds a threshold and writes the result back out.
package main

import (
	"flag"
	"fmt"
	"log"

	"helioscope/internal/loader"
)

func main() {
	in := flag.String("in", "", "input measurement file (.csv or .xlsx)")
	out := flag.String("out", "", "output CSV file")
	threshold := flag.Float64("threshold", 0.05, "max allowed fraction of missing data per column, in [0,1]")
	flag.Parse()

	if *in == "" || *out == "" {
		flag.Usage()
		log.Fatal("both -in and -out are required")
	}

	l := loader.New(".")
	t, err := l.LoadFile(*in)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", *in, err)
	}

	cleaned, err := t.DropHighMissing(*threshold)
	if err != nil {
		log.Fatalf("Failed to clean %s: %v", *in, err)
	}

	kept := make(map[string]bool, cleaned.NumColumns())
	for _, name := range cleaned.ColumnNames() {
		kept[name] = true
	}
	fractions := t.MissingFractions()
	for _, name := range t.ColumnNames() {
		if !kept[name] {
			fmt.Printf("dropped %s (%.1f%% missing)\n", name, fractions[name]*100)
		}
	}

	if err := loader.WriteCSV(cleaned, *out); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}
	fmt.Printf("wrote %s: %d rows, %d of %d columns kept\n",
		*out, cleaned.NumRows(), cleaned.NumColumns(), t.NumColumns())
}
