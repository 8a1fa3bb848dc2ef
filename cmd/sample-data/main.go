// Command sample-data writes a deterministic sample constituent dataset as
// JSON, for demos and for loading into downstream tools.
package main

import (
	"encoding/json"
	"flag"
	"os"
	"time"

	"donorpulse/internal/sampledata"
	"donorpulse/pkg/logger"
)

// Default generation constants.
const (
	defaultConstituents = 1000
	defaultSeed         = 42
)

func main() {
	var (
		count   = flag.Int("constituents", defaultConstituents, "Number of constituents to generate")
		seed    = flag.Int64("seed", defaultSeed, "Deterministic generation seed")
		asOf    = flag.String("as-of", "", "Reference time in RFC3339 (default: now, UTC)")
		outFile = flag.String("output", "", "Output file (default: stdout)")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	referenceTime := time.Now().UTC()
	if *asOf != "" {
		parsed, err := time.Parse(time.RFC3339, *asOf)
		if err != nil {
			os.Stderr.WriteString("invalid -as-of value: " + err.Error() + "\n")
			return
		}
		referenceTime = parsed.UTC()
	}

	constituents := sampledata.New(*seed, referenceTime).Constituents(*count)

	out := os.Stdout
	if *outFile != "" {
		f, err := os.Create(*outFile)
		if err != nil {
			os.Stderr.WriteString("failed to create output file: " + err.Error() + "\n")
			return
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(constituents); err != nil {
		os.Stderr.WriteString("failed to write dataset: " + err.Error() + "\n")
	}
}
