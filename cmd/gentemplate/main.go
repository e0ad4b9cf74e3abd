package main

import (
	"flag"
	"fmt"
	"os"

	"pdp-recon/internal/report/word"
)

func main() {
	out := flag.String("o", "template.docx", "Where to write the template")
	flag.Parse()

	data, err := word.Template()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build template: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (placeholders %s %s %s %s)\n", *out,
		word.PlaceholderDate, word.PlaceholderScope, word.PlaceholderProducts, word.PlaceholderContent)
}
