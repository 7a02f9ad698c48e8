package main

// Example command that loads the windowed dataset with the default
// configuration and walks one epoch of gomlx batches.
//
// Usage:
//   go run ./datasets/example
//
// Note: on the first run this expects the subject CSVs under
// ../parkinson_data/train/{defog,tdcsfog}. Later runs are served from the
// cache in ./files/len_62.

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/Noofbiz/gaitFreeze/datasets"
)

func main() {
	ds, err := datasets.Load(datasets.Config{
		DefogDir:   "../parkinson_data/train/defog",
		TdcsfogDir: "../parkinson_data/train/tdcsfog",
		BatchSize:  64,
	})
	if err != nil {
		log.Fatalf("failed to load windowed dataset: %v", err)
	}
	fmt.Printf("Total windows available: %d (window_len=%d)\n", ds.Len(), ds.WindowLen())

	if ds.Len() == 0 {
		return
	}
	item, err := ds.Get(0)
	if err != nil {
		log.Fatalf("failed to read window 0: %v", err)
	}
	fmt.Printf("  Value shape:  %v\n", item.Value.Shape())
	fmt.Printf("  Target shape: %v\n", item.Target.Shape())
	fmt.Printf("  Mask shape:   %v\n", item.Mask.Shape())

	ds.Shuffle(42)
	batches := 0
	for {
		_, inputs, labels, err := ds.Yield()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Fatalf("failed to yield batch %d: %v", batches, err)
		}
		if batches == 0 {
			fmt.Printf("First batch: inputs=%v,%v labels=%v\n", inputs[0].Shape(), inputs[1].Shape(), labels[0].Shape())
		}
		batches++
	}
	fmt.Printf("Yielded %d batches in one epoch\n", batches)
}
