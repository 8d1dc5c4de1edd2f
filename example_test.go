package topovec_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/topovec"
	"github.com/hupe1980/topovec/blobstore"
	"github.com/hupe1980/topovec/diagram"
	"github.com/hupe1980/topovec/kernel"
)

func exampleDiagrams() diagram.Batch {
	d := diagram.Diagram{
		{Birth: 0, Death: 1, Dim: 0},
		{Birth: 0, Death: 2, Dim: 0},
		{Birth: 0, Death: 3, Dim: 0},
		{Birth: 0, Death: 1, Dim: 1},
		{Birth: 0, Death: 4, Dim: 1},
	}
	return diagram.Batch{d, d}
}

// ExamplePersistenceEntropy computes one entropy per homology dimension.
func ExamplePersistenceEntropy() {
	pe, err := topovec.NewPersistenceEntropy()
	if err != nil {
		log.Fatal(err)
	}
	out, err := pe.FitTransform(context.Background(), exampleDiagrams())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%.4f %.4f\n", out.At(0, 0), out.At(0, 1))
	// Output: 1.4591 0.7219
}

// ExampleAmplitude reduces the per-dimension bottleneck amplitudes with
// the 2-norm.
func ExampleAmplitude() {
	a, err := topovec.NewAmplitude(topovec.WithMetric(kernel.Bottleneck))
	if err != nil {
		log.Fatal(err)
	}
	out, err := a.FitTransform(context.Background(), exampleDiagrams())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%.2f %.2f\n", out.At(0, 0), out.At(0, 1))

	b, err := topovec.NewAmplitude(topovec.WithMetric(kernel.Bottleneck), topovec.WithOrder(2))
	if err != nil {
		log.Fatal(err)
	}
	out, err = b.FitTransform(context.Background(), exampleDiagrams())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%.2f\n", out.At(0, 0))
	// Output:
	// 1.50 2.00
	// 2.50
}

// ExampleSaveModel persists a fitted estimator and reopens it by name.
func ExampleSaveModel() {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	pe, err := topovec.NewPersistenceEntropy()
	if err != nil {
		log.Fatal(err)
	}
	if err := pe.Fit(ctx, exampleDiagrams()); err != nil {
		log.Fatal(err)
	}
	if err := topovec.SaveModel(ctx, store, "entropy.model", pe); err != nil {
		log.Fatal(err)
	}

	m, err := topovec.OpenModel(ctx, store, "entropy.model")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%T %v\n", m, m.HomologyDimensions())
	// Output: *topovec.PersistenceEntropy [0 1]
}
