package lib_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/elecmate/mmgen/pkg/lib"
)

// This example generates a method in memory.
func Example_generate() {
	ctx := context.Background()

	client, err := lib.New(ctx, lib.Config{InMemory: true})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	job, err := client.Generate(ctx, lib.CreateJobOpts{
		Query: "Annual maintenance of the main distribution board serving the plant room.",
		Equipment: lib.EquipmentDetails{
			EquipmentType: "Distribution board",
			Location:      "Plant room",
		},
	})
	if err != nil {
		panic(err)
	}

	fmt.Println(job.Status)
	fmt.Println(job.Method.Title)

	// Output:
	// completed
	// Distribution board maintenance - Distribution board
}

// This example shows how to check SDK errors.
func Example_errorHandling() {
	ctx := context.Background()

	client, err := lib.New(ctx, lib.Config{InMemory: true})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	_, err = client.CreateJob(ctx, lib.CreateJobOpts{Query: "Check the board."})
	fmt.Println(errors.Is(err, lib.ErrNotValid))

	_, err = client.GetJob(ctx, "01HZY3J5X6QK7W8N9P0R1S2T3V")
	fmt.Println(errors.Is(err, lib.ErrNotFound))

	// Output:
	// true
	// true
}
