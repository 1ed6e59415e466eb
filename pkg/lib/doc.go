// Package lib provides a Go SDK to generate maintenance methods in process,
// without running the mmgen server.
//
// Jobs go through the same lifecycle as on the server: they are created
// pending, processed by the knowledge base generator and end completed (with
// the method) or failed (with an error message).
//
// # Quick Start
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	job, err := client.Generate(ctx, lib.CreateJobOpts{
//	    Query: "Annual maintenance of the main distribution board serving the plant room.",
//	    Equipment: lib.EquipmentDetails{
//	        EquipmentType: "Distribution board",
//	        Location:      "Plant room",
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, s := range job.Method.Steps {
//	    fmt.Println(s.StepNumber, s.Title)
//	}
//
// # Storage
//
// Jobs are stored in SQLite (~/.mmgen/mmgen.db by default). Set
// [Config.InMemory] to keep them in memory, useful for tests and one-off
// scripts.
//
// # Errors
//
// Errors can be checked with [errors.Is] against [ErrNotFound],
// [ErrAlreadyExists] and [ErrNotValid].
package lib
