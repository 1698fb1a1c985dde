// Package journal keeps a local SQLite ledger of upload runs and of the
// outcome of every file in them.
//
// # Overview
//
// A run is one pass over a folder. Each processed file adds an upload row
// and bumps the run's counters in the same transaction. Uploads whose bytes
// reached storage but whose record was never finalized are flagged as
// orphaned so they can be found and cleaned up by hand later.
//
// Typical Usage
//
//	j, _ := journal.Open(ctx, "feedupload.db", logger)
//	defer j.Close()
//	run, _ := j.StartRun(ctx, folder, len(targets))
//	_ = j.RecordResult(ctx, run.ID, upload)
//	_ = j.FinishRun(ctx, run.ID)
//	orphans, _ := j.ListOrphans(ctx)
package journal
