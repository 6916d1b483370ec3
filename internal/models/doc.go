// package models defines the data model shared across the sync pipeline.
//
// FileRecord is the immutable snapshot of a Drive file at discovery time,
// Album and MediaItem describe Photos-side entities, and SyncResult is the
// per-file outcome accumulated into a SyncRun.
package models
