// Package common contains shared constants and sentinel errors used across
// feedupload components.
package common

// APIKeyHeaderName is the HTTP header that carries the feed API credential
// on every request to the feed service.
const APIKeyHeaderName = "X-MicrofeedAPI-Key"

// Folder names created next to the scanned files.
const (
	ProcessedDirName = "processed"
	TooLargeDirName  = "too_large"
)

// MediaCategoryVideo is the attachment category used for every upload.
const MediaCategoryVideo = "video"

// Record publication statuses understood by the feed service.
const (
	RecordStatusDraft     = "draft"
	RecordStatusPublished = "published"
)
