package feed

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Attachment is the media part of a record.
type Attachment struct {
	Category    string `json:"category"`
	URL         string `json:"url"`
	MimeType    string `json:"mime_type"`
	SizeInBytes int64  `json:"size_in_bytes"`
}

// Record is the service's view of one item.
type Record struct {
	ID         ID          `json:"id"`
	Title      string      `json:"title"`
	Status     string      `json:"status"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// Credential is a single-use upload authorization for one file.
type Credential struct {
	UploadURL string `json:"presigned_url"`
	MediaURL  string `json:"media_url"`
}

// ID is an opaque record identifier. The service may send it as a JSON
// string or number; both decode to the same text.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("record id: %w", err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("record id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

type createRecordRequest struct {
	Title  string `json:"title"`
	Status string `json:"status"`
}

type createRecordResponse struct {
	ID ID `json:"id"`
}

type credentialRequest struct {
	ItemID            string `json:"item_id"`
	Category          string `json:"category"`
	FullLocalFilePath string `json:"full_local_file_path"`
}

type finalizeRequest struct {
	Title      string     `json:"title"`
	Status     string     `json:"status"`
	Attachment Attachment `json:"attachment"`
}
