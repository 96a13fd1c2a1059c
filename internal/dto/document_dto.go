package dto

const MsgDocumentProcessed = "File uploaded and processed successfully"

type UploadDocumentRequest struct {
	FileName string `validate:"required,max=255"`
	Size     int64
	Data     []byte
}

type UploadDocumentResponse struct {
	DocumentId   string `json:"document_id"`
	FileName     string `json:"file_name"`
	ChunkCount   int    `json:"chunk_count"`
	IndexVersion uint64 `json:"index_version"`
}

// PublishSnapshotMessage asks the snapshot consumer to persist an index build.
type PublishSnapshotMessage struct {
	Version    uint64 `json:"version"`
	DocumentId string `json:"document_id"`
}
