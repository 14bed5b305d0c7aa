package transport

import (
	"github.com/goccy/go-json"

	"github.com/fastygo/crm-reports/domain"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// ErrorBody is the error payload. Field names the offending input, if any.
type ErrorBody struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// ReportInfo describes a catalog entry for the current viewer.
type ReportInfo struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Aliases     []string `json:"aliases,omitempty"`
	Filters     []string `json:"filters"`
	Required    []string `json:"required,omitempty"`
	Restricted  bool     `json:"restricted"`
	Accessible  bool     `json:"accessible"`
}

// ExportResponse is the metadata of a stored document.
type ExportResponse struct {
	Document    *domain.ExportedDocument `json:"document"`
	DownloadURL string                   `json:"download_url"`
}
