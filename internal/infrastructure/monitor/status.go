package monitor

import "time"

type Status struct {
	Database  bool      `json:"database"`
	Driver    string    `json:"driver"`
	Redis     bool      `json:"redis"`
	Exports   bool      `json:"exports"`
	Documents int       `json:"exported_documents"`
	LastCheck time.Time `json:"last_check"`
}
