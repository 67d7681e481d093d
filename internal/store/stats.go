package store

// Stats holds storage statistics.
type Stats struct {
	Backend   string `json:"backend"`
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	Entries   int    `json:"entries"`
	MaxSize   int    `json:"max_size"`
}
