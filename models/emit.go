package models

import "time"

// EmitRecord describes one successful manifest write.
type EmitRecord struct {
	EmitID         string
	CreatedAt      time.Time
	OutputPath     string
	Mode           OutputMode
	PublicPath     string
	BuildHash      string
	AssetCount     int
	ManifestChunks []string
	ContentHash    string
	SizeBytes      int64
}
