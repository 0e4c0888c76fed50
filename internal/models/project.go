// Package models defines the project metadata types shared by the index and
// its callers.
package models

// Project is one entry of the project index. LastModified is in epoch
// milliseconds.
type Project struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	LastModified int64    `json:"lastModified"`
	ItemCount    int      `json:"itemCount"`
	Tags         []string `json:"tags"`
}

// SearchHit is one full-text search result.
type SearchHit struct {
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
	Snippet   string `json:"snippet"`
}
