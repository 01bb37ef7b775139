package models

import "time"

// ObjectInfo describes one object in a bucket listing.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

type ListObjectsParams struct {
	Prefix string `query:"prefix"`
}

type ObjectKeyParams struct {
	Key string `path:"key"`
}

type ObjectsResponse struct {
	Objects []ObjectInfo `json:"objects"`
}

type BucketsResponse struct {
	Buckets []string `json:"buckets"`
}

// ConnectionStatus reports whether the configured bucket is reachable.
type ConnectionStatus struct {
	Status       string   `json:"status"`
	Message      string   `json:"message"`
	BucketExists bool     `json:"bucket_exists"`
	AllBuckets   []string `json:"all_buckets"`
}

type DeleteObjectResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
