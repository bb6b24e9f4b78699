// Package api contains API contract definitions for the Data Analysis Studio.
// Version v1 represents the current stable API version.
package api

// ExportRequest asks for the cleaned dataset and report of an analysis to
// be uploaded to an S3 bucket. The secret is accepted per request and never
// stored; Prefix and Region fall back to the configured defaults when empty.
type ExportRequest struct {
	Bucket          string `json:"bucket" validate:"required"`
	Prefix          string `json:"prefix"`
	Region          string `json:"region"`
	AccessKeyID     string `json:"access_key_id" validate:"required"`
	SecretAccessKey string `json:"secret_access_key" validate:"required"`
}

// ExportResponse returns the object locators of the two uploaded blobs.
type ExportResponse struct {
	DataURI   string `json:"data_uri"`
	ReportURI string `json:"report_uri"`
}
