package models

// AnalysisRequest is the JSON body accepted by POST /analyze. Front and
// back images are encoded payloads: data URIs, raw base64, or URLs
// (http(s) or an Azure blob reference). BackImage may be empty, in which
// case only text metadata is extracted and all numeric scores are zero.
type AnalysisRequest struct {
	FrontImage   string `json:"front_image" binding:"required"`
	BackImage    string `json:"back_image,omitempty"`
	ExpectedName string `json:"expected_name,omitempty"`
}

// ErrorResponse is the JSON shape for request failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
