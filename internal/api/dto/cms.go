package dto

// CMSInfoRequest is the JSON body of POST /api/v1/cms/info.
type CMSInfoRequest struct {
	// Data is the ContentInfo to interpret.
	Data BinaryData `json:"data"`

	// Mode is "cms" (default) or "cades".
	Mode string `json:"mode,omitempty"`

	// Language selects the text labels: "es" (default) or "en".
	Language string `json:"language,omitempty"`
}
