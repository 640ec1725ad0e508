package upload

import "encoding/json"

// The upload endpoint has returned several response shapes over time. URL
// extraction is an ordered list of strategies tried in sequence so new
// shapes can be added without touching calling code.

// extractStrategy pulls a usable URL out of a decoded response body.
// storageBase is the host used to build URLs from path-style fields.
type extractStrategy func(body map[string]any, storageBase string) (string, bool)

var strategies = []extractStrategy{
	extractDirectURL,
	extractPathURL,
}

// urlFields are field names that carry a complete URL, in lookup order.
var urlFields = []string{"url", "URL"}

// pathFields are field names that carry a storage path needing URL
// construction, in lookup order.
var pathFields = []string{"path", "filePath"}

// ExtractURL resolves the upload URL from a decoded response body, trying
// each strategy in order. Returns false when no strategy matches.
func ExtractURL(body map[string]any, storageBase string) (string, bool) {
	for _, strategy := range strategies {
		if url, ok := strategy(body, storageBase); ok {
			return url, true
		}
	}
	return "", false
}

// extractDirectURL handles url / data.url / URL / data.URL shapes.
func extractDirectURL(body map[string]any, _ string) (string, bool) {
	for _, field := range urlFields {
		if url, ok := stringField(body, field); ok {
			return url, true
		}
	}
	return "", false
}

// extractPathURL handles path / data.path / filePath / data.filePath shapes
// by joining the path onto the storage host.
func extractPathURL(body map[string]any, storageBase string) (string, bool) {
	for _, field := range pathFields {
		if path, ok := stringField(body, field); ok {
			return storageBase + path, true
		}
	}
	return "", false
}

// stringField looks up a non-empty string at body[name] or body["data"][name].
func stringField(body map[string]any, name string) (string, bool) {
	if s, ok := body[name].(string); ok && s != "" {
		return s, true
	}
	if data, ok := body["data"].(map[string]any); ok {
		if s, ok := data[name].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// stringifyBody renders the decoded body back to compact JSON. Used as the
// last-resort "URL" when no strategy matches; callers must tolerate non-URL
// content here until the server fixes its response content type.
func stringifyBody(body map[string]any) string {
	data, err := json.Marshal(body)
	if err != nil {
		return ""
	}
	return string(data)
}
