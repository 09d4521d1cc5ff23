package model

// Document is a flexible map representing a JSON document.
// The documentID is the only required field for document identification.
// All other fields are accessed by their string keys and interpreted
// according to the index schema (config.IndexField).
type Document map[string]interface{}

// GetDocumentID returns the documentID if it's stored in the document map under "documentID" key.
func (d Document) GetDocumentID() (string, bool) {
	if id, ok := d["documentID"]; ok {
		if str, sok := id.(string); sok {
			if str != "" {
				return str, true
			}
		}
	}
	return "", false
}

// Has reports whether the document carries a non-nil value for the field.
func (d Document) Has(field string) bool {
	val, ok := d[field]
	return ok && val != nil
}
