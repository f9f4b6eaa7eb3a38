package domain

// uploadsKey is the auxiliary profile key holding the uploads ledger. It is
// not a collectible field: the selector and progress calculator ignore it.
const uploadsKey = "uploads"

// Upload records one user-provided document URL for a checklist item.
type Upload struct {
	URL        string `json:"url"`
	UploadedAt int64  `json:"uploaded_at"`
}

// Uploads returns the uploads ledger keyed by checklist item ID. JSON
// round-trips degrade the ledger to map[string]any, so both shapes are
// accepted. Never returns nil.
func (p Profile) Uploads() map[string]Upload {
	out := make(map[string]Upload)
	switch v := p[uploadsKey].(type) {
	case map[string]Upload:
		for k, u := range v {
			out[k] = u
		}
	case map[string]any:
		for k, raw := range v {
			entry, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			u := Upload{}
			if s, ok := entry["url"].(string); ok {
				u.URL = s
			}
			switch ts := entry["uploaded_at"].(type) {
			case float64:
				u.UploadedAt = int64(ts)
			case int64:
				u.UploadedAt = ts
			}
			out[k] = u
		}
	}
	return out
}

// SetUpload records or replaces the upload for a checklist item.
func (p Profile) SetUpload(itemID string, u Upload) {
	ledger := p.Uploads()
	ledger[itemID] = u
	p[uploadsKey] = ledger
}

// RemoveUpload drops the upload for a checklist item. Removing an absent
// entry is a no-op.
func (p Profile) RemoveUpload(itemID string) {
	ledger := p.Uploads()
	delete(ledger, itemID)
	if len(ledger) == 0 {
		delete(p, uploadsKey)
		return
	}
	p[uploadsKey] = ledger
}
