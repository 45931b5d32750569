package model

import "time"

// EditorSession is the persisted state of one open form builder.
// Template is the authoritative working copy; SelectedID and DragSubject are derived UI state.
type EditorSession struct {
	ID          string    `json:"id"`
	HostID      string    `json:"hostId"`
	Template    Template  `json:"template"`
	SelectedID  string    `json:"selectedId,omitempty"`
	DragSubject string    `json:"dragSubject,omitempty"`
	Dirty       bool      `json:"dirty"`
	Revision    int64     `json:"revision"`
	OpenedAt    time.Time `json:"openedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CurrentRevision reports the revision this snapshot was taken at
func (s EditorSession) CurrentRevision() int64 {
	return s.Revision
}
