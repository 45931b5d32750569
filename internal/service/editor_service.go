package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"evalforge/internal/cache"
	"evalforge/internal/editor"
	"evalforge/internal/model"
)

// Editor websocket event types
const (
	EventSessionUpdated = "session_updated"
	EventSessionClosed  = "session_closed"
)

// SessionEvent is broadcast to every viewer after a command succeeds
type SessionEvent struct {
	Command string               `json:"command"`
	Session *model.EditorSession `json:"session"`
}

// CurrentRevision reports the revision the event produced
func (e SessionEvent) CurrentRevision() int64 {
	if e.Session == nil {
		return 0
	}
	return e.Session.Revision
}

// CommandResult is what a command returns to its caller
type CommandResult struct {
	Session *model.EditorSession `json:"session"`
	Result  interface{}          `json:"result,omitempty"`
}

// command mutates a restored editor. Changes reach the cache only when it returns nil.
type command func(ctx context.Context, ed *editor.Editor, sess *model.EditorSession) (interface{}, error)

// EditorService runs editor commands against sessions persisted in Redis.
// Commands on the same session are serialised within this process.
type EditorService struct {
	templates   *TemplateService
	editorCache cache.EditorCache
	broadcaster Broadcaster
	log         *zap.Logger

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock serializes commands on one session. The entry is dropped from
// EditorService.locks once no caller holds or waits for it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewEditorService creates a new editor service
func NewEditorService(templates *TemplateService, editorCache cache.EditorCache, log *zap.Logger) *EditorService {
	return &EditorService{
		templates:   templates,
		editorCache: editorCache,
		broadcaster: nopBroadcaster{},
		log:         log,
		locks:       make(map[string]*sessionLock),
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *EditorService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

func (s *EditorService) lock(sessionID string) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.mu.Unlock()
	}
}

// Open starts an editor session on a stored template, or on the default template when
// templateID is empty
func (s *EditorService) Open(ctx context.Context, hostID, templateID string) (*model.EditorSession, error) {
	var t model.Template
	if templateID == "" {
		t = editor.CreateDefaultTemplate()
	} else {
		stored, err := s.templates.Get(ctx, hostID, templateID)
		if err != nil {
			return nil, err
		}
		t = *stored
	}

	now := time.Now().UTC()
	sess := &model.EditorSession{
		ID:        uuid.NewString(),
		HostID:    hostID,
		OpenedAt:  now,
		UpdatedAt: now,
	}
	editor.New(t).Snapshot(sess)

	if err := s.editorCache.Set(ctx, sess); err != nil {
		return nil, fmt.Errorf("store editor session: %w", err)
	}
	s.log.Info("editor session opened",
		zap.String("sessionId", sess.ID),
		zap.String("hostId", hostID),
		zap.String("templateId", t.ID))
	return sess, nil
}

// Get returns a session owned by hostID
func (s *EditorService) Get(ctx context.Context, hostID, sessionID string) (*model.EditorSession, error) {
	sess, err := s.editorCache.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load editor session %s: %w", sessionID, err)
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	if sess.HostID != hostID {
		return nil, ErrForbidden
	}
	return sess, nil
}

// List returns the ids of the host's open sessions
func (s *EditorService) List(ctx context.Context, hostID string) ([]string, error) {
	ids, err := s.editorCache.ListByHost(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("list editor sessions: %w", err)
	}
	return ids, nil
}

// Close discards a session and disconnects its viewers. Unsaved changes are lost.
func (s *EditorService) Close(ctx context.Context, hostID, sessionID string) error {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.Get(ctx, hostID, sessionID)
	if err != nil {
		return err
	}
	if err := s.editorCache.Delete(ctx, sess); err != nil {
		return fmt.Errorf("delete editor session %s: %w", sessionID, err)
	}

	s.broadcaster.BroadcastToSession(sessionID, EventSessionClosed, map[string]string{"sessionId": sessionID})
	s.broadcaster.DisconnectSession(sessionID)
	s.log.Info("editor session closed", zap.String("sessionId", sessionID))
	return nil
}

// apply runs cmd as one event turn: restore, mutate, snapshot, persist, broadcast
func (s *EditorService) apply(ctx context.Context, hostID, sessionID, name string, cmd command) (*CommandResult, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.Get(ctx, hostID, sessionID)
	if err != nil {
		return nil, err
	}

	ed := editor.Restore(*sess)
	result, err := cmd(ctx, ed, sess)
	if err != nil {
		s.log.Debug("editor command rejected",
			zap.String("sessionId", sessionID),
			zap.String("command", name),
			zap.Error(err))
		return nil, err
	}

	ed.Snapshot(sess)
	sess.Revision++
	sess.UpdatedAt = time.Now().UTC()
	if err := s.editorCache.Set(ctx, sess); err != nil {
		s.log.Error("failed to persist editor session",
			zap.String("sessionId", sessionID),
			zap.String("command", name),
			zap.Error(err))
		return nil, fmt.Errorf("store editor session: %w", err)
	}

	s.broadcaster.BroadcastToSession(sessionID, EventSessionUpdated, SessionEvent{Command: name, Session: sess})
	return &CommandResult{Session: sess, Result: result}, nil
}

// AddItem appends a new item of typ and selects it
func (s *EditorService) AddItem(ctx context.Context, hostID, sessionID string, typ model.ItemType, label string) (*CommandResult, error) {
	return s.apply(ctx, hostID, sessionID, "add_item", func(_ context.Context, ed *editor.Editor, sess *model.EditorSession) (interface{}, error) {
		var labels []string
		if label != "" {
			labels = append(labels, label)
		}
		it, err := ed.AddItem(typ, labels...)
		if err != nil {
			return nil, err
		}
		sess.Dirty = true
		return it, nil
	})
}

// UpdateItem applies a patch to one item. An unknown id changes nothing and reports
// {"updated": false}, since a viewer may still be editing an item another viewer deleted.
func (s *EditorService) UpdateItem(ctx context.Context, hostID, sessionID, itemID string, patch editor.ItemPatch) (*CommandResult, error) {
	return s.apply(ctx, hostID, sessionID, "update_item", func(_ context.Context, ed *editor.Editor, sess *model.EditorSession) (interface{}, error) {
		idx := ed.Store().IndexOf(itemID)
		if idx < 0 {
			return map[string]bool{"updated": false}, nil
		}
		if err := ed.UpdateItem(itemID, patch); err != nil {
			return nil, err
		}
		sess.Dirty = true
		it, _ := ed.Store().At(idx)
		return it, nil
	})
}

// DeleteItem removes one item; deleting an unknown id changes nothing
func (s *EditorService) DeleteItem(ctx context.Context, hostID, sessionID, itemID string) (*CommandResult, error) {
	return s.apply(ctx, hostID, sessionID, "delete_item", func(_ context.Context, ed *editor.Editor, sess *model.EditorSession) (interface{}, error) {
		deleted := ed.DeleteItem(itemID)
		if deleted {
			sess.Dirty = true
		}
		return map[string]bool{"deleted": deleted}, nil
	})
}

// MoveItem moves the item at from to index to
func (s *EditorService) MoveItem(ctx context.Context, hostID, sessionID string, from, to int) (*CommandResult, error) {
	return s.apply(ctx, hostID, sessionID, "move_item", func(_ context.Context, ed *editor.Editor, sess *model.EditorSession) (interface{}, error) {
		if err := ed.MoveItem(from, to); err != nil {
			return nil, err
		}
		if from != to {
			sess.Dirty = true
		}
		return nil, nil
	})
}

// UpdateMetadata changes the template title or description
func (s *EditorService) UpdateMetadata(ctx context.Context, hostID, sessionID string, patch editor.MetadataPatch) (*CommandResult, error) {
	return s.apply(ctx, hostID, sessionID, "update_metadata", func(_ context.Context, ed *editor.Editor, sess *model.EditorSession) (interface{}, error) {
		ed.UpdateMetadata(patch)
		sess.Dirty = true
		return nil, nil
	})
}

// Select changes the selected item; an empty id clears the selection
func (s *EditorService) Select(ctx context.Context, hostID, sessionID, itemID string) (*CommandResult, error) {
	return s.apply(ctx, hostID, sessionID, "select", func(_ context.Context, ed *editor.Editor, _ *model.EditorSession) (interface{}, error) {
		if !ed.Select(itemID) {
			return nil, ErrItemNotFound
		}
		return nil, nil
	})
}

// BeginDrag starts a gesture for a palette entry or an existing item
func (s *EditorService) BeginDrag(ctx context.Context, hostID, sessionID, source string) (*CommandResult, error) {
	return s.apply(ctx, hostID, sessionID, "drag_start", func(_ context.Context, ed *editor.Editor, _ *model.EditorSession) (interface{}, error) {
		return nil, ed.BeginDrag(source)
	})
}

// Drop ends the gesture over target
func (s *EditorService) Drop(ctx context.Context, hostID, sessionID, target string) (*CommandResult, error) {
	return s.apply(ctx, hostID, sessionID, "drag_drop", func(_ context.Context, ed *editor.Editor, sess *model.EditorSession) (interface{}, error) {
		res, err := ed.Drop(target)
		if err != nil {
			return nil, err
		}
		if res.Effect != editor.DropNoop {
			sess.Dirty = true
		}
		return res, nil
	})
}

// CancelDrag abandons the gesture
func (s *EditorService) CancelDrag(ctx context.Context, hostID, sessionID string) (*CommandResult, error) {
	return s.apply(ctx, hostID, sessionID, "drag_cancel", func(_ context.Context, ed *editor.Editor, _ *model.EditorSession) (interface{}, error) {
		ed.CancelDrag()
		return nil, nil
	})
}

// Import adds suggested items to the session template
func (s *EditorService) Import(ctx context.Context, hostID, sessionID string, suggestion model.TemplateSuggestion, mode editor.ImportMode) (*CommandResult, error) {
	if mode != editor.ImportAppend && mode != editor.ImportReplace {
		return nil, fmt.Errorf("%w: import mode %q", ErrInvalidRequest, mode)
	}
	return s.apply(ctx, hostID, sessionID, "import", func(_ context.Context, ed *editor.Editor, sess *model.EditorSession) (interface{}, error) {
		items, err := ed.Import(suggestion, mode)
		if err != nil {
			return nil, err
		}
		sess.Dirty = true
		return items, nil
	})
}

// Save persists the session template and adopts the stored copy
func (s *EditorService) Save(ctx context.Context, hostID, sessionID string) (*CommandResult, error) {
	return s.apply(ctx, hostID, sessionID, "save", func(ctx context.Context, ed *editor.Editor, sess *model.EditorSession) (interface{}, error) {
		saved, err := s.templates.Save(ctx, hostID, ed.Template())
		if err != nil {
			return nil, err
		}
		ed.Load(*saved)
		sess.Dirty = false
		return saved, nil
	})
}
