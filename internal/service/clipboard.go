package service

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/superherotang/clip/internal/domain"
	"github.com/superherotang/clip/internal/encryption"
	"github.com/superherotang/clip/internal/repository"
)

// FileStore is the sink for uploaded bytes. The returned path is what
// gets stored as the item's content.
type FileStore interface {
	Save(roomID uint, originalName string, r io.Reader) (string, error)
}

// Notifier pushes room-scoped events to connected clients. A nil
// notifier disables the live feed.
type Notifier interface {
	BroadcastRoom(roomID uint, event any)
}

// Live feed event types.
const (
	EventItemCreated = "item_created"
	EventItemUpdated = "item_updated"
	EventItemDeleted = "item_deleted"
)

// ItemEvent is what the live feed delivers to a room's clients. Item is
// already decrypted; the feed never carries ciphertext.
type ItemEvent struct {
	Type   string                `json:"type"`
	RoomID uint                  `json:"roomId"`
	ItemID uint                  `json:"itemId"`
	Item   *domain.ClipboardItem `json:"item,omitempty"`
}

// ClipboardService handles room-scoped item CRUD. Text content and file
// metadata cross the cipher at this boundary: encrypted on the way to
// the store, decrypted on the way out.
type ClipboardService struct {
	clipRepo   repository.ClipboardRepository
	memberRepo repository.MemberRepository
	userRepo   repository.UserRepository
	cipher     *encryption.Cipher
	files      FileStore
	notifier   Notifier
}

// NewClipboardService creates a ClipboardService. notifier may be nil.
func NewClipboardService(
	clipRepo repository.ClipboardRepository,
	memberRepo repository.MemberRepository,
	userRepo repository.UserRepository,
	cipher *encryption.Cipher,
	files FileStore,
	notifier Notifier,
) *ClipboardService {
	if clipRepo == nil || memberRepo == nil || userRepo == nil {
		panic("repositories cannot be nil for ClipboardService")
	}
	if cipher == nil {
		panic("cipher cannot be nil for ClipboardService")
	}
	return &ClipboardService{
		clipRepo:   clipRepo,
		memberRepo: memberRepo,
		userRepo:   userRepo,
		cipher:     cipher,
		files:      files,
		notifier:   notifier,
	}
}

// requireMembership is the clipboard-side gate: every operation checks
// the caller's membership in the item's room before touching the store.
func (s *ClipboardService) requireMembership(ctx context.Context, userID, roomID uint) error {
	_, err := s.memberRepo.Find(ctx, userID, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrMembershipNotFound) {
			return ErrNotRoomMember
		}
		logrus.WithError(err).WithFields(logrus.Fields{"user_id": userID, "room_id": roomID}).
			Error("Database error checking membership")
		return ErrInternalServer
	}
	return nil
}

// ListItems returns a room's items newest-first with text content and
// metadata decrypted. Legacy plaintext rows pass through the cipher
// unchanged.
func (s *ClipboardService) ListItems(ctx context.Context, userID, roomID uint) ([]domain.ClipboardItem, error) {
	if err := s.requireMembership(ctx, userID, roomID); err != nil {
		return nil, err
	}

	items, err := s.clipRepo.ListByRoom(ctx, roomID)
	if err != nil {
		logrus.WithError(err).WithField("room_id", roomID).Error("Failed to list clipboard items")
		return nil, ErrInternalServer
	}

	for i := range items {
		s.decryptItem(&items[i])
	}
	return items, nil
}

// CreateItem stores a new item. Text content is encrypted at rest;
// image/file content is a storage path and stays clear. The returned
// item carries the plaintext the caller sent.
func (s *ClipboardService) CreateItem(ctx context.Context, userID, roomID uint, itemType, content, title, category string, meta map[string]any) (*domain.ClipboardItem, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "room_id": roomID, "type": itemType})

	if !validItemType(itemType) || content == "" {
		return nil, ErrInvalidInput
	}
	if err := s.requireMembership(ctx, userID, roomID); err != nil {
		return nil, err
	}

	stored := content
	if itemType == domain.ItemTypeText {
		var err error
		stored, err = s.cipher.Encrypt(content)
		if err != nil {
			logCtx.WithError(err).Error("Failed to encrypt clipboard content")
			return nil, ErrInternalServer
		}
	}

	var storedMeta string
	if meta != nil {
		var err error
		storedMeta, err = s.cipher.EncryptObject(meta)
		if err != nil {
			logCtx.WithError(err).Error("Failed to encrypt item metadata")
			return nil, ErrInternalServer
		}
	}

	item := &domain.ClipboardItem{
		RoomID:   roomID,
		UserID:   userID,
		Type:     itemType,
		Content:  stored,
		Title:    title,
		Category: category,
		Meta:     storedMeta,
	}
	if err := s.clipRepo.Create(ctx, item); err != nil {
		logCtx.WithError(err).Error("Failed to create clipboard item")
		return nil, ErrInternalServer
	}

	item.Content = content
	item.MetaData = meta
	s.fillAuthor(ctx, item)

	logCtx.WithField("item_id", item.ID).Info("Clipboard item created")
	s.notify(EventItemCreated, item)
	return item, nil
}

// UpdateItem applies partial changes to content/title/category. Nil
// pointers leave the field untouched; text content is re-encrypted.
func (s *ClipboardService) UpdateItem(ctx context.Context, userID, itemID uint, content, title, category *string) (*domain.ClipboardItem, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "item_id": itemID})

	item, err := s.clipRepo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		logCtx.WithError(err).Error("Database error loading clipboard item")
		return nil, ErrInternalServer
	}
	if err := s.requireMembership(ctx, userID, item.RoomID); err != nil {
		return nil, err
	}

	var plainContent string
	if content != nil {
		plainContent = *content
		if item.Type == domain.ItemTypeText {
			stored, err := s.cipher.Encrypt(plainContent)
			if err != nil {
				logCtx.WithError(err).Error("Failed to encrypt clipboard content")
				return nil, ErrInternalServer
			}
			item.Content = stored
		} else {
			item.Content = plainContent
		}
	}
	if title != nil {
		item.Title = *title
	}
	if category != nil {
		item.Category = *category
	}

	if err := s.clipRepo.Save(ctx, item); err != nil {
		logCtx.WithError(err).Error("Failed to save clipboard item")
		return nil, ErrInternalServer
	}

	if content != nil {
		item.Content = plainContent
	} else {
		s.decryptItem(item)
	}
	if item.MetaData == nil && item.Meta != "" {
		var m map[string]any
		if s.cipher.DecryptObject(item.Meta, &m) {
			item.MetaData = m
		}
	}
	s.fillAuthor(ctx, item)

	logCtx.Info("Clipboard item updated")
	s.notify(EventItemUpdated, item)
	return item, nil
}

// DeleteItem removes an item after the membership check on its room.
func (s *ClipboardService) DeleteItem(ctx context.Context, userID, itemID uint) error {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "item_id": itemID})

	item, err := s.clipRepo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return ErrItemNotFound
		}
		logCtx.WithError(err).Error("Database error loading clipboard item")
		return ErrInternalServer
	}
	if err := s.requireMembership(ctx, userID, item.RoomID); err != nil {
		return err
	}

	if err := s.clipRepo.Delete(ctx, itemID); err != nil {
		logCtx.WithError(err).Error("Failed to delete clipboard item")
		return ErrInternalServer
	}

	logCtx.Info("Clipboard item deleted")
	if s.notifier != nil {
		s.notifier.BroadcastRoom(item.RoomID, ItemEvent{
			Type:   EventItemDeleted,
			RoomID: item.RoomID,
			ItemID: itemID,
		})
	}
	return nil
}

// UploadItem writes the file to the storage sink and creates the
// referencing item. Content is the storage path, stored in the clear;
// the descriptive metadata is encrypted.
func (s *ClipboardService) UploadItem(ctx context.Context, userID, roomID uint, itemType, originalName, mimeType string, size int64, r io.Reader) (*domain.ClipboardItem, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "room_id": roomID, "type": itemType})

	if itemType != domain.ItemTypeImage && itemType != domain.ItemTypeFile {
		return nil, ErrInvalidInput
	}
	if s.files == nil {
		logCtx.Error("Upload requested but no file store is configured")
		return nil, ErrInternalServer
	}
	if err := s.requireMembership(ctx, userID, roomID); err != nil {
		return nil, err
	}

	path, err := s.files.Save(roomID, originalName, r)
	if err != nil {
		logCtx.WithError(err).Error("Failed to store uploaded file")
		return nil, ErrInternalServer
	}

	meta := map[string]any{
		"originalName": originalName,
		"mimeType":     mimeType,
		"size":         size,
	}
	storedMeta, err := s.cipher.EncryptObject(meta)
	if err != nil {
		logCtx.WithError(err).Error("Failed to encrypt upload metadata")
		return nil, ErrInternalServer
	}

	item := &domain.ClipboardItem{
		RoomID:  roomID,
		UserID:  userID,
		Type:    itemType,
		Content: path,
		Title:   originalName,
		Meta:    storedMeta,
	}
	if err := s.clipRepo.Create(ctx, item); err != nil {
		logCtx.WithError(err).Error("Failed to create clipboard item for upload")
		return nil, ErrInternalServer
	}

	item.MetaData = meta
	s.fillAuthor(ctx, item)

	logCtx.WithFields(logrus.Fields{"item_id": item.ID, "path": path}).Info("File uploaded")
	s.notify(EventItemCreated, item)
	return item, nil
}

// decryptItem converts a stored row to its client-facing form.
func (s *ClipboardService) decryptItem(item *domain.ClipboardItem) {
	if item.Type == domain.ItemTypeText {
		item.Content = s.cipher.Decrypt(item.Content)
	}
	if item.Meta != "" {
		var m map[string]any
		if s.cipher.DecryptObject(item.Meta, &m) {
			item.MetaData = m
		}
	}
}

// fillAuthor sets the poster's username on freshly written items, which
// list queries otherwise join in.
func (s *ClipboardService) fillAuthor(ctx context.Context, item *domain.ClipboardItem) {
	user, err := s.userRepo.FindByID(ctx, item.UserID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", item.UserID).Warn("Failed to resolve item author")
		return
	}
	item.Author = user.Username
}

func (s *ClipboardService) notify(eventType string, item *domain.ClipboardItem) {
	if s.notifier == nil {
		return
	}
	s.notifier.BroadcastRoom(item.RoomID, ItemEvent{
		Type:   eventType,
		RoomID: item.RoomID,
		ItemID: item.ID,
		Item:   item,
	})
}

func validItemType(t string) bool {
	return t == domain.ItemTypeText || t == domain.ItemTypeImage || t == domain.ItemTypeFile
}
