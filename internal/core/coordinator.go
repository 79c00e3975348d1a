package core

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"notepool/internal/database/models"
	"notepool/internal/utils"
)

// uploadTimeLayout is the timestamp representation hashed into image uids.
const uploadTimeLayout = "2006-01-02 15:04:05.000000"

var allowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
}

func allowedFile(filename string) bool {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(ext)]
	return ok
}

// ImageUID derives the unique id for an uploaded image from its upload time
// and sanitized filename.
func ImageUID(uploadedAt time.Time, filename string) string {
	sum := sha1.Sum([]byte(uploadedAt.Format(uploadTimeLayout) + filename))
	return hex.EncodeToString(sum[:])
}

// Coordinator sequences multi-store mutations so the metadata store and the
// blob store never diverge. All ownership and admin checks happen here;
// handlers only translate its errors into responses.
type Coordinator struct {
	users  UserStore
	notes  NoteStore
	images ImageStore
	blobs  BlobStore
	log    *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewCoordinator(users UserStore, notes NoteStore, images ImageStore, blobs BlobStore, log *slog.Logger) *Coordinator {
	return &Coordinator{
		users:  users,
		notes:  notes,
		images: images,
		blobs:  blobs,
		log:    log,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
}

// lock serializes mutations on a single resource id, closing the window
// between owner lookup and delete. The map only grows; ids are few and
// short-lived processes reclaim it.
func (c *Coordinator) lock(id string) func() {
	c.mu.Lock()
	m, ok := c.locks[id]
	if !ok {
		m = &sync.Mutex{}
		c.locks[id] = m
	}
	c.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// VerifyLogin checks a credential pair and returns the normalized identity.
func (c *Coordinator) VerifyLogin(ctx context.Context, id, password string) (string, error) {
	id = NormalizeID(id)
	hash, err := c.users.PasswordHash(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrUnauthorized
		}
		return "", err
	}
	if !utils.CheckPasswordHash(password, hash) {
		return "", ErrUnauthorized
	}
	return id, nil
}

func (c *Coordinator) CreateNote(ctx context.Context, requester, content string) (*models.Note, error) {
	if requester == "" {
		return nil, ErrUnauthorized
	}
	note := &models.Note{Content: content, UserID: requester}
	if err := c.notes.Insert(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (c *Coordinator) NotesFor(ctx context.Context, requester string) ([]models.Note, error) {
	if requester == "" {
		return nil, ErrUnauthorized
	}
	return c.notes.ListFor(ctx, requester)
}

func (c *Coordinator) DeleteNote(ctx context.Context, requester string, id uuid.UUID) error {
	unlock := c.lock("note:" + id.String())
	defer unlock()

	owner, err := c.notes.OwnerOf(ctx, id)
	if err != nil {
		return err
	}
	if !Authorize(requester, owner) {
		return ErrUnauthorized
	}
	return c.notes.Delete(ctx, id)
}

// CreateImage validates, writes the blob, then records metadata. The blob
// goes first: an orphaned blob is ignorable, metadata without a blob is a
// dangling reference. A failed metadata insert rolls the blob back.
func (c *Coordinator) CreateImage(ctx context.Context, requester, filename string, r io.Reader) (*models.Image, error) {
	if requester == "" {
		return nil, ErrUnauthorized
	}
	name := utils.SanitizeFilename(filename)
	if name == "" || !allowedFile(name) {
		return nil, ErrValidation
	}

	uploadedAt := c.now()
	uid := ImageUID(uploadedAt, name)

	unlock := c.lock("image:" + uid)
	defer unlock()

	if _, err := c.images.OwnerOf(ctx, uid); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	blobName := uid + "-" + name
	if err := c.blobs.Save(blobName, r); err != nil {
		return nil, err
	}
	image := &models.Image{UID: uid, Filename: name, UploadedAt: uploadedAt, UserID: requester}
	if err := c.images.Insert(ctx, image); err != nil {
		if rerr := c.blobs.Remove(blobName); rerr != nil {
			c.log.Error("blob rollback failed", "blob", blobName, "error", rerr)
		}
		return nil, err
	}
	return image, nil
}

func (c *Coordinator) ImagesFor(ctx context.Context, requester string) ([]models.Image, error) {
	if requester == "" {
		return nil, ErrUnauthorized
	}
	return c.images.ListFor(ctx, requester)
}

// ImageFile authorizes the requester against the image's owner and returns
// the blob name to serve.
func (c *Coordinator) ImageFile(ctx context.Context, requester, uid string) (string, error) {
	owner, err := c.images.OwnerOf(ctx, uid)
	if err != nil {
		return "", err
	}
	if !Authorize(requester, owner) {
		return "", ErrUnauthorized
	}
	return c.blobs.Resolve(uid)
}

func (c *Coordinator) DeleteImage(ctx context.Context, requester, uid string) error {
	unlock := c.lock("image:" + uid)
	defer unlock()

	owner, err := c.images.OwnerOf(ctx, uid)
	if err != nil {
		return err
	}
	if !Authorize(requester, owner) {
		return ErrUnauthorized
	}
	if err := c.images.Delete(ctx, uid); err != nil {
		return err
	}
	return c.removeBlob(uid)
}

func (c *Coordinator) removeBlob(uid string) error {
	name, err := c.blobs.Resolve(uid)
	if err != nil {
		if errors.Is(err, ErrIntegrity) {
			c.log.Error("image pool integrity fault", "uid", uid, "error", err)
		}
		return err
	}
	return c.blobs.Remove(name)
}

// AddUser creates a credential record. Duplicate ids (case-insensitive) and
// ids carrying spaces or quotes are rejected.
func (c *Coordinator) AddUser(ctx context.Context, requester, id, password string) error {
	if err := RequireAdmin(requester); err != nil {
		return err
	}
	norm := NormalizeID(id)
	if _, err := c.users.PasswordHash(ctx, norm); err == nil {
		return ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if err := ValidateNewID(id); err != nil {
		return err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("error hashing password: %v", err)
	}
	return c.users.Insert(ctx, norm, hash)
}

func (c *Coordinator) ListUsers(ctx context.Context, requester string) ([]string, error) {
	if err := RequireAdmin(requester); err != nil {
		return nil, err
	}
	return c.users.List(ctx)
}

// DeleteUser removes a user and everything it owns: blobs first, then the
// user row, which cascades note and image metadata. Blob removal is
// attempted for every image and failures are aggregated; the metadata
// cascade only runs once the pool is clean, so nothing is orphaned silently.
func (c *Coordinator) DeleteUser(ctx context.Context, requester, id string) error {
	if err := RequireAdmin(requester); err != nil {
		return err
	}
	id = NormalizeID(id)
	if id == AdminID {
		return ErrForbidden
	}

	images, err := c.images.ListFor(ctx, id)
	if err != nil {
		return err
	}
	var errs []error
	for _, image := range images {
		if err := c.cascadeBlob(ctx, image.UID); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("cascade for user %s: %w", id, err)
	}
	return c.users.Delete(ctx, id)
}

// cascadeBlob removes one image's blob during a user deletion, under the
// same per-image lock DeleteImage takes. The owner may have deleted the
// image between listing and now; a metadata row that is already gone means
// the blob went with it and is not a fault.
func (c *Coordinator) cascadeBlob(ctx context.Context, uid string) error {
	unlock := c.lock("image:" + uid)
	defer unlock()

	if _, err := c.images.OwnerOf(ctx, uid); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return c.removeBlob(uid)
}
