// Package sharing sends library snapshots to other identities and lets
// recipients accept or decline what they were sent.
package sharing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/taborganizer/internal/apperr"
	"github.com/starford/taborganizer/internal/events"
	"github.com/starford/taborganizer/internal/importer"
	"github.com/starford/taborganizer/internal/models"
	"github.com/starford/taborganizer/internal/persist"
	"github.com/starford/taborganizer/internal/remote"
	"github.com/starford/taborganizer/internal/snapshot"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Organizer is the part of the document store the share flow needs.
type Organizer interface {
	Read(fn func(doc *models.Document))
	Snapshot(libKey string, sel snapshot.Selection, message string) (*snapshot.Portable, error)
	ImportShare(p *snapshot.Portable, sel importer.ShareSelection, mode importer.ShareMode, libName, libIcon string) (importer.ShareResult, error)
}

// SessionSource reports the signed-in identity.
type SessionSource interface {
	Session() persist.Session
}

// Service implements the share protocol on top of a remote.ShareStore.
type Service struct {
	shares  remote.ShareStore
	org     Organizer
	session SessionSource
	events  events.Publisher
	logger  *slog.Logger
	now     func() time.Time
}

// Config holds the Service collaborators. Events, Logger and Now are optional.
type Config struct {
	Shares  remote.ShareStore
	Org     Organizer
	Session SessionSource
	Events  events.Publisher
	Logger  *slog.Logger
	Now     func() time.Time
}

// New creates a share service.
func New(cfg Config) *Service {
	s := &Service{
		shares:  cfg.Shares,
		org:     cfg.Org,
		session: cfg.Session,
		events:  cfg.Events,
		logger:  cfg.Logger,
		now:     cfg.Now,
	}
	if s.events == nil {
		s.events = events.Discard
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// SendRequest describes a share to send.
type SendRequest struct {
	Library   string             `json:"library"`
	Selection snapshot.Selection `json:"selection"`
	Recipient string             `json:"recipient"`
	Message   string             `json:"message"`
}

// Send snapshots the selected links of a library and delivers them to the
// recipient's inbox.
func (s *Service) Send(ctx context.Context, req SendRequest) (*remote.Share, error) {
	sess, err := s.identity()
	if err != nil {
		return nil, err
	}
	recipient := strings.ToLower(strings.TrimSpace(req.Recipient))
	if err := validation.Validate(recipient,
		validation.Required,
		validation.Match(emailRe).Error("must be a valid email address"),
	); err != nil {
		return nil, fmt.Errorf("share: recipient %s: %w", err.Error(), apperr.ErrValidation)
	}
	if recipient == strings.ToLower(sess.Email) {
		return nil, fmt.Errorf("share: cannot share with yourself: %w", apperr.ErrValidation)
	}

	p, err := s.org.Snapshot(req.Library, req.Selection, req.Message)
	if err != nil {
		return nil, err
	}
	if p.LinkCount() == 0 {
		return nil, fmt.Errorf("share: select at least one link: %w", apperr.ErrValidation)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("share: encode snapshot: %w", err)
	}

	var name, icon string
	s.org.Read(func(doc *models.Document) {
		if lib := doc.Library(req.Library); lib != nil {
			name, icon = lib.Name, lib.Icon
		}
	})

	sh := remote.Share{
		ID:             uuid.NewString(),
		SenderID:       sess.UserID,
		SenderEmail:    sess.Email,
		RecipientEmail: recipient,
		LibraryName:    name,
		LibraryIcon:    icon,
		LibraryData:    data,
		Status:         remote.ShareSent,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.shares.CreateShare(ctx, sh); err != nil {
		return nil, err
	}

	s.logger.Info("sharing: share sent",
		slog.String("id", sh.ID),
		slog.String("recipient", recipient),
		slog.Int("links", p.LinkCount()),
	)
	s.events.Publish(events.Event{Type: events.TypeShareSent, Data: events.ShareEvent{
		ID:         sh.ID,
		Recipient:  recipient,
		Categories: len(p.Categories),
		Links:      p.LinkCount(),
	}})
	return &sh, nil
}

// Pending lists the shares still awaiting the signed-in recipient, newest first.
func (s *Service) Pending(ctx context.Context) ([]remote.Share, error) {
	sess, err := s.identity()
	if err != nil {
		return nil, err
	}
	return s.shares.ListShares(ctx, strings.ToLower(sess.Email), remote.SharePending, remote.ShareSent)
}

// Open returns a received share with its decoded snapshot and stamps it as
// seen the first time it is opened.
func (s *Service) Open(ctx context.Context, id string) (*remote.Share, *snapshot.Portable, error) {
	sh, err := s.owned(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	p, err := importer.ParseShare(sh.LibraryData)
	if err != nil {
		return nil, nil, err
	}
	if sh.SeenAt == nil {
		at := s.now().UTC()
		if err := s.shares.MarkSeen(ctx, id, at); err != nil {
			s.logger.Warn("sharing: mark seen failed", slog.String("id", id), slog.String("error", err.Error()))
		} else {
			sh.SeenAt = &at
		}
	}
	return sh, p, nil
}

// AcceptRequest picks which part of a share to import and where.
type AcceptRequest struct {
	Selection importer.ShareSelection `json:"selection"`
	Mode      importer.ShareMode      `json:"mode"`
}

// Accept imports the selected part of a share and marks it accepted. The
// import stands even when the status update fails.
func (s *Service) Accept(ctx context.Context, id string, req AcceptRequest) (importer.ShareResult, error) {
	sh, err := s.owned(ctx, id)
	if err != nil {
		return importer.ShareResult{}, err
	}
	if !sh.Status.Open() {
		return importer.ShareResult{}, fmt.Errorf("share %s already %s: %w", id, sh.Status, apperr.ErrConflict)
	}
	p, err := importer.ParseShare(sh.LibraryData)
	if err != nil {
		return importer.ShareResult{}, err
	}
	res, err := s.org.ImportShare(p, req.Selection, req.Mode, sh.LibraryName, sh.LibraryIcon)
	if err != nil {
		return importer.ShareResult{}, err
	}

	if err := s.shares.UpdateShareStatus(ctx, id, remote.ShareAccepted); err != nil {
		s.logger.Warn("sharing: mark accepted failed", slog.String("id", id), slog.String("error", err.Error()))
	}
	s.logger.Info("sharing: share accepted", slog.String("id", id), slog.Int("links", res.Links))
	s.events.Publish(events.Event{Type: events.TypeShareAccepted, Data: events.ShareEvent{
		ID:         id,
		Categories: res.Categories,
		Links:      res.Links,
	}})
	return res, nil
}

// Decline marks a share declined without importing anything.
func (s *Service) Decline(ctx context.Context, id string) error {
	sh, err := s.owned(ctx, id)
	if err != nil {
		return err
	}
	if !sh.Status.Open() {
		return fmt.Errorf("share %s already %s: %w", id, sh.Status, apperr.ErrConflict)
	}
	if err := s.shares.UpdateShareStatus(ctx, id, remote.ShareDeclined); err != nil {
		return err
	}
	s.events.Publish(events.Event{Type: events.TypeShareDeclined, Data: events.ShareEvent{ID: id}})
	return nil
}

func (s *Service) identity() (persist.Session, error) {
	if s.session == nil || s.shares == nil {
		return persist.Session{}, fmt.Errorf("share: no remote configured: %w", apperr.ErrUnauthorized)
	}
	sess := s.session.Session()
	if !sess.Authenticated() || sess.Email == "" {
		return persist.Session{}, fmt.Errorf("share: sign in required: %w", apperr.ErrUnauthorized)
	}
	return sess, nil
}

// owned loads a share addressed to the signed-in identity. Shares
// addressed to someone else are reported as missing.
func (s *Service) owned(ctx context.Context, id string) (*remote.Share, error) {
	sess, err := s.identity()
	if err != nil {
		return nil, err
	}
	sh, err := s.shares.GetShare(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(sh.RecipientEmail, sess.Email) {
		return nil, fmt.Errorf("share %s: %w", id, apperr.ErrNotFound)
	}
	return sh, nil
}

