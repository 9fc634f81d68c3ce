package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
	"github.com/noah-isme/ego-calendar-api/pkg/export"
	"github.com/noah-isme/ego-calendar-api/pkg/storage"
	"github.com/noah-isme/ego-calendar-api/pkg/timeutil"
)

type exportEventSource interface {
	ListByUser(ctx context.Context, userID string) ([]models.Event, error)
}

type settingsFinder interface {
	Get(ctx context.Context, userID string) (*models.UserSettings, error)
}

type linkSigner interface {
	Generate(subject, resource string) (string, time.Time, error)
	Parse(token string) (*storage.SignedLink, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
}

// ExportLink is the signed download handed back to the client.
type ExportLink struct {
	Token     string        `json:"token"`
	URL       string        `json:"url"`
	Format    export.Format `json:"format"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService signs export links and renders calendars on download.
type ExportService struct {
	events   exportEventSource
	settings settingsFinder
	signer   linkSigner
	cfg      ExportConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs an ExportService. settings may be nil, in which
// case exports use the default timezone.
func NewExportService(events exportEventSource, settings settingsFinder, signer linkSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{events: events, settings: settings, signer: signer, cfg: cfg, logger: logger, now: time.Now}
}

// Link returns a signed URL the user can download format from.
func (s *ExportService) Link(ctx context.Context, userID, format string) (*ExportLink, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, appErrors.Validation(err.Error())
	}
	token, expiresAt, err := s.signer.Generate(userID, string(f))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export link")
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &ExportLink{
		Token:     token,
		URL:       fmt.Sprintf("%s/calendar/export/download?token=%s", prefix, token),
		Format:    f,
		ExpiresAt: expiresAt,
	}, nil
}

// Download verifies token and renders the owner's calendar in the signed format.
func (s *ExportService) Download(ctx context.Context, token string) (*ExportFile, error) {
	link, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrExpiredToken) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	format, err := export.ParseFormat(link.Resource)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	return s.Render(ctx, link.Subject, format)
}

// Render builds the user's calendar in format.
func (s *ExportService) Render(ctx context.Context, userID string, format export.Format) (*ExportFile, error) {
	renderer, err := export.RendererFor(format)
	if err != nil {
		return nil, appErrors.Validation(err.Error())
	}
	events, err := s.events.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load events")
	}

	doc := export.Document{
		Title:    "Calendar",
		Location: s.location(ctx, userID),
		Items:    make([]export.Item, 0, len(events)),
	}
	for _, ev := range events {
		doc.Items = append(doc.Items, exportItem(ev))
	}

	data, err := renderer.Render(doc)
	if err != nil {
		s.logger.Error("render export", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("calendar_%s.%s", s.now().UTC().Format("20060102"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

func (s *ExportService) location(ctx context.Context, userID string) *time.Location {
	if s.settings == nil {
		return timeutil.ResolveLocation("")
	}
	settings, err := s.settings.Get(ctx, userID)
	if err != nil || settings == nil {
		return timeutil.ResolveLocation("")
	}
	return timeutil.ResolveLocation(settings.Timezone)
}

func exportItem(ev models.Event) export.Item {
	return export.Item{
		UID:         ev.ID,
		Title:       ev.Title,
		Description: deref(ev.Description),
		Location:    deref(ev.Location),
		Type:        ev.Type,
		Start:       ev.StartTime,
		End:         ev.EndTime,
		AllDay:      ev.AllDay,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
