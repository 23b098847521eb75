package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// Annotator derives metric values and assets from free text. Codecs that
// understand the inline annotation grammar implement it.
type Annotator interface {
	Annotate(text string, datetime time.Time, reference string) ([]MetricValue, []Asset)
}

// Service handles the business logic for profiles and their attachments.
type Service struct {
	mu       sync.RWMutex
	profiles ProfileStore
	assets   AssetStore
	codec    Codec
	logger   *slog.Logger
}

// NewService creates a new Service. A nil logger falls back to slog.Default().
func NewService(profiles ProfileStore, assets AssetStore, codec Codec, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		profiles: profiles,
		assets:   assets,
		codec:    codec,
		logger:   logger,
	}
}

// Codec returns the codec used for import and export.
func (s *Service) Codec() Codec {
	return s.codec
}

// CreateProfile creates and stores an empty profile.
func (s *Service) CreateProfile(ctx context.Context, name string) (Profile, error) {
	if name == "" {
		return Profile{}, fmt.Errorf("%w: profile name cannot be empty", ErrInvalidProfile)
	}
	p := NewProfile(name)
	if err := s.SaveProfile(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// SaveProfile stores a profile.
func (s *Service) SaveProfile(ctx context.Context, p Profile) error {
	if p.UUID == "" {
		return fmt.Errorf("%w: profile UUID cannot be empty", ErrInvalidProfile)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles.Put(ctx, p)
}

// LoadProfile retrieves a profile.
func (s *Service) LoadProfile(ctx context.Context, id string) (Profile, error) {
	if id == "" {
		return Profile{}, fmt.Errorf("%w: profile UUID cannot be empty", ErrInvalidProfile)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profiles.Get(ctx, id)
}

// DeleteProfile removes a profile. Attachment blobs are left in place.
func (s *Service) DeleteProfile(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: profile UUID cannot be empty", ErrInvalidProfile)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles.Delete(ctx, id)
}

// ListSummaries returns summaries of all stored profiles, sorted by name.
func (s *Service) ListSummaries(ctx context.Context) ([]ProfileSummary, error) {
	summaries, err := s.summaries(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Name == summaries[j].Name {
			return summaries[i].UUID < summaries[j].UUID
		}
		return summaries[i].Name < summaries[j].Name
	})
	return summaries, nil
}

func (s *Service) summaries(ctx context.Context) ([]ProfileSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if l, ok := s.profiles.(SummaryLister); ok {
		return l.Summaries(ctx)
	}
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]ProfileSummary, 0, len(profiles))
	for _, p := range profiles {
		summaries = append(summaries, Summarize(p))
	}
	return summaries, nil
}

// SaveAsset stores the bytes of an asset owned by parentID.
func (s *Service) SaveAsset(ctx context.Context, parentID string, asset Asset, data []byte) error {
	if parentID == "" || asset.FileName == "" {
		return errors.New("asset needs a parent id and a file name")
	}
	return s.assets.PutAsset(ctx, AssetKey(parentID, asset), data)
}

// LoadAsset retrieves the bytes of an asset owned by parentID.
func (s *Service) LoadAsset(ctx context.Context, parentID string, asset Asset) ([]byte, error) {
	return s.assets.GetAsset(ctx, AssetKey(parentID, asset))
}

// ResolveAsset adapts LoadAsset to the AssetResolver signature.
func (s *Service) ResolveAsset(ctx context.Context, parentID string, asset Asset) ([]byte, error) {
	return s.LoadAsset(ctx, parentID, asset)
}

// AttachAsset stores data as an attachment of the entry, report or document
// parentID and records the asset on it. Entries also get an inline link when
// the codec renders one, since their assets are read back from the text.
func (s *Service) AttachAsset(ctx context.Context, profileID, parentID string, asset Asset, data []byte) (Profile, error) {
	if parentID == "" || asset.FileName == "" {
		return Profile{}, errors.New("asset needs a parent id and a file name")
	}
	var link string
	if l, ok := s.codec.(AssetLinker); ok {
		link = l.AssetLink(asset.FileName)
	}

	return s.update(ctx, profileID, func(p *Profile) error {
		if !attachTo(p, parentID, asset, link) {
			return fmt.Errorf("item %s: %w", parentID, ErrNotFound)
		}
		return s.assets.PutAsset(ctx, AssetKey(parentID, asset), data)
	})
}

// attachTo adds asset to the item parentID, copying every slice it touches.
func attachTo(p *Profile, parentID string, asset Asset, link string) bool {
	for ji, j := range p.Journals {
		for ei, e := range j.Entries {
			if e.UUID != parentID {
				continue
			}
			if link != "" && !strings.Contains(e.Text, link) {
				e.Text = strings.TrimRight(e.Text, "\n") + "\n" + link
			}
			e.Assets = withAsset(e.Assets, asset)
			entries := append([]JournalEntry(nil), j.Entries...)
			entries[ei] = e
			journals := append([]Journal(nil), p.Journals...)
			journals[ji].Entries = entries
			p.Journals = journals
			return true
		}
	}
	for i, r := range p.Reports {
		if r.UUID == parentID {
			reports := append([]Report(nil), p.Reports...)
			reports[i].Assets = withAsset(r.Assets, asset)
			p.Reports = reports
			return true
		}
	}
	for i, d := range p.Documents {
		if d.UUID == parentID {
			docs := append([]Document(nil), p.Documents...)
			docs[i].Assets = withAsset(d.Assets, asset)
			p.Documents = docs
			return true
		}
	}
	return false
}

// withAsset returns a copy of assets with a appended, replacing any asset of
// the same file name.
func withAsset(assets []Asset, a Asset) []Asset {
	out := make([]Asset, 0, len(assets)+1)
	for _, existing := range assets {
		if existing.FileName != a.FileName {
			out = append(out, existing)
		}
	}
	return append(out, a)
}

// Watch reports changes to stored profiles made outside harp.
func (s *Service) Watch(ctx context.Context) (<-chan Event, error) {
	w, ok := s.profiles.(Watcher)
	if !ok {
		return nil, fmt.Errorf("watch: %w", ErrUnsupported)
	}
	return w.Watch(ctx)
}

// Close releases the stores holding resources, such as open databases.
func (s *Service) Close() error {
	var errs []error
	if c, ok := s.profiles.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if c, ok := s.assets.(io.Closer); ok && any(s.assets) != any(s.profiles) {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// ImportText parses a profile from text and stores it, replacing any profile
// with the same UUID.
func (s *Service) ImportText(ctx context.Context, text string) (Profile, error) {
	p, err := s.codec.Parse(text)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to parse profile: %w", err)
	}
	if err := s.SaveProfile(ctx, p); err != nil {
		return Profile{}, err
	}
	s.logger.Info("profile imported", "uuid", p.UUID, "name", p.Name)
	return p, nil
}

// ExportText loads a profile and formats it as text.
func (s *Service) ExportText(ctx context.Context, id string) (string, error) {
	p, err := s.LoadProfile(ctx, id)
	if err != nil {
		return "", err
	}
	return s.codec.Format(p), nil
}

// AddMetric validates a metric definition and appends it to the profile.
func (s *Service) AddMetric(ctx context.Context, profileID string, m Metric) (Profile, error) {
	if err := ValidateMetric(m); err != nil {
		return Profile{}, err
	}
	return s.update(ctx, profileID, func(p *Profile) error {
		if _, ok := FindMetric(*p, m.ID); ok {
			return fmt.Errorf("%w: %s", ErrDuplicateMetric, m.ID)
		}
		p.Metadata.Metrics = append(append([]Metric(nil), p.Metadata.Metrics...), m)
		return nil
	})
}

// AddEntry appends an entry to the Main journal. Missing UUIDs are generated
// and derived fields are recomputed from the entry text.
func (s *Service) AddEntry(ctx context.Context, profileID string, e JournalEntry) (Profile, error) {
	if e.UUID == "" {
		e.UUID = NewID()
	}
	if e.Datetime.IsZero() {
		return Profile{}, fmt.Errorf("%w: entry %s has no datetime", ErrInvalidProfile, e.UUID)
	}
	if a, ok := s.codec.(Annotator); ok {
		e.MetricValues, e.Assets = a.Annotate(e.Text, e.Datetime, e.UUID)
	}

	return s.update(ctx, profileID, func(p *Profile) error {
		journals := append([]Journal(nil), p.Journals...)
		for i := range journals {
			if journals[i].Name == MainJournal {
				journals[i].Entries = append(append([]JournalEntry(nil), journals[i].Entries...), e)
				p.Journals = journals
				return nil
			}
		}
		return ErrNoMainJournal
	})
}

// update runs a read-modify-write cycle on a stored profile.
func (s *Service) update(ctx context.Context, profileID string, fn func(p *Profile) error) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.profiles.Get(ctx, profileID)
	if err != nil {
		return Profile{}, err
	}
	if err := fn(&p); err != nil {
		return Profile{}, err
	}
	if err := s.profiles.Put(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}
