// Package persistence provides infrastructure implementations for data persistence.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/stayflow-tech/stayflow/internal/domain/guest"
	"github.com/stayflow-tech/stayflow/internal/fileutil"
)

// MaxGuestFileSize is the maximum allowed size for guest files (2MB).
// This prevents denial of service from maliciously crafted large files.
const MaxGuestFileSize = 2 << 20 // 2MB

// checkContext checks if the context is canceled and returns the error if so.
// This helper eliminates repeated select/case patterns throughout the repository.
func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// FileGuestRepository implements guest.Repository using file-based storage.
// Each guest is stored as one JSON document named by its ID.
type FileGuestRepository struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileGuestRepository creates a new file-based guest repository.
func NewFileGuestRepository(basePath string) (*FileGuestRepository, error) {
	// 0700 for the directory since guest records hold personal data
	if err := os.MkdirAll(basePath, 0700); err != nil {
		return nil, fmt.Errorf("failed to create repository directory: %w", err)
	}

	return &FileGuestRepository{basePath: basePath}, nil
}

// guestDTO is a data transfer object for serializing guests.
type guestDTO struct {
	ID               string            `json:"id"`
	PersonalInfo     personalInfoDTO   `json:"personal_info"`
	CurrentStage     string            `json:"current_stage"`
	StageStartedAt   string            `json:"stage_started_at"`
	JourneyID        string            `json:"journey_id"`
	JourneyStartedAt string            `json:"journey_started_at"`
	StageEvents      []*eventDTO       `json:"stage_events"`
	CompletedStages  []*stageRecordDTO `json:"completed_stages"`
	Metrics          metricsDTO        `json:"business_metrics"`
	Preferences      preferencesDTO    `json:"preferences"`
	Tags             tagsDTO           `json:"tags"`
	JourneyCount     int               `json:"journey_count"`
	TotalJourneyDays int               `json:"total_journey_days"`
	Deleted          bool              `json:"deleted,omitempty"`
	CreatedAt        string            `json:"created_at"`
	UpdatedAt        string            `json:"updated_at"`
	Version          int64             `json:"version"`
}

type personalInfoDTO struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Email  string `json:"email,omitempty"`
	IDCard string `json:"id_card,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

type metricsDTO struct {
	LifetimeValue  float64 `json:"lifetime_value"`
	TotalBookings  int     `json:"total_bookings"`
	TotalNights    int     `json:"total_nights"`
	AverageRating  float64 `json:"average_rating"`
	RatingCount    int     `json:"rating_count"`
	ReferralCount  int     `json:"referral_count"`
	FirstVisitDate string  `json:"first_visit_date,omitempty"`
	LastVisitDate  string  `json:"last_visit_date,omitempty"`
}

type preferencesDTO struct {
	RoomTypes               []string `json:"room_types,omitempty"`
	PriceMin                float64  `json:"price_min,omitempty"`
	PriceMax                float64  `json:"price_max,omitempty"`
	SpecialRequests         []string `json:"special_requests,omitempty"`
	CommunicationPreference string   `json:"communication_preference,omitempty"`
}

type tagsDTO struct {
	LoyaltyLevel     string   `json:"loyalty_level"`
	RiskLevel        string   `json:"risk_level"`
	ValueSegment     string   `json:"value_segment"`
	BehaviorPatterns []string `json:"behavior_patterns,omitempty"`
}

type stageRecordDTO struct {
	Stage        string      `json:"stage"`
	StartedAt    string      `json:"started_at"`
	EndedAt      string      `json:"ended_at"`
	DurationMs   int64       `json:"duration_ms"`
	QualityScore int         `json:"quality_score"`
	Events       []*eventDTO `json:"events"`
}

type eventDTO struct {
	ID         string         `json:"id"`
	JourneyID  string         `json:"journey_id"`
	GuestID    string         `json:"guest_id"`
	Kind       string         `json:"kind"`
	Stage      string         `json:"stage"`
	OccurredAt string         `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
	Impact     int            `json:"impact"`
	Source     sourceDTO      `json:"source"`
	Metadata   *metadataDTO   `json:"metadata,omitempty"`
}

type sourceDTO struct {
	Kind       string `json:"kind"`
	Identifier string `json:"identifier,omitempty"`
}

type metadataDTO struct {
	UserAgent  string `json:"user_agent,omitempty"`
	IP         string `json:"ip,omitempty"`
	SessionID  string `json:"session_id,omitempty"`
	DeviceType string `json:"device_type,omitempty"`
	Location   string `json:"location,omitempty"`
	Referrer   string `json:"referrer,omitempty"`
	Campaign   string `json:"campaign,omitempty"`
}

// Save persists a guest, enforcing optimistic concurrency. The stored
// version must equal the aggregate's base version; on success the base
// version is synced to the new version.
func (r *FileGuestRepository) Save(ctx context.Context, g *guest.Guest) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if g == nil {
		return guest.ErrNilGuest
	}
	if !g.IsValid() {
		return fmt.Errorf("%w: aggregate invariants violated", guest.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	filePath := r.guestFilePath(g.ID())
	stored, err := r.readDTO(filePath)
	switch {
	case err == nil:
		if g.BaseVersion() == 0 {
			return guest.ErrGuestAlreadyExists
		}
		if stored.Version != g.BaseVersion() {
			return fmt.Errorf("%w: stored version %d, expected %d", guest.ErrVersionConflict, stored.Version, g.BaseVersion())
		}
	case os.IsNotExist(err):
		if g.BaseVersion() != 0 {
			return guest.ErrGuestNotFound
		}
	default:
		return fmt.Errorf("failed to read guest file: %w", err)
	}

	if err := r.writeDTO(filePath, toDTO(g)); err != nil {
		return err
	}

	g.SyncBaseVersion()
	return nil
}

// FindByID retrieves a guest by its ID. Soft-deleted guests are reported
// as not found.
func (r *FileGuestRepository) FindByID(ctx context.Context, id string) (*guest.Guest, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	dto, err := r.readDTO(r.guestFilePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, guest.ErrGuestNotFound
		}
		return nil, fmt.Errorf("failed to read guest file: %w", err)
	}
	if dto.Deleted {
		return nil, guest.ErrGuestNotFound
	}

	return fromDTO(dto)
}

// FindByPhone retrieves a guest by phone number.
func (r *FileGuestRepository) FindByPhone(ctx context.Context, phone string) (*guest.Guest, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	guests, err := r.scanGuests(ctx, func(dto *guestDTO) bool {
		return !dto.Deleted && dto.PersonalInfo.Phone == phone
	})
	if err != nil {
		return nil, err
	}
	if len(guests) == 0 {
		return nil, guest.ErrGuestNotFound
	}

	return guests[0], nil
}

// FindByCurrentStage retrieves guests currently in a specific stage.
func (r *FileGuestRepository) FindByCurrentStage(ctx context.Context, stage guest.Stage) ([]*guest.Guest, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.scanGuests(ctx, func(dto *guestDTO) bool {
		return !dto.Deleted && dto.CurrentStage == string(stage)
	})
}

// FindByLoyaltyLevel retrieves guests at a specific loyalty tier.
func (r *FileGuestRepository) FindByLoyaltyLevel(ctx context.Context, level guest.LoyaltyLevel) ([]*guest.Guest, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.scanGuests(ctx, func(dto *guestDTO) bool {
		return !dto.Deleted && dto.Tags.LoyaltyLevel == string(level)
	})
}

// FindAll retrieves all non-deleted guests.
func (r *FileGuestRepository) FindAll(ctx context.Context) ([]*guest.Guest, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.scanGuests(ctx, func(dto *guestDTO) bool {
		return !dto.Deleted
	})
}

// FindBySpecification retrieves guests matching the given specification.
// This method scans all guests and applies the specification filter.
func (r *FileGuestRepository) FindBySpecification(ctx context.Context, spec guest.Specification) ([]*guest.Guest, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	// Accept all at DTO level; specifications operate on domain objects,
	// including the deleted flag.
	all, err := r.scanGuests(ctx, func(dto *guestDTO) bool {
		return true
	})
	if err != nil {
		return nil, err
	}

	result := make([]*guest.Guest, 0, len(all))
	for _, g := range all {
		if spec.IsSatisfiedBy(g) {
			result = append(result, g)
		}
	}

	return result, nil
}

// FindByCriteria retrieves guests matching every set field of the criteria.
func (r *FileGuestRepository) FindByCriteria(ctx context.Context, c guest.Criteria) ([]*guest.Guest, error) {
	return r.FindBySpecification(ctx, guest.FromCriteria(c))
}

// FindWithPagination retrieves one page of guests matching the
// specification, ordered by registration time then ID. Page numbers
// start at 1.
func (r *FileGuestRepository) FindWithPagination(ctx context.Context, spec guest.Specification, page, pageSize int) (*guest.Page, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be at least 1", guest.ErrValidation)
	}
	if pageSize < 1 {
		return nil, fmt.Errorf("%w: page size must be at least 1", guest.ErrValidation)
	}

	matched, err := r.FindBySpecification(ctx, spec)
	if err != nil {
		return nil, err
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt().Equal(matched[j].CreatedAt()) {
			return matched[i].CreatedAt().Before(matched[j].CreatedAt())
		}
		return matched[i].ID() < matched[j].ID()
	})

	total := len(matched)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return &guest.Page{
		Data:     matched[start:end],
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// BulkInsert atomically inserts a batch of new guests. If any guest
// already exists, nothing is written.
func (r *FileGuestRepository) BulkInsert(ctx context.Context, guests []*guest.Guest) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(guests))
	for _, g := range guests {
		if g == nil {
			return guest.ErrNilGuest
		}
		if !g.IsValid() {
			return fmt.Errorf("%w: aggregate invariants violated for %s", guest.ErrValidation, g.ID())
		}
		if seen[g.ID()] {
			return fmt.Errorf("%w: duplicate id %s in batch", guest.ErrGuestAlreadyExists, g.ID())
		}
		seen[g.ID()] = true
		if _, err := os.Stat(r.guestFilePath(g.ID())); err == nil {
			return fmt.Errorf("%w: %s", guest.ErrGuestAlreadyExists, g.ID())
		}
	}

	written := make([]string, 0, len(guests))
	for _, g := range guests {
		if err := checkContext(ctx); err != nil {
			r.removeFiles(written)
			return err
		}
		filePath := r.guestFilePath(g.ID())
		if err := r.writeDTO(filePath, toDTO(g)); err != nil {
			r.removeFiles(written)
			return err
		}
		written = append(written, filePath)
	}

	for _, g := range guests {
		g.SyncBaseVersion()
	}
	return nil
}

func (r *FileGuestRepository) removeFiles(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}

// Delete soft-deletes a guest. The record is kept on disk for audit but
// hidden from finders.
func (r *FileGuestRepository) Delete(ctx context.Context, id string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	filePath := r.guestFilePath(id)
	dto, err := r.readDTO(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return guest.ErrGuestNotFound
		}
		return fmt.Errorf("failed to read guest file: %w", err)
	}
	if dto.Deleted {
		return guest.ErrGuestNotFound
	}

	dto.Deleted = true
	dto.Version++
	dto.UpdatedAt = time.Now().Format(time.RFC3339)

	return r.writeDTO(filePath, dto)
}

// Count returns the number of non-deleted guests.
func (r *FileGuestRepository) Count(ctx context.Context) (int, error) {
	guests, err := r.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(guests), nil
}

// maxScanWorkers is the maximum number of concurrent file read workers.
// This limits parallelism to avoid overwhelming the filesystem.
const maxScanWorkers = 4

// scanResult holds the result of scanning a single file.
type scanResult struct {
	guest *guest.Guest
	err   error
}

// scanGuests scans all guest files and returns those matching the filter.
// The filter receives the parsed DTO and returns true if the guest should
// be included. This method must be called with the read lock held.
func (r *FileGuestRepository) scanGuests(ctx context.Context, filter func(*guestDTO) bool) ([]*guest.Guest, error) {
	entries, err := os.ReadDir(r.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read repository directory: %w", err)
	}

	jsonFiles := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			jsonFiles = append(jsonFiles, filepath.Join(r.basePath, entry.Name()))
		}
	}

	if len(jsonFiles) < maxScanWorkers*2 {
		return r.scanGuestsSequential(ctx, jsonFiles, filter)
	}

	return r.scanGuestsConcurrent(ctx, jsonFiles, filter)
}

func (r *FileGuestRepository) scanGuestsSequential(ctx context.Context, files []string, filter func(*guestDTO) bool) ([]*guest.Guest, error) {
	guests := make([]*guest.Guest, 0, len(files)/2)

	for _, filePath := range files {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}

		g, err := r.scanSingleFile(filePath, filter)
		if err != nil || g == nil {
			continue
		}
		guests = append(guests, g)
	}

	return guests, nil
}

// scanGuestsConcurrent scans files concurrently using a worker pool.
func (r *FileGuestRepository) scanGuestsConcurrent(ctx context.Context, files []string, filter func(*guestDTO) bool) ([]*guest.Guest, error) {
	jobs := make(chan string, len(files))
	results := make(chan scanResult, len(files))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	numWorkers := maxScanWorkers
	if len(files) < numWorkers {
		numWorkers = len(files)
	}

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case filePath, ok := <-jobs:
					if !ok {
						return
					}
					g, err := r.scanSingleFile(filePath, filter)
					select {
					case results <- scanResult{guest: g, err: err}:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	go func() {
	jobLoop:
		for _, file := range files {
			select {
			case jobs <- file:
			case <-ctx.Done():
				break jobLoop
			}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	guests := make([]*guest.Guest, 0, len(files)/2)
	for result := range results {
		if result.guest != nil {
			guests = append(guests, result.guest)
		}
	}

	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	return guests, nil
}

// scanSingleFile reads and parses a single guest file. Unreadable or
// malformed files are skipped.
func (r *FileGuestRepository) scanSingleFile(filePath string, filter func(*guestDTO) bool) (*guest.Guest, error) {
	data, err := fileutil.ReadFileLimited(filePath, MaxGuestFileSize)
	if err != nil {
		return nil, err
	}

	var dto guestDTO
	if unmarshalErr := json.Unmarshal(data, &dto); unmarshalErr != nil {
		return nil, unmarshalErr
	}

	if !filter(&dto) {
		return nil, nil
	}

	g, err := fromDTO(&dto)
	if err != nil {
		return nil, err
	}

	return g, nil
}

// Helper methods

func (r *FileGuestRepository) guestFilePath(id string) string {
	return filepath.Join(r.basePath, id+".json")
}

func (r *FileGuestRepository) readDTO(filePath string) (*guestDTO, error) {
	data, err := fileutil.ReadFileLimited(filePath, MaxGuestFileSize)
	if err != nil {
		return nil, err
	}

	var dto guestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("failed to unmarshal guest: %w", err)
	}
	return &dto, nil
}

func (r *FileGuestRepository) writeDTO(filePath string, dto *guestDTO) error {
	data, err := json.MarshalIndent(dto, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal guest: %w", err)
	}

	// 0600 for guest files as they contain personal data
	if err := fileutil.AtomicWriteFile(filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write guest file: %w", err)
	}
	return nil
}

func toDTO(g *guest.Guest) *guestDTO {
	info := g.PersonalInfo()
	metrics := g.Metrics()
	prefs := g.Preferences()
	tags := g.Tags()

	dto := &guestDTO{
		ID: g.ID(),
		PersonalInfo: personalInfoDTO{
			Name:   info.Name,
			Phone:  info.Phone,
			Email:  info.Email,
			IDCard: info.IDCard,
			Avatar: info.Avatar,
		},
		CurrentStage:     string(g.CurrentStage()),
		StageStartedAt:   g.StageStartedAt().Format(time.RFC3339Nano),
		JourneyID:        g.JourneyID(),
		JourneyStartedAt: g.JourneyStartedAt().Format(time.RFC3339Nano),
		StageEvents:      eventsToDTO(g.StageEvents()),
		CompletedStages:  stageRecordsToDTO(g.CompletedStages()),
		Metrics: metricsDTO{
			LifetimeValue: metrics.LifetimeValue,
			TotalBookings: metrics.TotalBookings,
			TotalNights:   metrics.TotalNights,
			AverageRating: metrics.AverageRating,
			RatingCount:   metrics.RatingCount,
			ReferralCount: metrics.ReferralCount,
		},
		Preferences: preferencesDTO{
			RoomTypes:               prefs.RoomTypes,
			PriceMin:                prefs.PriceRange.Min,
			PriceMax:                prefs.PriceRange.Max,
			SpecialRequests:         prefs.SpecialRequests,
			CommunicationPreference: prefs.CommunicationPreference,
		},
		Tags: tagsDTO{
			LoyaltyLevel:     string(tags.LoyaltyLevel),
			RiskLevel:        string(tags.RiskLevel),
			ValueSegment:     string(tags.ValueSegment),
			BehaviorPatterns: tags.BehaviorPatterns,
		},
		JourneyCount:     g.JourneyCount(),
		TotalJourneyDays: g.TotalJourneyDays(),
		Deleted:          g.IsDeleted(),
		CreatedAt:        g.CreatedAt().Format(time.RFC3339Nano),
		UpdatedAt:        g.UpdatedAt().Format(time.RFC3339Nano),
		Version:          g.Version(),
	}

	if !metrics.FirstVisitDate.IsZero() {
		dto.Metrics.FirstVisitDate = metrics.FirstVisitDate.Format(time.RFC3339Nano)
	}
	if !metrics.LastVisitDate.IsZero() {
		dto.Metrics.LastVisitDate = metrics.LastVisitDate.Format(time.RFC3339Nano)
	}

	return dto
}

func eventsToDTO(events []guest.Event) []*eventDTO {
	dtos := make([]*eventDTO, 0, len(events))
	for _, e := range events {
		dto := &eventDTO{
			ID:         e.ID(),
			JourneyID:  e.JourneyID(),
			GuestID:    e.GuestID(),
			Kind:       string(e.Kind()),
			Stage:      string(e.Stage()),
			OccurredAt: e.OccurredAt().Format(time.RFC3339Nano),
			Payload:    e.Payload(),
			Impact:     e.Impact(),
			Source: sourceDTO{
				Kind:       string(e.Source().Kind),
				Identifier: e.Source().Identifier,
			},
		}
		if md := e.Metadata(); md != (guest.EventMetadata{}) {
			dto.Metadata = &metadataDTO{
				UserAgent:  md.UserAgent,
				IP:         md.IP,
				SessionID:  md.SessionID,
				DeviceType: md.DeviceType,
				Location:   md.Location,
				Referrer:   md.Referrer,
				Campaign:   md.Campaign,
			}
		}
		dtos = append(dtos, dto)
	}
	return dtos
}

func stageRecordsToDTO(records []guest.CompletedStageRecord) []*stageRecordDTO {
	dtos := make([]*stageRecordDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, &stageRecordDTO{
			Stage:        string(rec.Stage),
			StartedAt:    rec.StartedAt.Format(time.RFC3339Nano),
			EndedAt:      rec.EndedAt.Format(time.RFC3339Nano),
			DurationMs:   rec.DurationMs,
			QualityScore: rec.QualityScore,
			Events:       eventsToDTO(rec.Events),
		})
	}
	return dtos
}

func fromDTO(dto *guestDTO) (*guest.Guest, error) {
	stageStartedAt, err := time.Parse(time.RFC3339Nano, dto.StageStartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stage_started_at: %w", err)
	}
	journeyStartedAt, err := time.Parse(time.RFC3339Nano, dto.JourneyStartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse journey_started_at: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, dto.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, dto.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	metrics := guest.BusinessMetrics{
		LifetimeValue: dto.Metrics.LifetimeValue,
		TotalBookings: dto.Metrics.TotalBookings,
		TotalNights:   dto.Metrics.TotalNights,
		AverageRating: dto.Metrics.AverageRating,
		RatingCount:   dto.Metrics.RatingCount,
		ReferralCount: dto.Metrics.ReferralCount,
	}
	if dto.Metrics.FirstVisitDate != "" {
		t, err := time.Parse(time.RFC3339Nano, dto.Metrics.FirstVisitDate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse first_visit_date: %w", err)
		}
		metrics.FirstVisitDate = t
	}
	if dto.Metrics.LastVisitDate != "" {
		t, err := time.Parse(time.RFC3339Nano, dto.Metrics.LastVisitDate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse last_visit_date: %w", err)
		}
		metrics.LastVisitDate = t
	}

	stageEvents, err := eventsFromDTO(dto.StageEvents)
	if err != nil {
		return nil, err
	}

	completed := make([]guest.CompletedStageRecord, 0, len(dto.CompletedStages))
	for _, rec := range dto.CompletedStages {
		startedAt, err := time.Parse(time.RFC3339Nano, rec.StartedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stage record started_at: %w", err)
		}
		endedAt, err := time.Parse(time.RFC3339Nano, rec.EndedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stage record ended_at: %w", err)
		}
		events, err := eventsFromDTO(rec.Events)
		if err != nil {
			return nil, err
		}
		completed = append(completed, guest.CompletedStageRecord{
			Stage:        guest.Stage(rec.Stage),
			StartedAt:    startedAt,
			EndedAt:      endedAt,
			DurationMs:   rec.DurationMs,
			QualityScore: rec.QualityScore,
			Events:       events,
		})
	}

	return guest.ReconstructGuest(guest.ReconstructionParams{
		ID:      dto.ID,
		Version: dto.Version,
		PersonalInfo: guest.PersonalInfo{
			Name:   dto.PersonalInfo.Name,
			Phone:  dto.PersonalInfo.Phone,
			Email:  dto.PersonalInfo.Email,
			IDCard: dto.PersonalInfo.IDCard,
			Avatar: dto.PersonalInfo.Avatar,
		},
		CurrentStage:     guest.Stage(dto.CurrentStage),
		StageStartedAt:   stageStartedAt,
		JourneyID:        dto.JourneyID,
		JourneyStartedAt: journeyStartedAt,
		StageEvents:      stageEvents,
		CompletedStages:  completed,
		Metrics:          metrics,
		Preferences: guest.Preferences{
			RoomTypes:               dto.Preferences.RoomTypes,
			PriceRange:              guest.PriceRange{Min: dto.Preferences.PriceMin, Max: dto.Preferences.PriceMax},
			SpecialRequests:         dto.Preferences.SpecialRequests,
			CommunicationPreference: dto.Preferences.CommunicationPreference,
		},
		Tags: guest.Tags{
			LoyaltyLevel:     guest.LoyaltyLevel(dto.Tags.LoyaltyLevel),
			RiskLevel:        guest.RiskLevel(dto.Tags.RiskLevel),
			ValueSegment:     guest.ValueSegment(dto.Tags.ValueSegment),
			BehaviorPatterns: dto.Tags.BehaviorPatterns,
		},
		JourneyCount:     dto.JourneyCount,
		TotalJourneyDays: dto.TotalJourneyDays,
		Deleted:          dto.Deleted,
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
	})
}

func eventsFromDTO(dtos []*eventDTO) ([]guest.Event, error) {
	events := make([]guest.Event, 0, len(dtos))
	for _, dto := range dtos {
		occurredAt, err := time.Parse(time.RFC3339Nano, dto.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse event occurred_at: %w", err)
		}
		rec := guest.EventRecord{
			ID:         dto.ID,
			JourneyID:  dto.JourneyID,
			GuestID:    dto.GuestID,
			Kind:       guest.EventKind(dto.Kind),
			Stage:      guest.Stage(dto.Stage),
			OccurredAt: occurredAt,
			Payload:    dto.Payload,
			Impact:     dto.Impact,
			Source: guest.EventSource{
				Kind:       guest.SourceKind(dto.Source.Kind),
				Identifier: dto.Source.Identifier,
			},
		}
		if dto.Metadata != nil {
			rec.Metadata = guest.EventMetadata{
				UserAgent:  dto.Metadata.UserAgent,
				IP:         dto.Metadata.IP,
				SessionID:  dto.Metadata.SessionID,
				DeviceType: dto.Metadata.DeviceType,
				Location:   dto.Metadata.Location,
				Referrer:   dto.Metadata.Referrer,
				Campaign:   dto.Metadata.Campaign,
			}
		}
		events = append(events, guest.ReconstructEvent(rec))
	}
	return events, nil
}
